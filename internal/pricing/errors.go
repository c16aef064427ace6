package pricing

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorCodeValidation          ErrorCode = "VALIDATION"
	ErrorCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrorCodeTimeout             ErrorCode = "TIMEOUT"
)

// ValidationError reports malformed pricing input. It is returned before
// any calculation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid pricing input: %s %s", e.Field, e.Reason)
}

// ProviderError reports a market-data or weather source failure. The engine
// never substitutes defaults for a failed provider; the run fails instead.
type ProviderError struct {
	Provider string
	Code     ErrorCode
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("provider %s unavailable", e.Provider)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a pricing input rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
