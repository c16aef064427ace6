package pricing

import (
	"context"
	"math"
	"time"

	"charter/pkg/logger"
)

// Engine turns a charter request into an itemized price breakdown. The
// calculation is deterministic for identical factors; anything that looks
// like market movement has to come in through the providers.
type Engine struct {
	market   MarketDataProvider
	weather  WeatherProvider
	taxRate  float64
	validity time.Duration
	clock    func() time.Time
	logger   logger.Client
}

type Option func(*Engine)

// WithClock overrides the wall clock, used to pin ValidUntil in tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithTaxRate overrides the flat 8% default.
func WithTaxRate(rate float64) Option {
	return func(e *Engine) {
		e.taxRate = rate
	}
}

// WithValidity overrides the 24h quote validity window.
func WithValidity(d time.Duration) Option {
	return func(e *Engine) {
		e.validity = d
	}
}

func NewEngine(market MarketDataProvider, weather WeatherProvider, log logger.Client, opts ...Option) *Engine {
	e := &Engine{
		market:   market,
		weather:  weather,
		taxRate:  0.08,
		validity: 24 * time.Hour,
		clock:    time.Now,
		logger:   log.With(logger.Field{Key: "component", Value: "pricing"}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate validates the input, fetches one market snapshot and the route
// weather, and prices the run. Provider failures abort the run with a
// ProviderError; there is no silent fallback to stale or default rates.
func (e *Engine) Calculate(ctx context.Context, in Input) (*Breakdown, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	rates, err := e.market.CurrentRates(ctx)
	if err != nil {
		e.logger.Error("market_rates_unavailable", logger.Field{Key: "err", Value: err.Error()})
		return nil, &ProviderError{Provider: "market", Code: providerCode(ctx, err), Err: err}
	}

	weather, err := e.weather.RouteConditions(ctx, in.Route.Airports(), in.Departure)
	if err != nil {
		e.logger.Error("weather_unavailable", logger.Field{Key: "err", Value: err.Error()})
		return nil, &ProviderError{Provider: "weather", Code: providerCode(ctx, err), Err: err}
	}

	return e.Price(Factors{Input: in, Weather: weather, Market: *rates})
}

// Price runs the pure calculation over an already assembled factor bundle.
func (e *Engine) Price(f Factors) (*Breakdown, error) {
	if err := validate(f.Input); err != nil {
		return nil, err
	}

	var estimatedKeys []string

	baseRate, known := aircraftBaseRate(f.Aircraft)
	if !known {
		estimatedKeys = append(estimatedKeys, "aircraft:"+f.Aircraft)
	}
	base := f.DistanceNM * baseRate * distanceMultiplier(f.DistanceNM) * math.Max(1, float64(f.Passengers)/4)

	consumption, known := fuelConsumptionRate(f.Aircraft)
	if !known {
		estimatedKeys = append(estimatedKeys, "aircraft:"+f.Aircraft)
	}
	fuel := f.DistanceNM * consumption * f.Market.FuelPricePerGallon

	crew := float64(crewSize(f.Aircraft)) * f.Market.CrewHourlyRate * f.DurationHours

	var landing float64
	for _, airport := range f.Route.Airports() {
		fee, ok := f.Market.LandingFees[airport]
		if !ok {
			fee = f.Market.DefaultLandingFee
			estimatedKeys = append(estimatedKeys, "airport:"+airport)
		}
		landing += fee
	}

	thunderstorm := hasCondition(f.Weather, ConditionThunderstorm)

	handling := float64(f.Route.LegCount())*f.Market.HandlingBasePerLeg +
		float64(f.Passengers)*f.Market.HandlingPerPassenger
	if thunderstorm {
		handling += handlingWeatherSurcharge
	}

	cateringRate := cateringStandardRate
	if f.Passengers > 8 {
		cateringRate = cateringPremiumRate
	}
	catering := float64(f.Passengers) * cateringRate * float64(1+len(f.Route.Waypoints))

	insurance := insuranceCost(f.DistanceNM, thunderstorm)

	surcharge := weatherSurcharge(f.Weather)

	lines := []LineItem{
		{Label: LineBasePrice, Amount: roundCents(base)},
		{Label: LineFuelCost, Amount: roundCents(fuel)},
		{Label: LineCrewCost, Amount: roundCents(crew)},
		{Label: LineLandingFees, Amount: roundCents(landing)},
		{Label: LineHandlingFees, Amount: roundCents(handling)},
		{Label: LineCatering, Amount: roundCents(catering)},
		{Label: LineInsurance, Amount: roundCents(insurance)},
		{Label: LineWeatherSurcharge, Amount: roundCents(surcharge)},
	}

	var preSubtotal float64
	for _, line := range lines {
		preSubtotal += line.Amount
	}
	preSubtotal = roundCents(preSubtotal)

	// Multipliers apply to the summed subtotal, not per line, so their
	// effect is proportionally uniform across every cost category. The
	// premium lines carry the marginal amount each multiplier adds, applied
	// in order, which keeps the line items additive to the total.
	demandMult := demandMultiplier(f.Demand)
	operatorMult := operatorPremium(f.Operator)

	adjusted := preSubtotal
	if demandMult != 1.0 {
		premium := roundCents(preSubtotal * (demandMult - 1))
		lines = append(lines, LineItem{Label: LineDemandPremium, Amount: premium})
		adjusted += premium
	}
	if operatorMult != 1.0 {
		premium := roundCents(preSubtotal * demandMult * (operatorMult - 1))
		lines = append(lines, LineItem{Label: LineOperatorPremium, Amount: premium})
		adjusted += premium
	}
	adjusted = roundCents(adjusted)

	taxes := roundCents(adjusted * e.taxRate)
	total := roundCents(adjusted + taxes)
	lines = append(lines, LineItem{Label: LineTaxes, Amount: taxes})

	for i := range lines {
		if total > 0 {
			lines[i].Percent = roundCents(lines[i].Amount / total * 100)
		}
	}

	breakdown := &Breakdown{
		Lines:         lines,
		Subtotal:      adjusted,
		Taxes:         taxes,
		Total:         total,
		Currency:      "USD",
		ValidUntil:    e.clock().Add(e.validity),
		Estimated:     len(estimatedKeys) > 0,
		EstimatedKeys: dedupe(estimatedKeys),
	}

	e.logger.Debug("pricing_run",
		logger.Field{Key: "aircraft", Value: f.Aircraft},
		logger.Field{Key: "distance_nm", Value: f.DistanceNM},
		logger.Field{Key: "total", Value: total},
		logger.Field{Key: "estimated", Value: breakdown.Estimated},
	)

	return breakdown, nil
}

func validate(in Input) error {
	switch {
	case in.DistanceNM <= 0:
		return &ValidationError{Field: "distance_nm", Reason: "must be positive"}
	case in.Passengers <= 0:
		return &ValidationError{Field: "passengers", Reason: "must be positive"}
	case in.Route.Origin == "" || in.Route.Destination == "":
		return &ValidationError{Field: "route", Reason: "origin and destination are required"}
	case in.DurationHours <= 0:
		return &ValidationError{Field: "duration_hours", Reason: "must be positive"}
	}
	for _, wp := range in.Route.Waypoints {
		if wp == "" {
			return &ValidationError{Field: "route", Reason: "waypoints must not be empty"}
		}
	}
	return nil
}

func insuranceCost(distanceNM float64, thunderstorm bool) float64 {
	weatherMult := 1.0
	if thunderstorm {
		weatherMult = 1.5
	}
	distMult := 1.0
	if distanceNM > 3000 {
		distMult = 1.2
	}
	return distanceNM * 10 * 0.02 * weatherMult * distMult
}

// weatherSurcharge adds a fixed amount per adverse trigger at each airport.
// One snapshot can trip several triggers at once, e.g. thunderstorm plus
// high wind.
func weatherSurcharge(snapshots []WeatherSnapshot) float64 {
	var total float64
	for _, w := range snapshots {
		switch w.Condition {
		case ConditionThunderstorm:
			total += surchargeThunderstorm
		case ConditionFog:
			total += surchargeFog
		case ConditionSnow:
			total += surchargeSnow
		}
		if w.WindKnots > 25 {
			total += surchargeHighWind
		}
		if w.VisibilitySM > 0 && w.VisibilitySM < 1 {
			total += surchargeLowVisibility
		}
		if w.CeilingFT > 0 && w.CeilingFT < 1000 {
			total += surchargeLowCeiling
		}
	}
	return total
}

// demandMultiplier compounds season, weekend, time-of-day and special-event
// pressure multiplicatively. Stacked signals multiply through rather than
// add, which is what makes peak-weekend-evening pricing aggressive.
func demandMultiplier(d DemandSignals) float64 {
	mult := 1.0
	if m, ok := seasonMultipliers[d.Season]; ok {
		mult *= m
	}
	if d.Weekend {
		mult *= weekendMultiplier
	}
	if m, ok := timeOfDayMultipliers[d.TimeOfDay]; ok {
		mult *= m
	}
	if len(d.SpecialEvents) > 0 {
		mult *= specialEventMultiplier
	}
	return mult
}

func operatorPremium(op OperatorProfile) float64 {
	mult := 1.0
	switch {
	case op.Rating >= 4.8:
		mult *= 1.2
	case op.Rating >= 4.5:
		mult *= 1.1
	case op.Rating < 4.0:
		mult *= 0.9
	}
	switch {
	case op.YearsExperience > 10:
		mult *= 1.1
	case op.YearsExperience < 2:
		mult *= 0.9
	}
	switch {
	case op.FleetSize > 20:
		mult *= 1.05
	case op.FleetSize < 5:
		mult *= 0.95
	}
	return mult
}

func hasCondition(snapshots []WeatherSnapshot, c Condition) bool {
	for _, w := range snapshots {
		if w.Condition == c {
			return true
		}
	}
	return false
}

func providerCode(ctx context.Context, err error) ErrorCode {
	if ctx.Err() != nil || isTimeout(err) {
		return ErrorCodeTimeout
	}
	return ErrorCodeProviderUnavailable
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	if te, ok := err.(timeout); ok {
		return te.Timeout()
	}
	return false
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func dedupe(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
