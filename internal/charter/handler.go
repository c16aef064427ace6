package charter

import (
	"errors"
	"net/http"

	"charter/internal/pricing"
	"charter/internal/request"

	"github.com/gin-gonic/gin"
)

// Handler is the HTTP surface over the pricing engine and the request
// lifecycle. It binds JSON, delegates, and maps typed domain errors to
// status codes; all business rules live below it.
type Handler struct {
	engine    *pricing.Engine
	lifecycle *request.Lifecycle
}

func NewHandler(engine *pricing.Engine, lifecycle *request.Lifecycle) *Handler {
	return &Handler{
		engine:    engine,
		lifecycle: lifecycle,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/v1/pricing/calculate", h.CalculatePricingHandler)

	router.POST("/v1/requests", h.CreateRequestHandler)
	router.GET("/v1/requests/:id", h.GetRequestHandler)
	router.PUT("/v1/requests/:id", h.UpdateRequestHandler)
	router.POST("/v1/requests/:id/publish", h.PublishRequestHandler)
	router.POST("/v1/requests/:id/cancel", h.CancelRequestHandler)
	router.POST("/v1/requests/:id/complete", h.CompleteRequestHandler)
	router.POST("/v1/requests/:id/quotes", h.SubmitQuoteHandler)
	router.GET("/v1/requests/:id/quotes", h.ListQuotesHandler)
	router.GET("/v1/requests/:id/quotes/compare", h.CompareQuotesHandler)

	router.POST("/v1/quotes/:id/accept", h.AcceptQuoteHandler)
	router.POST("/v1/quotes/:id/reject", h.RejectQuoteHandler)
}

func (h *Handler) CalculatePricingHandler(c *gin.Context) {
	var in pricing.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON body",
			"code":  pricing.ErrorCodeValidation,
		})
		return
	}

	breakdown, err := h.engine.Calculate(c.Request.Context(), in)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

func (h *Handler) CreateRequestHandler(c *gin.Context) {
	var in request.NewRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON body",
			"code":  pricing.ErrorCodeValidation,
		})
		return
	}

	r, err := h.lifecycle.Create(c.Request.Context(), in)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetRequestHandler(c *gin.Context) {
	r, err := h.lifecycle.Request(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) UpdateRequestHandler(c *gin.Context) {
	var in request.NewRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON body",
			"code":  pricing.ErrorCodeValidation,
		})
		return
	}

	r, err := h.lifecycle.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) PublishRequestHandler(c *gin.Context) {
	r, err := h.lifecycle.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) CancelRequestHandler(c *gin.Context) {
	r, err := h.lifecycle.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) CompleteRequestHandler(c *gin.Context) {
	r, err := h.lifecycle.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) SubmitQuoteHandler(c *gin.Context) {
	var sub request.QuoteSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON body",
			"code":  pricing.ErrorCodeValidation,
		})
		return
	}
	sub.RequestID = c.Param("id")

	q, err := h.lifecycle.SubmitQuote(c.Request.Context(), sub)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) ListQuotesHandler(c *gin.Context) {
	quotes, err := h.lifecycle.Quotes(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, quotes)
}

func (h *Handler) CompareQuotesHandler(c *gin.Context) {
	cmp, err := h.lifecycle.Compare(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (h *Handler) AcceptQuoteHandler(c *gin.Context) {
	q, err := h.lifecycle.AcceptQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

type rejectBody struct {
	Reason string `json:"reason"`
}

func (h *Handler) RejectQuoteHandler(c *gin.Context) {
	var body rejectBody
	_ = c.ShouldBindJSON(&body) // reason is optional

	q, err := h.lifecycle.RejectQuote(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func sendError(c *gin.Context, err error) {
	var validationErr *pricing.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"code":  pricing.ErrorCodeValidation,
		})
		return
	}

	var stateErr *request.StateError
	if errors.As(err, &stateErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error": stateErr.Error(),
			"code":  "INVALID_STATE",
		})
		return
	}

	var providerErr *pricing.ProviderError
	if errors.As(err, &providerErr) {
		status := http.StatusBadGateway
		if providerErr.Code == pricing.ErrorCodeTimeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, gin.H{
			"error": providerErr.Error(),
			"code":  providerErr.Code,
		})
		return
	}

	if errors.Is(err, request.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
			"code":  "NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"code":    "INTERNAL_FAILURE",
		"details": err.Error(),
	})
}
