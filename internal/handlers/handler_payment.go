package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles HTTP requests related to payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

func newPaymentHandler(ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{paymentService: ps}
}

// registerPaymentRoutes registers routes related to payments.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := rg.Group("/payments")
	{
		payments.POST("", h.recordPayment)
		payments.GET("", h.listPayments)
		payments.GET("/:ref", h.getPayment)
		payments.POST("/:ref/reverse", h.reversePayment)
	}
}

// recordPayment godoc
// @Summary Pay a statement member
// @Description Debits the paying account and applies the amount to the request
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResult
// @Failure 400 {object} dto.ErrorResponse "Invalid input or request not in statement"
// @Failure 422 {object} dto.ErrorResponse "Currency mismatch, overpayment or no suitable account"
// @Router /payments [post]
func (h *paymentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("statement", req.StatementNumber), slog.String("request_ref", req.RequestRef))
	logger.Info("Received request to record payment", slog.String("amount", req.Amount.Value.String()), slog.String("currency", req.Amount.Currency))

	payment, warnings, err := h.paymentService.RecordPayment(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to record payment")
		return
	}

	logger.Info("Payment recorded", slog.String("reference", payment.Reference), slog.Int("warnings", len(warnings)))
	c.JSON(http.StatusCreated, dto.PaymentResult{
		Payment:  dto.ToPaymentResponse(payment),
		Warnings: dto.ToWarningDTOs(warnings),
	})
}

// listPayments godoc
// @Summary List payments
// @Tags payments
// @Produce  json
// @Param   statement query string false "Statement number"
// @Param   request query string false "Request reference"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListPaymentsResponse
// @Router /payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	resp, err := h.paymentService.ListPayments(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *paymentHandler) getPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err, "Failed to retrieve payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// reversePayment godoc
// @Summary Reverse a payment
// @Description Credits the account back and reopens the request
// @Tags payments
// @Produce  json
// @Param   ref path string true "Payment reference"
// @Success 200 {object} dto.PaymentResponse
// @Failure 409 {object} dto.ErrorResponse "Payment already reversed or statement sealed"
// @Router /payments/{ref}/reverse [post]
func (h *paymentHandler) reversePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	ref := c.Param("ref")

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.ReversePayment(c.Request.Context(), ref, actor)
	if err != nil {
		respondError(c, err, "Failed to reverse payment")
		return
	}

	logger.Info("Payment reversed", slog.String("reference", ref))
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}
