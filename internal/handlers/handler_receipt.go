package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgrad/efintrack/internal/core/domain"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/gin-gonic/gin"
)

// receiptHandler handles HTTP requests related to receipts.
type receiptHandler struct {
	receiptService portssvc.ReceiptSvcFacade
}

func newReceiptHandler(rs portssvc.ReceiptSvcFacade) *receiptHandler {
	return &receiptHandler{receiptService: rs}
}

// registerReceiptRoutes registers routes related to receipts.
func registerReceiptRoutes(rg *gin.RouterGroup, receiptService portssvc.ReceiptSvcFacade) {
	h := newReceiptHandler(receiptService)

	receipts := rg.Group("/receipts")
	{
		receipts.POST("", h.recordReceipt)
		receipts.GET("", h.listReceipts)
		receipts.GET("/:ref", h.getReceipt)
		receipts.POST("/:ref/validate", h.validateReceipt)
		receipts.POST("/:ref/unvalidate", h.unvalidateReceipt)
		receipts.DELETE("/:ref", h.deleteReceipt)
	}
}

// recordReceipt godoc
// @Summary Record a receipt
// @Description Saves a receipt. When validatedBy is set it is validated and credited at once.
// @Tags receipts
// @Accept  json
// @Produce  json
// @Param   receipt body dto.RecordReceiptRequest true "Receipt details"
// @Success 201 {object} dto.ReceiptResult
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 409 {object} dto.ErrorResponse "Period already closed"
// @Router /receipts [post]
func (h *receiptHandler) recordReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.RecordReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	receipt, warnings, err := h.receiptService.RecordReceipt(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to record receipt")
		return
	}

	logger.Info("Receipt recorded",
		slog.String("reference", receipt.Reference),
		slog.Bool("validated", receipt.Validated))
	c.JSON(http.StatusCreated, receiptResult(receipt, warnings))
}

// listReceipts godoc
// @Summary List receipts
// @Tags receipts
// @Produce  json
// @Param   bank query string false "Bank"
// @Param   validated query bool false "Validated filter"
// @Param   period query string false "Encashment period (YYYY-MM)"
// @Param   includeDeleted query bool false "Include soft-deleted receipts"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListReceiptsResponse
// @Router /receipts [get]
func (h *receiptHandler) listReceipts(c *gin.Context) {
	var params dto.ListReceiptsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	resp, err := h.receiptService.ListReceipts(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list receipts")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *receiptHandler) getReceipt(c *gin.Context) {
	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err, "Failed to retrieve receipt")
		return
	}
	c.JSON(http.StatusOK, dto.ToReceiptResponse(receipt))
}

func (h *receiptHandler) validateReceipt(c *gin.Context) {
	h.transition(c, "validate", h.receiptService.ValidateReceipt)
}

func (h *receiptHandler) unvalidateReceipt(c *gin.Context) {
	h.transition(c, "unvalidate", h.receiptService.UnvalidateReceipt)
}

// deleteReceipt soft deletes; the receipt stays readable with includeDeleted.
func (h *receiptHandler) deleteReceipt(c *gin.Context) {
	h.transition(c, "delete", h.receiptService.DeleteReceipt)
}

type receiptCommand func(ctx context.Context, ref string, actor string) (*domain.Receipt, []domain.Warning, error)

// transition runs one of the receipt commands that may move money.
func (h *receiptHandler) transition(c *gin.Context, name string, cmd receiptCommand) {
	logger := middleware.GetLoggerFromContext(c)
	ref := c.Param("ref")

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	receipt, warnings, err := cmd(c.Request.Context(), ref, actor)
	if err != nil {
		respondError(c, err, "Failed to "+name+" receipt")
		return
	}

	logger.Info("Receipt updated",
		slog.String("reference", ref),
		slog.String("command", name),
		slog.Int("movements", len(receipt.PostedMovementIDs)))
	c.JSON(http.StatusOK, receiptResult(receipt, warnings))
}

func receiptResult(r *domain.Receipt, ws []domain.Warning) dto.ReceiptResult {
	return dto.ReceiptResult{
		Receipt:  dto.ToReceiptResponse(r),
		Warnings: dto.ToWarningDTOs(ws),
	}
}
