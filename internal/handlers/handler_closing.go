package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dgrad/efintrack/internal/core/domain"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/gin-gonic/gin"
)

// closingHandler handles monthly closings and the command journal.
type closingHandler struct {
	closingService portssvc.ClosingSvcFacade
	journalService portssvc.JournalSvc
}

func newClosingHandler(cs portssvc.ClosingSvcFacade, js portssvc.JournalSvc) *closingHandler {
	return &closingHandler{closingService: cs, journalService: js}
}

// registerClosingRoutes registers closing and journal routes.
func registerClosingRoutes(rg *gin.RouterGroup, closingService portssvc.ClosingSvcFacade, journalService portssvc.JournalSvc) {
	h := newClosingHandler(closingService, journalService)

	closings := rg.Group("/closings")
	{
		closings.GET("/current", h.getCurrentClosing)
		closings.GET("", h.listClosings)
		closings.GET("/:period", h.getClosing)
		closings.POST("/:period/compute", h.computeBalances)
		closings.POST("/:period/close", h.closePeriod)
	}

	rg.GET("/journal", h.listJournal)
}

// getCurrentClosing godoc
// @Summary Get the closing of the current period
// @Description Creates the closing on first access
// @Tags closings
// @Produce  json
// @Success 200 {object} dto.ClosingResponse
// @Router /closings/current [get]
func (h *closingHandler) getCurrentClosing(c *gin.Context) {
	closing, err := h.closingService.GetCurrentClosing(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve current closing")
		return
	}
	c.JSON(http.StatusOK, dto.ToClosingResponse(closing))
}

// listClosings godoc
// @Summary List closings
// @Tags closings
// @Produce  json
// @Param   status query string false "open or closed"
// @Param   limit query int false "Limit number of results" default(24)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListClosingsResponse
// @Router /closings [get]
func (h *closingHandler) listClosings(c *gin.Context) {
	var params dto.ListClosingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	resp, err := h.closingService.ListClosings(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list closings")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *closingHandler) getClosing(c *gin.Context) {
	period, ok := periodParam(c)
	if !ok {
		return
	}

	closing, err := h.closingService.GetClosing(c.Request.Context(), period)
	if err != nil {
		respondError(c, err, "Failed to retrieve closing")
		return
	}
	c.JSON(http.StatusOK, dto.ToClosingResponse(closing))
}

// computeBalances godoc
// @Summary Refresh the balances of an open closing
// @Tags closings
// @Produce  json
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} dto.ClosingResponse
// @Failure 409 {object} dto.ErrorResponse "Period already closed"
// @Router /closings/{period}/compute [post]
func (h *closingHandler) computeBalances(c *gin.Context) {
	period, ok := periodParam(c)
	if !ok {
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	closing, err := h.closingService.ComputeBalances(c.Request.Context(), period, actor)
	if err != nil {
		respondError(c, err, "Failed to compute balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToClosingResponse(closing))
}

// closePeriod godoc
// @Summary Close a period
// @Description Freezes the period and carries its net into the next one.
// @Description A refusal carries its reason: AlreadyClosed, NotCurrentPeriod or NotLastDayOfMonth.
// @Tags closings
// @Accept  json
// @Produce  json
// @Param   period path string true "Period (YYYY-MM)"
// @Param   closing body dto.ClosePeriodRequest false "Observation"
// @Success 200 {object} dto.ClosingResponse
// @Failure 409 {object} dto.ErrorResponse "Closing not allowed"
// @Router /closings/{period}/close [post]
func (h *closingHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	period, ok := periodParam(c)
	if !ok {
		return
	}

	var req dto.ClosePeriodRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err, "request format")
			return
		}
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	closing, err := h.closingService.ClosePeriod(c.Request.Context(), period, req, actor)
	if err != nil {
		respondError(c, err, "Failed to close period")
		return
	}

	logger.Info("Period closed",
		slog.String("period", period.String()),
		slog.String("net_cdf", closing.Net.CDF.String()),
		slog.String("net_usd", closing.Net.USD.String()))
	c.JSON(http.StatusOK, dto.ToClosingResponse(closing))
}

// listJournal godoc
// @Summary Read the command journal
// @Tags journal
// @Produce  json
// @Param   limit query int false "Limit number of results" default(50)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListJournalResponse
// @Router /journal [get]
func (h *closingHandler) listJournal(c *gin.Context) {
	var params dto.ListJournalParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	resp, err := h.journalService.ListJournal(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list journal")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// periodParam parses the :period path segment, answering 400 when malformed.
func periodParam(c *gin.Context) (domain.Period, bool) {
	period, err := domain.ParsePeriod(c.Param("period"))
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid period in path", slog.String("period", c.Param("period")))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return domain.Period{}, false
	}
	return period, true
}
