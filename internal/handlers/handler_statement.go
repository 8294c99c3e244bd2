package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statementHandler handles statements and the cheques issued against them.
type statementHandler struct {
	statementService portssvc.StatementSvcFacade
	chequeService    portssvc.ChequeSvcFacade
}

func newStatementHandler(ss portssvc.StatementSvcFacade, cs portssvc.ChequeSvcFacade) *statementHandler {
	return &statementHandler{statementService: ss, chequeService: cs}
}

// registerStatementRoutes registers statement and cheque routes.
func registerStatementRoutes(rg *gin.RouterGroup, statementService portssvc.StatementSvcFacade, chequeService portssvc.ChequeSvcFacade) {
	h := newStatementHandler(statementService, chequeService)

	statements := rg.Group("/statements")
	{
		statements.POST("", h.openStatement)
		statements.GET("", h.listStatements)
		statements.GET("/:number", h.getStatement)
		statements.POST("/:number/members", h.addMembers)
		statements.POST("/:number/recompute", h.recomputeTotals)
		statements.POST("/:number/seal", h.sealExpenses)
		statements.GET("/:number/expense-lines", h.listExpenseLines)
		statements.POST("/:number/cheque", h.issueCheque)
	}

	cheques := rg.Group("/cheques")
	{
		cheques.GET("/:number", h.getCheque)
		cheques.PUT("/:number/status", h.setChequeStatus)
	}
}

// openStatement godoc
// @Summary Open the statement of a period
// @Description One statement per period
// @Tags statements
// @Accept  json
// @Produce  json
// @Param   statement body dto.OpenStatementRequest true "Period and observation"
// @Success 201 {object} dto.StatementResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid period"
// @Failure 409 {object} dto.ErrorResponse "A statement already exists for this period"
// @Router /statements [post]
func (h *statementHandler) openStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.OpenStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	statement, err := h.statementService.OpenStatement(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to open statement")
		return
	}

	logger.Info("Statement opened", slog.String("number", statement.Number), slog.String("period", req.Period))
	c.JSON(http.StatusCreated, dto.ToStatementResponse(statement))
}

// listStatements godoc
// @Summary List statements
// @Tags statements
// @Produce  json
// @Param   year query int false "Year"
// @Param   sealed query bool false "Sealed filter"
// @Param   settled query bool false "Settled filter"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListStatementsResponse
// @Router /statements [get]
func (h *statementHandler) listStatements(c *gin.Context) {
	var params dto.ListStatementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	resp, err := h.statementService.ListStatements(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list statements")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *statementHandler) getStatement(c *gin.Context) {
	statement, err := h.statementService.GetStatement(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err, "Failed to retrieve statement")
		return
	}
	c.JSON(http.StatusOK, dto.ToStatementResponse(statement))
}

// addMembers godoc
// @Summary Attach validated requests to a statement
// @Description All or none. A request belongs to at most one statement.
// @Tags statements
// @Accept  json
// @Produce  json
// @Param   number path string true "Statement number"
// @Param   members body dto.StatementMembersRequest true "Request references"
// @Success 200 {object} dto.StatementResponse
// @Failure 409 {object} dto.ErrorResponse "Membership conflict or statement sealed"
// @Router /statements/{number}/members [post]
func (h *statementHandler) addMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	number := c.Param("number")
	var req dto.StatementMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	statement, err := h.statementService.AddMembers(c.Request.Context(), number, req.RequestRefs, actor)
	if err != nil {
		respondError(c, err, "Failed to add statement members")
		return
	}

	logger.Info("Statement members added",
		slog.String("number", number),
		slog.Int("count", len(req.RequestRefs)))
	c.JSON(http.StatusOK, dto.ToStatementResponse(statement))
}

func (h *statementHandler) recomputeTotals(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}

	statement, err := h.statementService.RecomputeTotals(c.Request.Context(), c.Param("number"), actor)
	if err != nil {
		respondError(c, err, "Failed to recompute statement totals")
		return
	}
	c.JSON(http.StatusOK, dto.ToStatementResponse(statement))
}

// sealStatementResponse is the body returned by the seal command.
type sealStatementResponse struct {
	Statement    dto.StatementResponse     `json:"statement"`
	ExpenseLines []dto.ExpenseLineResponse `json:"expenseLines"`
}

// sealExpenses godoc
// @Summary Seal a statement's expenses
// @Description Freezes membership and mints one expense line per member. Repeated calls are no-ops.
// @Tags statements
// @Produce  json
// @Param   number path string true "Statement number"
// @Success 200 {object} sealStatementResponse
// @Failure 400 {object} dto.ErrorResponse "Statement has no members"
// @Router /statements/{number}/seal [post]
func (h *statementHandler) sealExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	number := c.Param("number")

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	statement, lines, err := h.statementService.SealExpenses(c.Request.Context(), number, actor)
	if err != nil {
		respondError(c, err, "Failed to seal statement")
		return
	}

	logger.Info("Statement sealed", slog.String("number", number), slog.Int("expense_lines", len(lines)))
	c.JSON(http.StatusOK, sealStatementResponse{
		Statement:    dto.ToStatementResponse(statement),
		ExpenseLines: dto.ToExpenseLineResponses(lines),
	})
}

func (h *statementHandler) listExpenseLines(c *gin.Context) {
	lines, err := h.statementService.ListExpenseLines(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err, "Failed to list expense lines")
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenseLines": dto.ToExpenseLineResponses(lines)})
}

// issueCheque godoc
// @Summary Issue the cheque of a statement
// @Description The cheque carries the statement's net totals. One active cheque per statement.
// @Tags cheques
// @Accept  json
// @Produce  json
// @Param   number path string true "Statement number"
// @Param   cheque body dto.IssueChequeRequest true "Bank and beneficiary"
// @Success 201 {object} dto.ChequeResponse
// @Failure 409 {object} dto.ErrorResponse "Statement already has an active cheque"
// @Router /statements/{number}/cheque [post]
func (h *statementHandler) issueCheque(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	number := c.Param("number")
	var req dto.IssueChequeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	cheque, err := h.chequeService.IssueCheque(c.Request.Context(), number, req, actor)
	if err != nil {
		respondError(c, err, "Failed to issue cheque")
		return
	}

	logger.Info("Cheque issued", slog.String("statement", number), slog.String("cheque", cheque.Number))
	c.JSON(http.StatusCreated, dto.ToChequeResponse(cheque))
}

func (h *statementHandler) getCheque(c *gin.Context) {
	cheque, err := h.chequeService.GetCheque(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err, "Failed to retrieve cheque")
		return
	}
	c.JSON(http.StatusOK, dto.ToChequeResponse(cheque))
}

// setChequeStatus godoc
// @Summary Move a cheque along its lifecycle
// @Tags cheques
// @Accept  json
// @Produce  json
// @Param   number path string true "Cheque number"
// @Param   status body dto.SetChequeStatusRequest true "Target status"
// @Success 200 {object} dto.ChequeResponse
// @Failure 409 {object} dto.ErrorResponse "Invalid state transition"
// @Router /cheques/{number}/status [put]
func (h *statementHandler) setChequeStatus(c *gin.Context) {
	number := c.Param("number")
	var req dto.SetChequeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	cheque, err := h.chequeService.SetChequeStatus(c.Request.Context(), number, req, actor)
	if err != nil {
		respondError(c, err, "Failed to update cheque status")
		return
	}
	c.JSON(http.StatusOK, dto.ToChequeResponse(cheque))
}
