package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to bank accounts and their movements.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.openAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.GET("/:accountID/balance", h.getAccountBalance)
		accounts.GET("/:accountID/movements", h.listMovements)
		accounts.GET("/:accountID/verify", h.verifyAccount)
		accounts.DELETE("/:accountID", h.deactivateAccount)
	}

	rg.POST("/movements/:movementID/reverse", h.reverseMovement)
}

// openAccount godoc
// @Summary Open a bank account
// @Description Creates an active account with its initial balance
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.OpenAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 409 {object} dto.ErrorResponse "Account number already registered at this bank"
// @Failure 500 {object} dto.ErrorResponse "Failed to open account"
// @Router /accounts [post]
func (h *accountHandler) openAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	logger.Info("Received request to open account", slog.String("bank", req.Bank), slog.String("currency", req.Currency))

	account, err := h.accountService.OpenAccount(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to open account")
		return
	}

	logger.Info("Account opened successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Retrieves a page of accounts, optionally filtered by bank and currency
// @Tags accounts
// @Produce  json
// @Param   bank query string false "Bank"
// @Param   currency query string false "Currency code (CDF or USD)"
// @Param   activeOnly query bool false "Only active accounts"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	resp, err := h.accountService.ListAccounts(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}

	logger.Info("Accounts listed successfully", slog.Int("count", len(resp.Accounts)))
	c.JSON(http.StatusOK, resp)
}

// getAccountBalance godoc
// @Summary Get account balance
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /accounts/{accountID}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	balance, err := h.accountService.GetAccountBalance(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve balance")
		return
	}
	c.JSON(http.StatusOK, balance)
}

// listMovements godoc
// @Summary List account movements
// @Description Retrieves the movements of an account in posting order
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account ID"
// @Param limit query int false "Limit number of results" default(50)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListMovementsResponse
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /accounts/{accountID}/movements [get]
func (h *accountHandler) listMovements(c *gin.Context) {
	accountID := c.Param("accountID")

	var params dto.ListMovementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	resp, err := h.accountService.ListMovements(c.Request.Context(), accountID, params)
	if err != nil {
		respondError(c, err, "Failed to list movements")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// verifyAccount godoc
// @Summary Verify an account balance
// @Description Recomputes initial + signed movements and compares with the stored balance
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account ID"
// @Success 200 {object} dto.AccountVerification
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /accounts/{accountID}/verify [get]
func (h *accountHandler) verifyAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	accountID := c.Param("accountID")

	report, err := h.accountService.VerifyAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to verify account")
		return
	}
	if !report.Consistent {
		logger.Error("Account balance drift detected",
			slog.String("account_id", accountID),
			slog.String("drift", report.Drift.String()))
	}
	c.JSON(http.StatusOK, report)
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks an account as inactive. Inactive accounts refuse movements.
// @Tags accounts
// @Param   accountID path string true "Account ID to deactivate"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Account already inactive"
// @Router /accounts/{accountID} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	accountID := c.Param("accountID")

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	logger = logger.With(slog.String("target_account_id", accountID))
	logger.Info("Received request to deactivate account")

	if err := h.accountService.DeactivateAccount(c.Request.Context(), accountID, actor); err != nil {
		respondError(c, err, "Failed to deactivate account")
		return
	}

	logger.Info("Account deactivated successfully")
	c.Status(http.StatusNoContent)
}

// reverseMovement godoc
// @Summary Reverse a movement
// @Description Posts the opposite of a movement. A movement can be reversed once.
// @Tags accounts
// @Produce json
// @Param movementID path string true "Movement ID"
// @Success 201 {object} dto.MovementResult
// @Failure 404 {object} dto.ErrorResponse "Movement not found"
// @Failure 409 {object} dto.ErrorResponse "Movement already reversed"
// @Router /movements/{movementID}/reverse [post]
func (h *accountHandler) reverseMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	movementID := c.Param("movementID")

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	movement, warnings, err := h.accountService.ReverseMovement(c.Request.Context(), movementID, actor)
	if err != nil {
		respondError(c, err, "Failed to reverse movement")
		return
	}

	logger.Info("Movement reversed", slog.String("movement_id", movementID), slog.String("reversal_id", movement.MovementID))
	c.JSON(http.StatusCreated, dto.MovementResult{
		Movement: dto.ToMovementResponse(movement),
		Warnings: dto.ToWarningDTOs(warnings),
	})
}
