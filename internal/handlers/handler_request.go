package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/gin-gonic/gin"
)

// requestHandler handles HTTP requests related to expenditure requests.
type requestHandler struct {
	requestService portssvc.RequestSvcFacade
}

func newRequestHandler(rs portssvc.RequestSvcFacade) *requestHandler {
	return &requestHandler{requestService: rs}
}

// registerRequestRoutes registers routes related to expenditure requests.
func registerRequestRoutes(rg *gin.RouterGroup, requestService portssvc.RequestSvcFacade) {
	h := newRequestHandler(requestService)

	requests := rg.Group("/requests")
	{
		requests.POST("", h.createRequest)
		requests.GET("", h.listRequests)
		requests.GET("/:ref", h.getRequest)
		requests.PUT("/:ref", h.editRequest)
		requests.POST("/:ref/validate", h.validateRequest)
	}
}

// createRequest godoc
// @Summary Submit an expenditure request
// @Description Creates a pending request with a fresh DEM reference
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   request body dto.CreateRequestRequest true "Request details"
// @Success 201 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /requests [post]
func (h *requestHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	created, err := h.requestService.CreateRequest(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create request")
		return
	}

	logger.Info("Request submitted", slog.String("reference", created.Reference))
	c.JSON(http.StatusCreated, dto.ToRequestResponse(created))
}

// listRequests godoc
// @Summary List expenditure requests
// @Tags requests
// @Produce  json
// @Param   state query string false "State filter"
// @Param   service query string false "Requesting service"
// @Param   author query string false "Author"
// @Param   currency query string false "Currency code"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListRequestsResponse
// @Router /requests [get]
func (h *requestHandler) listRequests(c *gin.Context) {
	var params dto.ListRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}

	resp, err := h.requestService.ListRequests(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list requests")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *requestHandler) getRequest(c *gin.Context) {
	request, err := h.requestService.GetRequest(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err, "Failed to retrieve request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(request))
}

// editRequest godoc
// @Summary Edit a pending request
// @Description Only the author may edit, and only while the request is pending
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   ref path string true "Request reference"
// @Param   request body dto.EditRequestRequest true "Fields to change"
// @Success 200 {object} dto.RequestResponse
// @Failure 403 {object} dto.ErrorResponse "Actor is not the author"
// @Failure 409 {object} dto.ErrorResponse "Request is no longer pending"
// @Router /requests/{ref} [put]
func (h *requestHandler) editRequest(c *gin.Context) {
	ref := c.Param("ref")
	var req dto.EditRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	updated, err := h.requestService.EditRequest(c.Request.Context(), ref, req, actor)
	if err != nil {
		respondError(c, err, "Failed to edit request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(updated))
}

// validateRequest godoc
// @Summary Record the approver's decision
// @Tags requests
// @Accept  json
// @Produce  json
// @Param   ref path string true "Request reference"
// @Param   decision body dto.ValidateRequestRequest true "Decision"
// @Success 200 {object} dto.RequestResponse
// @Failure 409 {object} dto.ErrorResponse "Invalid state transition"
// @Router /requests/{ref}/validate [post]
func (h *requestHandler) validateRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	ref := c.Param("ref")
	var req dto.ValidateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}

	validated, err := h.requestService.ValidateRequest(c.Request.Context(), ref, req, actor)
	if err != nil {
		respondError(c, err, "Failed to validate request")
		return
	}

	logger.Info("Request decision recorded", slog.String("reference", ref), slog.String("decision", req.Decision))
	c.JSON(http.StatusOK, dto.ToRequestResponse(validated))
}
