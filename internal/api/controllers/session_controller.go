package controllers

import (
	"net/http"

	"fitbook/internal/models/request_models"
	"fitbook/internal/services"
	"fitbook/pkg/middleware"
	"fitbook/pkg/utils"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	sessionService services.SessionService
}

func NewSessionController(sessionService services.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// ListSessionTypes godoc
// @Summary Session type vocabulary
// @Tags Sessions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /session-types [get]
func (s *SessionController) ListSessionTypes(c *gin.Context) {
	types, err := s.sessionService.ListSessionTypes(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, types, "Session types fetched successfully")
}

// Create godoc
// @Summary Create a session
// @Description The session starts unapproved; the business must be approved and owned by the caller
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body request_models.CreateSessionRequest true "Session"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /sessions [post]
func (s *SessionController) Create(c *gin.Context) {
	var req request_models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	sess, err := s.sessionService.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, sess, "Session created and awaiting approval")
}

// Search godoc
// @Summary Search approved sessions
// @Tags Sessions
// @Produce json
// @Param postcode query string false "Postcode fragment"
// @Param session_type query string false "Session type name"
// @Param age_group query string false "Age group"
// @Param difficulty query string false "Difficulty"
// @Param min_price query int false "Minimum price (minor units)"
// @Param max_price query int false "Maximum price (minor units)"
// @Success 200 {object} utils.APIResponse
// @Router /sessions/search [get]
func (s *SessionController) Search(c *gin.Context) {
	var q request_models.SessionSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	list, err := s.sessionService.Search(c.Request.Context(), q)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Sessions fetched successfully")
}

// Get godoc
// @Summary Session detail
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /sessions/{id} [get]
func (s *SessionController) Get(c *gin.Context) {
	sess, err := s.sessionService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, sess, "Session fetched successfully")
}

// ListByBusiness godoc
// @Summary List a business's sessions, including pending ones
// @Tags Sessions
// @Produce json
// @Param businessId path string true "Business ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /sessions/business/{businessId} [get]
func (s *SessionController) ListByBusiness(c *gin.Context) {
	list, err := s.sessionService.ListByBusiness(c.Request.Context(), middleware.ActorFrom(c), c.Param("businessId"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Sessions fetched successfully")
}

// ListPending godoc
// @Summary Session approval queue
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/sessions/pending [get]
func (s *SessionController) ListPending(c *gin.Context) {
	list, err := s.sessionService.ListPending(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Pending sessions fetched successfully")
}

// Approve godoc
// @Summary Approve or unapprove a session
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request_models.ApproveRequest true "Decision"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/sessions/{id}/approve [put]
func (s *SessionController) Approve(c *gin.Context) {
	var req request_models.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	sess, err := s.sessionService.Approve(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), *req.Approved)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, sess, "Session updated")
}
