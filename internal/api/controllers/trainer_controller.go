package controllers

import (
	"net/http"

	"fitbook/internal/models/request_models"
	"fitbook/internal/services"
	"fitbook/pkg/middleware"
	"fitbook/pkg/utils"

	"github.com/gin-gonic/gin"
)

type TrainerController struct {
	trainerService services.TrainerService
}

func NewTrainerController(trainerService services.TrainerService) *TrainerController {
	return &TrainerController{trainerService: trainerService}
}

// Apply godoc
// @Summary Apply as a personal trainer
// @Tags Trainers
// @Accept json
// @Produce json
// @Param request body request_models.ApplyTrainerRequest true "Trainer profile"
// @Success 201 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /personal-trainers [post]
func (t *TrainerController) Apply(c *gin.Context) {
	var req request_models.ApplyTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	trainer, err := t.trainerService.Apply(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, trainer, "Application submitted")
}

// Search godoc
// @Summary Search approved trainers
// @Tags Trainers
// @Produce json
// @Param search query string false "Name or bio"
// @Param specialty query string false "Specialty"
// @Param location query string false "Location"
// @Param max_rate query int false "Maximum hourly rate (minor units)"
// @Success 200 {object} utils.APIResponse
// @Router /personal-trainers/search [get]
func (t *TrainerController) Search(c *gin.Context) {
	var q request_models.TrainerSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	list, err := t.trainerService.Search(c.Request.Context(), q)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Trainers fetched successfully")
}

// ListMy godoc
// @Summary The caller's trainer profile
// @Tags Trainers
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /personal-trainers/my [get]
func (t *TrainerController) ListMy(c *gin.Context) {
	list, err := t.trainerService.ListMy(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Trainer profiles fetched successfully")
}

// Get godoc
// @Summary Trainer detail
// @Tags Trainers
// @Produce json
// @Param id path string true "Trainer ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /personal-trainers/{id} [get]
func (t *TrainerController) Get(c *gin.Context) {
	trainer, err := t.trainerService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, trainer, "Trainer fetched successfully")
}

// ListPending godoc
// @Summary Trainer approval queue
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/trainers/pending [get]
func (t *TrainerController) ListPending(c *gin.Context) {
	list, err := t.trainerService.ListPending(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Pending trainers fetched successfully")
}

// Approve godoc
// @Summary Approve or unapprove a trainer
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Trainer ID"
// @Param request body request_models.ApproveRequest true "Decision"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/trainers/{id}/approve [put]
func (t *TrainerController) Approve(c *gin.Context) {
	var req request_models.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	trainer, err := t.trainerService.Approve(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), *req.Approved)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, trainer, "Trainer updated")
}

// SetBookingEnabled godoc
// @Summary Open or close a trainer for bookings
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Trainer ID"
// @Param request body request_models.TrainerBookingToggleRequest true "Toggle"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/trainers/{id}/booking [put]
func (t *TrainerController) SetBookingEnabled(c *gin.Context) {
	var req request_models.TrainerBookingToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	trainer, err := t.trainerService.SetBookingEnabled(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), *req.Enabled)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, trainer, "Trainer updated")
}
