package controllers

import (
	"net/http"

	"fitbook/internal/models/request_models"
	"fitbook/internal/services"
	"fitbook/pkg/middleware"
	"fitbook/pkg/utils"

	"github.com/gin-gonic/gin"
)

type BusinessController struct {
	businessService services.BusinessService
}

func NewBusinessController(businessService services.BusinessService) *BusinessController {
	return &BusinessController{businessService: businessService}
}

// Register godoc
// @Summary Register a business
// @Description Creates an unapproved, claimed business owned by the caller on the free tier
// @Tags Businesses
// @Accept json
// @Produce json
// @Param request body request_models.BusinessRequest true "Business"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /businesses [post]
func (b *BusinessController) Register(c *gin.Context) {
	var req request_models.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	biz, err := b.businessService.Register(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, biz, "Business registered and awaiting approval")
}

// AddManual godoc
// @Summary Add an unowned business
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.BusinessRequest true "Business"
// @Success 201 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/businesses [post]
func (b *BusinessController) AddManual(c *gin.Context) {
	var req request_models.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	biz, err := b.businessService.AddManual(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, biz, "Business added")
}

// GetMy godoc
// @Summary List the caller's businesses
// @Tags Businesses
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /businesses/my [get]
func (b *BusinessController) GetMy(c *gin.Context) {
	list, err := b.businessService.GetMy(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Businesses fetched successfully")
}

// Get godoc
// @Summary Business detail
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /businesses/{id} [get]
func (b *BusinessController) Get(c *gin.Context) {
	biz, err := b.businessService.Get(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, biz, "Business fetched successfully")
}

// ListUnclaimed godoc
// @Summary List businesses open to claims
// @Tags Businesses
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /businesses/unclaimed [get]
func (b *BusinessController) ListUnclaimed(c *gin.Context) {
	list, err := b.businessService.ListUnclaimed(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Businesses fetched successfully")
}

// ListPending godoc
// @Summary Business approval queue
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/businesses/pending [get]
func (b *BusinessController) ListPending(c *gin.Context) {
	list, err := b.businessService.ListPending(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Pending businesses fetched successfully")
}

// Approve godoc
// @Summary Approve or unapprove a business
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body request_models.ApproveRequest true "Decision"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/businesses/{id}/approve [put]
func (b *BusinessController) Approve(c *gin.Context) {
	var req request_models.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	biz, err := b.businessService.Approve(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), *req.Approved)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, biz, "Business updated")
}

// Upgrade godoc
// @Summary Change the subscription tier
// @Description Paid tiers return a client secret to confirm the first invoice
// @Tags Businesses
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body request_models.UpgradeSubscriptionRequest true "Tier"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /businesses/{id}/upgrade [post]
func (b *BusinessController) Upgrade(c *gin.Context) {
	var req request_models.UpgradeSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	out, err := b.businessService.UpgradeSubscription(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Tier)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, out, "Subscription updated")
}

// Claim godoc
// @Summary Claim an unowned business
// @Tags Businesses
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param request body request_models.ClaimBusinessRequest true "Claim"
// @Success 201 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /businesses/{id}/claim [post]
func (b *BusinessController) Claim(c *gin.Context) {
	var req request_models.ClaimBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	claim, err := b.businessService.Claim(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, claim, "Claim submitted")
}

// ListPendingClaims godoc
// @Summary Claim review queue
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/claims/pending [get]
func (b *BusinessController) ListPendingClaims(c *gin.Context) {
	list, err := b.businessService.ListPendingClaims(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, list, "Pending claims fetched successfully")
}

// DecideClaim godoc
// @Summary Approve or reject a claim
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param request body request_models.DecideClaimRequest true "Decision"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/claims/{id}/decide [put]
func (b *BusinessController) DecideClaim(c *gin.Context) {
	var req request_models.DecideClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	claim, err := b.businessService.DecideClaim(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), *req.Approve, req.Notes)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, claim, "Claim decided")
}
