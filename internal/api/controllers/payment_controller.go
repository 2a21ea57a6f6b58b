package controllers

import (
	"io"
	"net/http"

	"fitbook/internal/models/request_models"
	"fitbook/internal/services"
	"fitbook/pkg/middleware"
	"fitbook/pkg/utils"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds the webhook payload read into memory.
const maxWebhookBody = 1 << 16

type PaymentController struct {
	bookingService  services.BookingService
	businessService services.BusinessService
}

func NewPaymentController(bookingService services.BookingService, businessService services.BusinessService) *PaymentController {
	return &PaymentController{
		bookingService:  bookingService,
		businessService: businessService,
	}
}

// CreatePaymentIntent godoc
// @Summary Authorize a payment for a session or trainer slot
// @Description The amount is computed server-side from the price plus the platform fee
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.PaymentIntentRequest true "What is being paid for"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /create-payment-intent [post]
func (p *PaymentController) CreatePaymentIntent(c *gin.Context) {
	var request request_models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	intent, err := p.bookingService.CreatePaymentIntent(c.Request.Context(), middleware.ActorFrom(c), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, intent, "Payment intent created successfully")
}

// HandleWebhook godoc
// @Summary Stripe subscription webhook
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /webhooks/stripe [post]
func (p *PaymentController) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unable to read body")
		return
	}

	if err := p.businessService.HandlePaymentWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Webhook processed")
}
