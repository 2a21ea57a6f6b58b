package controllers

import (
	"net/http"

	"fitbook/internal/models/request_models"
	"fitbook/internal/models/response_models"
	"fitbook/internal/services"
	"fitbook/pkg/config"
	"fitbook/pkg/middleware"
	"fitbook/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AccountController struct {
	accountService services.AccountServiceInterface
	session        config.SessionConfig
}

func NewAccountController(accountService services.AccountServiceInterface, cfg *config.Config) *AccountController {
	return &AccountController{
		accountService: accountService,
		session:        cfg.Session,
	}
}

// GoogleSignIn godoc
// @Summary Sign in with a Google ID token
// @Description Verifies the token, upserts the user and sets the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body request_models.GoogleSignInRequest true "Google ID token"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /auth/google [post]
func (a *AccountController) GoogleSignIn(c *gin.Context) {
	var req request_models.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	resp, err := a.accountService.SignInWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	a.setSessionCookie(c, resp)
	utils.RespondSuccess(c, resp, "Signed in")
}

// GoogleLogin godoc
// @Summary Start the Google redirect login
// @Tags Auth
// @Param next query string false "Local path to return to"
// @Success 302
// @Router /auth/google/login [get]
func (a *AccountController) GoogleLogin(c *gin.Context) {
	url, err := a.accountService.BeginGoogleLogin(c.Request.Context(), c.Query("next"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GoogleCallback godoc
// @Summary Complete the Google redirect login
// @Tags Auth
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 302
// @Failure 401 {object} utils.APIResponse
// @Router /auth/google/callback [get]
func (a *AccountController) GoogleCallback(c *gin.Context) {
	resp, returnTo, err := a.accountService.CompleteGoogleLogin(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	a.setSessionCookie(c, resp)
	c.Redirect(http.StatusFound, returnTo)
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags Auth
// @Success 200 {object} utils.APIResponse
// @Router /auth/logout [post]
func (a *AccountController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.session.CookieName, "", -1, "/", "", a.session.CookieSecure, true)
	utils.RespondSuccess(c, nil, "Signed out")
}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (a *AccountController) Me(c *gin.Context) {
	user, err := a.accountService.Me(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, user, "User fetched successfully")
}

// SetRole godoc
// @Summary Change a user's role
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body request_models.UpdateRoleRequest true "New role"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/users/{id}/role [put]
func (a *AccountController) SetRole(c *gin.Context) {
	var req request_models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	user, err := a.accountService.SetRole(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Role)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, user, "Role updated")
}

func (a *AccountController) setSessionCookie(c *gin.Context, resp *response_models.SignInResponse) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.session.CookieName, resp.Token, int(resp.ExpiresIn), "/", "", a.session.CookieSecure, true)
}
