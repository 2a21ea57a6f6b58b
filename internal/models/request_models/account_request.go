package request_models

type GoogleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user business admin"`
}
