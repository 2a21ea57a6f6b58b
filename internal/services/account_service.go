package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"fitbook/internal/authz"
	"fitbook/internal/models/db_models"
	"fitbook/internal/models/response_models"
	"fitbook/internal/repositories"
	mem "fitbook/pkg/memcache"
	"fitbook/pkg/utils"

	"go.uber.org/zap"
)

const oauthStateTTL = 10 * time.Minute

type AccountServiceInterface interface {
	SignInWithGoogle(ctx context.Context, idToken string) (*response_models.SignInResponse, error)
	// BeginGoogleLogin returns the provider URL to redirect the browser to.
	BeginGoogleLogin(ctx context.Context, returnTo string) (string, error)
	// CompleteGoogleLogin consumes state and returns the session plus the
	// path the browser asked to come back to.
	CompleteGoogleLogin(ctx context.Context, state, code string) (*response_models.SignInResponse, string, error)
	ResolveActor(ctx context.Context, token string) (authz.Actor, error)
	Me(ctx context.Context, actor authz.Actor) (*response_models.UserResponse, error)
	SetRole(ctx context.Context, actor authz.Actor, userID, role string) (*response_models.UserResponse, error)
}

type AccountService struct {
	store    repositories.Store
	identity IdentityProvider
	tokens   *utils.SessionTokens
	states   mem.TokenStore
	market   MarketplaceConfig
	log      *zap.Logger
}

func NewAccountService(
	store repositories.Store,
	identity IdentityProvider,
	tokens *utils.SessionTokens,
	states mem.TokenStore,
	market MarketplaceConfig,
	log *zap.Logger,
) AccountServiceInterface {
	return &AccountService{
		store:    store,
		identity: identity,
		tokens:   tokens,
		states:   states,
		market:   market,
		log:      log,
	}
}

func (a *AccountService) SignInWithGoogle(ctx context.Context, idToken string) (*response_models.SignInResponse, error) {
	id, err := a.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, utils.WrapError(utils.ErrAuthentication, err, "invalid identity token")
	}
	return a.signIn(ctx, id)
}

func (a *AccountService) BeginGoogleLogin(ctx context.Context, returnTo string) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", err
	}
	if err := a.states.Set(ctx, state, safeReturnPath(returnTo), oauthStateTTL); err != nil {
		return "", err
	}
	return a.identity.AuthCodeURL(state), nil
}

func (a *AccountService) CompleteGoogleLogin(ctx context.Context, state, code string) (*response_models.SignInResponse, string, error) {
	if state == "" || code == "" {
		return nil, "", utils.NewError(utils.ErrAuthentication, "missing state or code")
	}
	returnTo, err := a.states.Consume(ctx, state)
	if err != nil {
		return nil, "", err
	}
	if returnTo == "" {
		return nil, "", utils.NewError(utils.ErrAuthentication, "login state expired")
	}

	id, err := a.identity.Exchange(ctx, code)
	if err != nil {
		return nil, "", utils.WrapError(utils.ErrAuthentication, err, "code exchange failed")
	}
	resp, err := a.signIn(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return resp, returnTo, nil
}

// signIn upserts the user and issues a session token. The configured admin
// address is promoted to admin on first sign-in.
func (a *AccountService) signIn(ctx context.Context, id *Identity) (*response_models.SignInResponse, error) {
	if id.Subject == "" || strings.TrimSpace(id.Email) == "" {
		return nil, utils.NewError(utils.ErrAuthentication, "identity is missing subject or email")
	}

	role := authz.RoleUser
	if a.market.AdminEmail != "" && strings.EqualFold(id.Email, a.market.AdminEmail) {
		role = authz.RoleAdmin
	}
	if err := a.store.Users().Upsert(ctx, &db_models.User{
		ID:    id.Subject,
		Email: strings.ToLower(strings.TrimSpace(id.Email)),
		Name:  id.Name,
		Role:  role,
	}); err != nil {
		return nil, utils.Database(err)
	}

	user, err := a.store.Users().FindByID(ctx, id.Subject)
	if err != nil {
		return nil, utils.Database(err)
	}
	if user == nil {
		return nil, utils.NotFound("user")
	}

	token, err := a.tokens.Create(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	a.log.Info("user signed in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	return &response_models.SignInResponse{
		Token:     token,
		ExpiresIn: int64(a.tokens.TTL().Seconds()),
		User:      toUserResponse(user),
	}, nil
}

// ResolveActor validates the session token and reloads the user so role
// changes apply on the next request.
func (a *AccountService) ResolveActor(ctx context.Context, token string) (authz.Actor, error) {
	claims, err := a.tokens.Validate(token)
	if err != nil {
		return authz.Anonymous(), utils.WrapError(utils.ErrAuthentication, err, "invalid or expired session")
	}
	user, err := a.store.Users().FindByID(ctx, claims.Subject)
	if err != nil {
		return authz.Anonymous(), utils.Database(err)
	}
	if user == nil {
		return authz.Anonymous(), utils.NewError(utils.ErrAuthentication, "unknown user")
	}
	return authz.Actor{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}, nil
}

func (a *AccountService) Me(ctx context.Context, actor authz.Actor) (*response_models.UserResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	user, err := a.store.Users().FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, utils.Database(err)
	}
	if user == nil {
		return nil, utils.NotFound("user")
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (a *AccountService) SetRole(ctx context.Context, actor authz.Actor, userID, role string) (*response_models.UserResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	r := authz.Role(role)
	if !r.Valid() {
		return nil, &utils.ServiceError{
			Kind:    utils.ErrValidation,
			Message: "invalid input",
			Fields:  []utils.FieldError{{Field: "role", Message: "must be user, business or admin"}},
		}
	}

	var out *db_models.User
	err := a.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return utils.Database(err)
		}
		if user == nil {
			return utils.NotFound("user")
		}
		if err := tx.Users().UpdateRole(ctx, user.ID, r); err != nil {
			return utils.Database(err)
		}
		user.Role = r
		out = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(out)
	return &resp, nil
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// safeReturnPath only allows local absolute paths.
func safeReturnPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return "/"
	}
	return p
}
