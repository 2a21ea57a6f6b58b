package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fitbook/internal/authz"
	"fitbook/internal/models/db_models"
	"fitbook/internal/models/request_models"
	"fitbook/pkg/utils"

	"github.com/stretchr/testify/require"
)

func gymRequest(name string) request_models.BusinessRequest {
	return request_models.BusinessRequest{
		Name:             name,
		Address:          "10 Market Road",
		Postcode:         "n7 9pw",
		City:             "London",
		Phone:            "02070000000",
		Email:            "hello@gym.test",
		BusinessType:     "gym",
		Specialties:      []string{"strength", " ", "strength", "hiit"},
		AgeRanges:        []string{"adults"},
		DifficultyLevels: []string{"beginner"},
	}
}

func TestRegister_PromotesOwnerAndWaitsForApproval(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	owner := e.user("owner", authz.RoleUser)

	resp, err := e.businesses.Register(ctx, owner, gymRequest("Iron Works"))
	require.NoError(t, err)
	require.False(t, resp.Approved)
	require.False(t, resp.BookingEnabled)
	require.True(t, resp.Claimed)
	require.Equal(t, "N7 9PW", resp.Postcode)
	require.Equal(t, []string{"strength", "hiit"}, resp.Specialties)
	require.Equal(t, string(db_models.TierFree), resp.SubscriptionTier)
	require.Equal(t, authz.RoleBusiness, e.actor("owner").Role)

	require.Len(t, e.notifier.to(adminEmail), 1)
	require.Contains(t, e.events.keys, EventBusinessRegistered)

	mine, err := e.businesses.GetMy(ctx, e.actor("owner"))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, resp.ID, mine[0].ID)

	// Unapproved listings are hidden from other callers.
	_, err = e.businesses.Get(ctx, authz.Anonymous(), resp.ID.String())
	require.ErrorIs(t, err, utils.ErrNotFound)
	_, err = e.businesses.Get(ctx, e.actor("owner"), resp.ID.String())
	require.NoError(t, err)
}

func TestRegister_ReportsEveryMissingField(t *testing.T) {
	e := newEnv()
	owner := e.user("owner", authz.RoleUser)

	_, err := e.businesses.Register(context.Background(), owner, request_models.BusinessRequest{Name: "Only a name"})
	require.ErrorIs(t, err, utils.ErrValidation)

	fields := map[string]bool{}
	for _, f := range utils.FieldsOf(err) {
		fields[f.Field] = true
	}
	for _, want := range []string{"address", "postcode", "phone", "business_type", "specialties", "age_ranges", "difficulty_levels"} {
		require.True(t, fields[want], "missing field error for %s", want)
	}
	require.Empty(t, e.store.data.businesses)
	require.Equal(t, authz.RoleUser, e.actor("owner").Role)
}

func TestRegister_RequiresSignIn(t *testing.T) {
	e := newEnv()
	_, err := e.businesses.Register(context.Background(), authz.Anonymous(), gymRequest("Iron Works"))
	require.ErrorIs(t, err, utils.ErrAuthentication)
}

func TestApprove_DoesNotEnableBookingUntilUpgrade(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	owner := e.user("owner", authz.RoleUser)
	admin := e.user("admin", authz.RoleAdmin)

	reg, err := e.businesses.Register(ctx, owner, gymRequest("Iron Works"))
	require.NoError(t, err)

	before := e.store.data.businesses[reg.ID]
	_, err = e.businesses.Approve(ctx, e.actor("owner"), reg.ID.String(), true)
	require.ErrorIs(t, err, utils.ErrAuthorization)
	require.Equal(t, before, e.store.data.businesses[reg.ID])

	approved, err := e.businesses.Approve(ctx, admin, reg.ID.String(), true)
	require.NoError(t, err)
	require.True(t, approved.Approved)
	require.False(t, approved.BookingEnabled)
	require.Len(t, e.notifier.to(owner.Email), 1)

	up, err := e.businesses.UpgradeSubscription(ctx, e.actor("owner"), reg.ID.String(), "Basic")
	require.NoError(t, err)
	require.True(t, up.Business.BookingEnabled)
	require.Equal(t, "basic", up.Business.SubscriptionTier)
	require.Equal(t, "sub_1", up.SubscriptionID)
	require.NotEmpty(t, up.ClientSecret)
	require.NotNil(t, up.Business.SubscriptionExpiry)
	require.Equal(t, []string{"cus_1:price_basic"}, e.gateway.subs)

	// The gateway customer is created once and reused.
	_, err = e.businesses.UpgradeSubscription(ctx, e.actor("owner"), reg.ID.String(), "premium")
	require.NoError(t, err)
	require.Equal(t, 1, e.gateway.customers)
	require.Equal(t, []string{"cus_1:price_basic", "cus_1:price_premium"}, e.gateway.subs)

	// Revoking approval disables booking without touching the subscription.
	revoked, err := e.businesses.Approve(ctx, admin, reg.ID.String(), false)
	require.NoError(t, err)
	require.False(t, revoked.BookingEnabled)
	require.Equal(t, "premium", revoked.SubscriptionTier)
}

func TestApprove_Idempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	owner := e.user("owner", authz.RoleUser)
	admin := e.user("admin", authz.RoleAdmin)

	reg, err := e.businesses.Register(ctx, owner, gymRequest("Iron Works"))
	require.NoError(t, err)

	once, err := e.businesses.Approve(ctx, admin, reg.ID.String(), true)
	require.NoError(t, err)
	afterOnce := e.store.data.businesses[reg.ID]

	twice, err := e.businesses.Approve(ctx, admin, reg.ID.String(), true)
	require.NoError(t, err)
	afterTwice := e.store.data.businesses[reg.ID]

	// Only the update stamp moves.
	afterOnce.UpdatedAt, afterTwice.UpdatedAt = 0, 0
	require.Equal(t, afterOnce, afterTwice)
	require.Equal(t, once, twice)
	require.True(t, afterTwice.Approved)
	require.False(t, afterTwice.BookingEnabled())
}

func TestUpgrade_OwnerOnlyAndValidTier(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	b := e.bookableBusiness("owner")
	e.user("owner", authz.RoleBusiness)
	admin := e.user("admin", authz.RoleAdmin)
	stranger := e.user("stranger", authz.RoleUser)

	_, err := e.businesses.UpgradeSubscription(ctx, stranger, b.ID.String(), "premium")
	require.ErrorIs(t, err, utils.ErrAuthorization)
	_, err = e.businesses.UpgradeSubscription(ctx, admin, b.ID.String(), "premium")
	require.ErrorIs(t, err, utils.ErrAuthorization)

	_, err = e.businesses.UpgradeSubscription(ctx, e.actor("owner"), b.ID.String(), "platinum")
	require.ErrorIs(t, err, utils.ErrValidation)

	_, err = e.businesses.UpgradeSubscription(ctx, e.actor("owner"), "not-an-id", "basic")
	require.ErrorIs(t, err, utils.ErrValidation)
	require.Empty(t, e.gateway.subs)
}

func TestUpgrade_GatewayFailureLeavesBusinessUnchanged(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.user("owner", authz.RoleBusiness)
	b := e.bookableBusiness("owner")
	b.SubscriptionTier = db_models.TierFree
	b.SubscriptionActive = false
	e.store.data.businesses[b.ID] = b

	e.gateway.subErr = fmt.Errorf("card declined")
	_, err := e.businesses.UpgradeSubscription(ctx, e.actor("owner"), b.ID.String(), "basic")
	require.ErrorIs(t, err, utils.ErrPaymentGateway)

	stored := e.store.data.businesses[b.ID]
	require.Equal(t, db_models.TierFree, stored.SubscriptionTier)
	require.False(t, stored.BookingEnabled())
}

func TestUpgrade_FreeTierDowngrades(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.user("owner", authz.RoleBusiness)
	b := e.bookableBusiness("owner")

	resp, err := e.businesses.UpgradeSubscription(ctx, e.actor("owner"), b.ID.String(), "free")
	require.NoError(t, err)
	require.False(t, resp.Business.BookingEnabled)
	require.Equal(t, "free", resp.Business.SubscriptionTier)
	require.Empty(t, resp.SubscriptionID)
	require.Zero(t, e.gateway.customers)
}

func TestWebhook_ReconcilesSubscription(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.user("owner", authz.RoleBusiness)
	b := e.bookableBusiness("owner")
	ref := "sub_live"
	b.ExternalSubscriptionRef = &ref
	e.store.data.businesses[b.ID] = b

	periodEnd := time.Date(2031, 2, 1, 0, 0, 0, 0, time.UTC)
	e.gateway.webhookEvent = &SubscriptionEvent{EventID: "evt_1", SubscriptionRef: ref, Status: "active", PeriodEnd: periodEnd}
	require.NoError(t, e.businesses.HandlePaymentWebhook(ctx, []byte("{}"), "sig"))
	stored := e.store.data.businesses[b.ID]
	require.True(t, stored.BookingEnabled())
	require.Equal(t, periodEnd.Unix(), *stored.SubscriptionExpiry)

	// Statuses it does not act on leave the row alone.
	e.gateway.webhookEvent = &SubscriptionEvent{EventID: "evt_2", SubscriptionRef: ref, Status: "past_due"}
	require.NoError(t, e.businesses.HandlePaymentWebhook(ctx, []byte("{}"), "sig"))
	stored = e.store.data.businesses[b.ID]
	require.True(t, stored.BookingEnabled())

	e.gateway.webhookEvent = &SubscriptionEvent{EventID: "evt_3", SubscriptionRef: ref, Status: "canceled"}
	require.NoError(t, e.businesses.HandlePaymentWebhook(ctx, []byte("{}"), "sig"))
	stored = e.store.data.businesses[b.ID]
	require.False(t, stored.BookingEnabled())
	require.Equal(t, db_models.TierFree, stored.SubscriptionTier)
	require.Nil(t, stored.ExternalSubscriptionRef)
	require.Contains(t, e.events.keys, EventSubscriptionChanged)
}

func TestWebhook_UnknownSubscriptionAndIgnoredEvents(t *testing.T) {
	e := newEnv()
	e.gateway.webhookEvent = &SubscriptionEvent{SubscriptionRef: "sub_nobody", Status: "canceled"}
	require.NoError(t, e.businesses.HandlePaymentWebhook(context.Background(), nil, "sig"))

	e.gateway.webhookEvent = nil
	require.NoError(t, e.businesses.HandlePaymentWebhook(context.Background(), nil, "sig"))
	require.Empty(t, e.events.keys)
}

func TestWebhook_BadSignature(t *testing.T) {
	e := newEnv()
	e.gateway.webhookErr = fmt.Errorf("%w: no signatures found", ErrWebhookSignature)
	err := e.businesses.HandlePaymentWebhook(context.Background(), []byte("{}"), "bogus")
	require.ErrorIs(t, err, utils.ErrAuthentication)

	e.gateway.webhookErr = fmt.Errorf("unexpected end of JSON input")
	err = e.businesses.HandlePaymentWebhook(context.Background(), []byte("{"), "sig")
	require.ErrorIs(t, err, utils.ErrValidation)
}

func TestClaimFlow(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	admin := e.user("admin", authz.RoleAdmin)
	claimant := e.user("claimant", authz.RoleUser)
	rival := e.user("rival", authz.RoleUser)

	_, err := e.businesses.AddManual(ctx, claimant, gymRequest("Corner Boxing"))
	require.ErrorIs(t, err, utils.ErrAuthorization)

	manual, err := e.businesses.AddManual(ctx, admin, request_models.BusinessRequest{
		Name: "Corner Boxing", Address: "2 Side St", Postcode: "E1 6AN",
	})
	require.NoError(t, err)
	require.True(t, manual.Approved)
	require.True(t, manual.ManuallyAdded)
	require.Nil(t, manual.UserID)

	unclaimed, err := e.businesses.ListUnclaimed(ctx)
	require.NoError(t, err)
	require.Len(t, unclaimed, 1)

	_, err = e.businesses.Claim(ctx, claimant, manual.ID.String(), request_models.ClaimBusinessRequest{})
	require.ErrorIs(t, err, utils.ErrValidation)

	claim, err := e.businesses.Claim(ctx, claimant, manual.ID.String(), request_models.ClaimBusinessRequest{
		Message:               "I run this gym",
		VerificationDocuments: []string{"https://docs.test/lease.pdf"},
	})
	require.NoError(t, err)
	require.Equal(t, string(db_models.ClaimPending), claim.Status)
	require.Equal(t, "Corner Boxing", claim.BusinessName)
	require.Len(t, e.notifier.to(adminEmail), 1)

	_, err = e.businesses.Claim(ctx, claimant, manual.ID.String(), request_models.ClaimBusinessRequest{Message: "again"})
	require.ErrorIs(t, err, utils.ErrConflict)

	rivalClaim, err := e.businesses.Claim(ctx, rival, manual.ID.String(), request_models.ClaimBusinessRequest{Message: "mine"})
	require.NoError(t, err)

	pending, err := e.businesses.ListPendingClaims(ctx, admin)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	decided, err := e.businesses.DecideClaim(ctx, admin, claim.ID.String(), true, "lease checked")
	require.NoError(t, err)
	require.Equal(t, string(db_models.ClaimApproved), decided.Status)
	require.NotNil(t, decided.ApprovedAt)

	stored := e.store.data.businesses[manual.ID]
	require.True(t, stored.Claimed)
	require.True(t, stored.OwnedBy("claimant"))
	require.Equal(t, authz.RoleBusiness, e.actor("claimant").Role)
	require.Len(t, e.notifier.to(claimant.Email), 1)

	_, err = e.businesses.DecideClaim(ctx, admin, claim.ID.String(), false, "")
	require.ErrorIs(t, err, utils.ErrConflict)

	// The business is no longer claimable, so the rival claim cannot win.
	_, err = e.businesses.DecideClaim(ctx, admin, rivalClaim.ID.String(), true, "")
	require.ErrorIs(t, err, utils.ErrConflict)
	require.Equal(t, db_models.ClaimPending, e.store.data.claims[rivalClaim.ID].Status)

	rejected, err := e.businesses.DecideClaim(ctx, admin, rivalClaim.ID.String(), false, "not the owner")
	require.NoError(t, err)
	require.Equal(t, string(db_models.ClaimRejected), rejected.Status)
	require.Equal(t, authz.RoleUser, e.actor("rival").Role)

	unclaimed, err = e.businesses.ListUnclaimed(ctx)
	require.NoError(t, err)
	require.Empty(t, unclaimed)

	_, err = e.businesses.Claim(ctx, rival, manual.ID.String(), request_models.ClaimBusinessRequest{Message: "please"})
	require.ErrorIs(t, err, utils.ErrConflict)
}

func TestClaim_OwnedBusinessIsNotClaimable(t *testing.T) {
	e := newEnv()
	e.user("owner", authz.RoleBusiness)
	b := e.bookableBusiness("owner")
	claimant := e.user("claimant", authz.RoleUser)

	_, err := e.businesses.Claim(context.Background(), claimant, b.ID.String(), request_models.ClaimBusinessRequest{Message: "mine"})
	require.ErrorIs(t, err, utils.ErrConflict)
	require.Empty(t, e.store.data.claims)
}
