package services

import (
	"context"
	"fmt"
	"strings"

	"fitbook/internal/authz"
	"fitbook/internal/models/db_models"
	"fitbook/internal/models/request_models"
	"fitbook/internal/models/response_models"
	"fitbook/internal/repositories"
	"fitbook/pkg/utils"

	"github.com/google/uuid"
)

type claimEvent struct {
	ClaimID    uuid.UUID `json:"claim_id"`
	BusinessID uuid.UUID `json:"business_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	At         int64     `json:"at"`
}

func (s *businessService) Claim(ctx context.Context, actor authz.Actor, id string, req request_models.ClaimBusinessRequest) (*response_models.ClaimResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	bid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	var v utils.Validator
	v.Required("message", req.Message)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var (
		b     *db_models.Business
		claim *db_models.BusinessClaim
	)
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		b, err = tx.Businesses().FindByIDForUpdate(ctx, bid)
		if err != nil {
			return utils.Database(err)
		}
		if b == nil {
			return utils.NotFound("business")
		}
		if !b.Claimable() {
			return utils.NewError(utils.ErrConflict, "business is already claimed or cannot be claimed")
		}
		pending, err := tx.Claims().HasPending(ctx, bid, actor.UserID)
		if err != nil {
			return utils.Database(err)
		}
		if pending {
			return utils.NewError(utils.ErrConflict, "you already have a pending claim for this business")
		}

		claim = &db_models.BusinessClaim{
			BusinessID:            bid,
			UserID:                actor.UserID,
			ClaimMessage:          strings.TrimSpace(req.Message),
			VerificationDocuments: cleanList(req.VerificationDocuments),
			Status:                db_models.ClaimPending,
		}
		if err := tx.Claims().Create(ctx, claim); err != nil {
			return utils.Database(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.effects.notify(ctx, Message{
		To:       s.market.AdminEmail,
		Subject:  "New business claim: " + b.Name,
		Body:     fmt.Sprintf("%s has asked to claim %s.", actor.Email, b.Name),
		CTAText:  "Review claims",
		CTAURL:   s.market.link("/admin/claims"),
		Category: EventClaimSubmitted,
	})
	s.effects.publish(ctx, EventClaimSubmitted, claimEvent{
		ClaimID: claim.ID, BusinessID: bid, UserID: actor.UserID, Status: string(claim.Status), At: s.now().Unix(),
	})

	resp := toClaimResponse(claim, b.Name)
	return &resp, nil
}

// DecideClaim approves or rejects a pending claim. Approval binds the
// business to the claimant in the same transaction as the claim update.
func (s *businessService) DecideClaim(ctx context.Context, actor authz.Actor, claimID string, approve bool, notes string) (*response_models.ClaimResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	cid, err := parseID("id", claimID)
	if err != nil {
		return nil, err
	}

	var (
		claim *db_models.BusinessClaim
		b     *db_models.Business
	)
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		claim, err = tx.Claims().FindByIDForUpdate(ctx, cid)
		if err != nil {
			return utils.Database(err)
		}
		if claim == nil {
			return utils.NotFound("claim")
		}
		if claim.Status != db_models.ClaimPending {
			return utils.NewError(utils.ErrConflict, "claim has already been %s", claim.Status)
		}

		b, err = tx.Businesses().FindByIDForUpdate(ctx, claim.BusinessID)
		if err != nil {
			return utils.Database(err)
		}
		if b == nil {
			return utils.NotFound("business")
		}

		now := s.now().Unix()
		claim.AdminNotes = strings.TrimSpace(notes)
		claim.DecidedAt = &now

		if !approve {
			claim.Status = db_models.ClaimRejected
			if err := tx.Claims().Save(ctx, claim); err != nil {
				return utils.Database(err)
			}
			return nil
		}

		if !b.Claimable() {
			return utils.NewError(utils.ErrConflict, "business is already claimed")
		}
		owner := claim.UserID
		b.UserID = &owner
		b.Claimed = true
		if err := tx.Businesses().Save(ctx, b); err != nil {
			return utils.Database(err)
		}
		claim.Status = db_models.ClaimApproved
		claim.ApprovedAt = &now
		if err := tx.Claims().Save(ctx, claim); err != nil {
			return utils.Database(err)
		}
		return promoteToBusiness(ctx, tx, claim.UserID)
	})
	if err != nil {
		return nil, err
	}

	subject := "Your claim was not approved"
	body := fmt.Sprintf("Your claim for %s was reviewed and not approved.", b.Name)
	if approve {
		subject = "Your claim was approved"
		body = fmt.Sprintf("You now manage %s.", b.Name)
		s.effects.publish(ctx, EventBusinessClaimed, s.event(b))
	}
	if claim.AdminNotes != "" {
		body += " Notes: " + claim.AdminNotes
	}
	s.effects.notify(ctx, Message{
		To:       s.contactFor(ctx, &claim.UserID, ""),
		Subject:  subject,
		Body:     body,
		CTAText:  "Open dashboard",
		CTAURL:   s.market.link("/business/dashboard"),
		Category: EventClaimDecided,
	})
	s.effects.publish(ctx, EventClaimDecided, claimEvent{
		ClaimID: claim.ID, BusinessID: b.ID, UserID: claim.UserID, Status: string(claim.Status), At: s.now().Unix(),
	})

	resp := toClaimResponse(claim, b.Name)
	return &resp, nil
}

func (s *businessService) ListPendingClaims(ctx context.Context, actor authz.Actor) ([]response_models.ClaimResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	claims, err := s.store.Claims().ListPending(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}

	ids := make([]uuid.UUID, 0, len(claims))
	for _, c := range claims {
		ids = append(ids, c.BusinessID)
	}
	businesses, err := s.store.Businesses().FindByIDs(ctx, ids)
	if err != nil {
		return nil, utils.Database(err)
	}
	names := make(map[uuid.UUID]string, len(businesses))
	for _, b := range businesses {
		names[b.ID] = b.Name
	}

	out := make([]response_models.ClaimResponse, 0, len(claims))
	for i := range claims {
		out = append(out, toClaimResponse(&claims[i], names[claims[i].BusinessID]))
	}
	return out, nil
}
