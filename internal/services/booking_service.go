package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitbook/internal/authz"
	"fitbook/internal/models/db_models"
	"fitbook/internal/models/request_models"
	"fitbook/internal/models/response_models"
	"fitbook/internal/repositories"
	"fitbook/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const paymentProvider = "stripe"

type BookingService interface {
	CreatePaymentIntent(ctx context.Context, actor authz.Actor, req request_models.PaymentIntentRequest) (*response_models.PaymentIntentResponse, error)

	CreateBooking(ctx context.Context, actor authz.Actor, req request_models.CreateBookingRequest) (*response_models.BookingResponse, error)
	ListMy(ctx context.Context, actor authz.Actor) ([]response_models.BookingResponse, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, id, status string) (*response_models.BookingResponse, error)

	CreateTrainerBooking(ctx context.Context, actor authz.Actor, req request_models.CreateTrainerBookingRequest) (*response_models.TrainerBookingResponse, error)
	ListMyTrainerBookings(ctx context.Context, actor authz.Actor) ([]response_models.TrainerBookingResponse, error)
	UpdateTrainerBookingStatus(ctx context.Context, actor authz.Actor, id, status string) (*response_models.TrainerBookingResponse, error)
}

type bookingService struct {
	store    repositories.Store
	payments PaymentGateway
	market   MarketplaceConfig
	effects  sideEffects
	log      *zap.Logger
	now      func() time.Time
}

func NewBookingService(
	store repositories.Store,
	payments PaymentGateway,
	notifier Notifier,
	events EventPublisher,
	market MarketplaceConfig,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		store:    store,
		payments: payments,
		market:   market,
		effects:  sideEffects{notifier: notifier, events: events, log: log},
		log:      log,
		now:      time.Now,
	}
}

// quote is an admitted booking target with its server-side price.
type quote struct {
	purpose  db_models.PaymentPurpose
	targetID uuid.UUID
	title    string
	date     time.Time
	price    int64
	fee      int64
	total    int64

	session  *db_models.FitnessSession
	business *db_models.Business
	trainer  *db_models.PersonalTrainer
}

type bookingEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Kind        string    `json:"kind"`
	UserID      string    `json:"user_id"`
	TargetID    uuid.UUID `json:"target_id"`
	SessionDate string    `json:"session_date"`
	Status      string    `json:"status"`
	TotalMinor  int64     `json:"total_amount_minor"`
	Currency    string    `json:"currency"`
	At          int64     `json:"at"`
}

func admissionError(format string, args ...any) error {
	return utils.NewError(utils.ErrAdmission, format, args...)
}

func fieldError(field, message string) error {
	return &utils.ServiceError{
		Kind:    utils.ErrValidation,
		Message: "invalid input",
		Fields:  []utils.FieldError{{Field: field, Message: message}},
	}
}

// parseBookingDate rejects malformed and past dates.
func (s *bookingService) parseBookingDate(raw string) (time.Time, error) {
	d, err := utils.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fieldError("session_date", "must be YYYY-MM-DD")
	}
	if d.Before(utils.Today(s.now())) {
		return time.Time{}, fieldError("session_date", "must not be in the past")
	}
	return d, nil
}

// admitSession checks that a session can take one more booking on date.
// With lock set the session row is locked so the capacity count holds until
// the surrounding transaction ends.
func (s *bookingService) admitSession(ctx context.Context, tx repositories.Store, sessionID uuid.UUID, date time.Time, lock bool) (*quote, error) {
	var (
		session *db_models.FitnessSession
		err     error
	)
	if lock {
		session, err = tx.Sessions().FindByIDForUpdate(ctx, sessionID)
	} else {
		session, err = tx.Sessions().FindByID(ctx, sessionID)
	}
	if err != nil {
		return nil, utils.Database(err)
	}
	if session == nil {
		return nil, admissionError("session does not exist")
	}
	if !session.Approved {
		return nil, admissionError("session is not approved")
	}
	b, err := tx.Businesses().FindByID(ctx, session.BusinessID)
	if err != nil {
		return nil, utils.Database(err)
	}
	if b == nil || !b.Approved {
		return nil, admissionError("business is not approved")
	}
	if !b.BookingEnabled() {
		return nil, admissionError("business is not taking bookings")
	}
	if !session.RunsOn(int(date.Weekday())) {
		return nil, fieldError("session_date", "session does not run on that day")
	}

	taken, err := tx.Bookings().CountActiveForSessionDate(ctx, session.ID, date)
	if err != nil {
		return nil, utils.Database(err)
	}
	if taken >= int64(session.MaxParticipants) {
		return nil, admissionError("session is full on %s", utils.FormatDate(date))
	}

	fee, total := s.market.Pricing(session.PriceMinor)
	return &quote{
		purpose:  db_models.PurposeSessionBooking,
		targetID: session.ID,
		title:    session.Title,
		date:     date,
		price:    session.PriceMinor,
		fee:      fee,
		total:    total,
		session:  session,
		business: b,
	}, nil
}

func (s *bookingService) CreatePaymentIntent(ctx context.Context, actor authz.Actor, req request_models.PaymentIntentRequest) (*response_models.PaymentIntentResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	date, err := s.parseBookingDate(req.SessionDate)
	if err != nil {
		return nil, err
	}

	var q *quote
	if strings.TrimSpace(req.TrainerID) != "" {
		tid, err := parseID("trainer_id", req.TrainerID)
		if err != nil {
			return nil, err
		}
		q, err = s.admitTrainer(ctx, s.store, tid, date, req.StartTime, req.DurationMinutes, false)
		if err != nil {
			return nil, err
		}
	} else {
		sid, err := parseID("session_id", req.SessionID)
		if err != nil {
			return nil, err
		}
		q, err = s.admitSession(ctx, s.store, sid, date, false)
		if err != nil {
			return nil, err
		}
	}
	if q.total <= 0 {
		return nil, admissionError("nothing to pay for")
	}

	metadata := map[string]string{
		"user_id":      actor.UserID,
		"purpose":      string(q.purpose),
		"target_id":    q.targetID.String(),
		"session_date": utils.FormatDate(date),
	}
	intent, err := s.payments.Authorize(ctx, q.total, s.market.Currency, metadata)
	if err != nil {
		return nil, utils.WrapError(utils.ErrPaymentGateway, err, "could not create payment")
	}

	raw, _ := json.Marshal(metadata)
	auth := &db_models.PaymentAuthorization{
		UserID:           actor.UserID,
		Purpose:          q.purpose,
		TargetID:         q.targetID,
		AmountMinor:      q.total,
		Currency:         s.market.Currency,
		Status:           db_models.PaymentAuthPending,
		Provider:         paymentProvider,
		ProviderIntentID: intent.ID,
		Metadata:         datatypes.JSON(raw),
	}
	if err := s.store.Payments().Create(ctx, auth); err != nil {
		return nil, utils.Database(err)
	}

	return &response_models.PaymentIntentResponse{
		PaymentIntentID:  intent.ID,
		ClientSecret:     intent.ClientSecret,
		PriceMinor:       q.price,
		PlatformFeeMinor: q.fee,
		TotalAmountMinor: q.total,
		Currency:         s.market.Currency,
	}, nil
}

// confirmPayment asks the gateway whether intentID has been paid in full.
func (s *bookingService) confirmPayment(ctx context.Context, intentID string, total int64) (*IntentStatus, error) {
	status, err := s.payments.PaymentStatus(ctx, intentID)
	if err != nil {
		return nil, utils.WrapError(utils.ErrPaymentGateway, err, "could not verify payment")
	}
	if !status.Confirmed {
		return nil, admissionError("payment has not been confirmed (%s)", status.Status)
	}
	if status.AmountMinor != total || !strings.EqualFold(status.Currency, s.market.Currency) {
		return nil, admissionError("paid amount does not match the booking total")
	}
	return status, nil
}

// capture takes the held funds. It runs as the last step of the booking
// transaction so a refused booking is never charged.
func (s *bookingService) capture(ctx context.Context, intentID string, status *IntentStatus) error {
	if status.Captured {
		return nil
	}
	if err := s.payments.Capture(ctx, intentID); err != nil {
		return utils.WrapError(utils.ErrPaymentGateway, err, "could not capture payment")
	}
	return nil
}

// releaseHold returns the money behind a refused booking: the hold is
// cancelled, or refunded when it was already captured. Only the caller's own
// unused authorization for the same target is touched.
func (s *bookingService) releaseHold(ctx context.Context, actor authz.Actor, intentID string, purpose db_models.PaymentPurpose, targetID uuid.UUID, refusal error) {
	released := false
	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		auth, err := tx.Payments().FindByIntentIDForUpdate(ctx, intentID)
		if err != nil {
			return err
		}
		if auth == nil || auth.UserID != actor.UserID || auth.Purpose != purpose ||
			auth.TargetID != targetID || auth.Status != db_models.PaymentAuthPending {
			return nil
		}
		status, err := s.payments.PaymentStatus(ctx, intentID)
		if err != nil {
			return err
		}
		switch {
		case status.Captured:
			err = s.payments.Refund(ctx, intentID)
		case !status.Cancelled:
			err = s.payments.Cancel(ctx, intentID)
		}
		if err != nil {
			return err
		}

		now := s.now().Unix()
		auth.Status = db_models.PaymentAuthReleased
		auth.ReleasedAt = &now
		released = true
		return tx.Payments().Save(ctx, auth)
	})
	if err != nil {
		s.log.Error("could not release payment for refused booking",
			zap.String("payment_intent", intentID),
			zap.NamedError("refusal", refusal),
			zap.Error(err))
		return
	}
	if released {
		s.log.Info("payment released for refused booking",
			zap.String("payment_intent", intentID),
			zap.NamedError("refusal", refusal))
	}
}

// consumeAuthorization locks the recorded intent and marks it used by
// bookingID. It must belong to the caller and the same target and amount.
func consumeAuthorization(ctx context.Context, tx repositories.Store, actor authz.Actor, intentID string, q *quote, bookingID uuid.UUID, now int64) error {
	auth, err := tx.Payments().FindByIntentIDForUpdate(ctx, intentID)
	if err != nil {
		return utils.Database(err)
	}
	if auth == nil || auth.UserID != actor.UserID || auth.Purpose != q.purpose || auth.TargetID != q.targetID {
		return admissionError("payment authorization does not match this booking")
	}
	if auth.Status == db_models.PaymentAuthConsumed {
		return utils.NewError(utils.ErrConflict, "payment has already been used for a booking")
	}
	if auth.Status == db_models.PaymentAuthReleased {
		return admissionError("payment was returned after a refused booking, start a new payment")
	}
	if auth.AmountMinor != q.total {
		return admissionError("authorized amount %s does not match total %s",
			utils.FormatMinor(auth.AmountMinor, auth.Currency), utils.FormatMinor(q.total, auth.Currency))
	}

	auth.Status = db_models.PaymentAuthConsumed
	auth.ConsumedByID = &bookingID
	auth.ConsumedAt = &now
	if err := tx.Payments().Save(ctx, auth); err != nil {
		return utils.Database(err)
	}
	return nil
}

func (s *bookingService) CreateBooking(ctx context.Context, actor authz.Actor, req request_models.CreateBookingRequest) (*response_models.BookingResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	sid, err := parseID("session_id", req.SessionID)
	if err != nil {
		return nil, err
	}
	date, err := s.parseBookingDate(req.SessionDate)
	if err != nil {
		return nil, err
	}
	intentID := strings.TrimSpace(req.PaymentIntentID)
	if intentID == "" {
		return nil, fieldError("payment_intent_id", "is required")
	}

	// Admission runs before any payment lookup so an inadmissible session is
	// rejected whatever token is presented.
	pre, err := s.admitSession(ctx, s.store, sid, date, false)
	if err != nil {
		if errors.Is(err, utils.ErrAdmission) {
			s.releaseHold(ctx, actor, intentID, db_models.PurposeSessionBooking, sid, err)
		}
		return nil, err
	}
	status, err := s.confirmPayment(ctx, intentID, pre.total)
	if err != nil {
		return nil, err
	}

	var (
		booking *db_models.Booking
		q       *quote
	)
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		q, err = s.admitSession(ctx, tx, sid, date, true)
		if err != nil {
			return err
		}

		booking = &db_models.Booking{
			BaseModel:           db_models.BaseModel{ID: uuid.New()},
			UserID:              actor.UserID,
			SessionID:           q.session.ID,
			SessionDate:         date,
			Status:              db_models.BookingConfirmed,
			PaymentIntentRef:    &intentID,
			PriceMinor:          q.price,
			PlatformFeeMinor:    q.fee,
			TotalAmountMinor:    q.total,
			Currency:            s.market.Currency,
			SpecialRequirements: optionalString(req.SpecialRequirements),
		}
		if err := consumeAuthorization(ctx, tx, actor, intentID, q, booking.ID, s.now().Unix()); err != nil {
			return err
		}
		if err := tx.Bookings().Create(ctx, booking); err != nil {
			return utils.Database(err)
		}
		return s.capture(ctx, intentID, status)
	})
	if err != nil {
		s.releaseHold(ctx, actor, intentID, pre.purpose, pre.targetID, err)
		return nil, err
	}

	s.effects.notify(ctx, Message{
		To:      actor.Email,
		Subject: "Booking confirmed: " + q.title,
		Body: fmt.Sprintf("You're booked on %s at %s on %s. Total paid: %s.",
			q.title, q.business.Name, utils.FormatDate(date), utils.FormatMinor(q.total, s.market.Currency)),
		CTAText:  "View my bookings",
		CTAURL:   s.market.link("/bookings"),
		Category: EventBookingCreated,
	})
	s.effects.publish(ctx, EventBookingCreated, s.bookingEvent(booking))

	resp := toBookingResponse(booking, q.title)
	return &resp, nil
}

func (s *bookingService) bookingEvent(b *db_models.Booking) bookingEvent {
	return bookingEvent{
		BookingID:   b.ID,
		Kind:        "session",
		UserID:      b.UserID,
		TargetID:    b.SessionID,
		SessionDate: utils.FormatDate(b.SessionDate),
		Status:      string(b.Status),
		TotalMinor:  b.TotalAmountMinor,
		Currency:    b.Currency,
		At:          s.now().Unix(),
	}
}

func (s *bookingService) ListMy(ctx context.Context, actor authz.Actor) ([]response_models.BookingResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	list, err := s.store.Bookings().ListByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, utils.Database(err)
	}

	ids := make([]uuid.UUID, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.SessionID)
	}
	sessions, err := s.store.Sessions().FindByIDs(ctx, ids)
	if err != nil {
		return nil, utils.Database(err)
	}
	titles := make(map[uuid.UUID]string, len(sessions))
	for _, ss := range sessions {
		titles[ss.ID] = ss.Title
	}

	out := make([]response_models.BookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toBookingResponse(&list[i], titles[list[i].SessionID]))
	}
	return out, nil
}

func parseStatus(raw string) (db_models.BookingStatus, error) {
	st := db_models.BookingStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !st.Valid() {
		return "", fieldError("status", "must be confirmed, cancelled or completed")
	}
	return st, nil
}

// checkStatusChange applies the shared transition rules. The booking user
// may only cancel; the provider side and admins may cancel or complete.
func checkStatusChange(actor authz.Actor, current, next db_models.BookingStatus, isCustomer, isProvider bool) error {
	if !isCustomer && !isProvider && !actor.IsAdmin() {
		return utils.Forbidden("not allowed to change this booking")
	}
	if !current.CanTransitionTo(next) {
		return utils.NewError(utils.ErrInvalidTransition, "cannot change booking from %s to %s", current, next)
	}
	if next == db_models.BookingCompleted && !isProvider && !actor.IsAdmin() {
		return utils.Forbidden("only the provider can complete a booking")
	}
	return nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, actor authz.Actor, id, status string) (*response_models.BookingResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	bid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	next, err := parseStatus(status)
	if err != nil {
		return nil, err
	}

	var (
		booking *db_models.Booking
		title   string
	)
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		booking, err = tx.Bookings().FindByIDForUpdate(ctx, bid)
		if err != nil {
			return utils.Database(err)
		}
		if booking == nil {
			return utils.NotFound("booking")
		}

		isProvider := false
		session, err := tx.Sessions().FindByID(ctx, booking.SessionID)
		if err != nil {
			return utils.Database(err)
		}
		if session != nil {
			title = session.Title
			b, err := tx.Businesses().FindByID(ctx, session.BusinessID)
			if err != nil {
				return utils.Database(err)
			}
			isProvider = b != nil && b.OwnedBy(actor.UserID)
		}

		if err := checkStatusChange(actor, booking.Status, next, booking.UserID == actor.UserID, isProvider); err != nil {
			return err
		}
		booking.Status = next
		if err := tx.Bookings().Save(ctx, booking); err != nil {
			return utils.Database(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if booking.UserID != actor.UserID {
		s.effects.notify(ctx, Message{
			To:       s.userEmail(ctx, booking.UserID),
			Subject:  fmt.Sprintf("Your booking for %s is %s", title, next),
			Body:     fmt.Sprintf("Your booking on %s was marked %s.", utils.FormatDate(booking.SessionDate), next),
			CTAText:  "View my bookings",
			CTAURL:   s.market.link("/bookings"),
			Category: EventBookingStatusChanged,
		})
	}
	s.effects.publish(ctx, EventBookingStatusChanged, s.bookingEvent(booking))

	resp := toBookingResponse(booking, title)
	return &resp, nil
}

func (s *bookingService) userEmail(ctx context.Context, userID string) string {
	u, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		s.log.Warn("user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	if u == nil {
		return ""
	}
	return u.Email
}
