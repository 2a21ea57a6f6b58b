package services

import (
	"context"
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
)

const maxTrainerMinutes = 8 * 60

// admitTrainer prices a trainer slot from the hourly rate. The trainer row
// is locked when lock is set so two bookings cannot take one slot.
func (s *bookingService) admitTrainer(ctx context.Context, tx repositories.Store, trainerID uuid.UUID, date time.Time, startTime string, minutes int, lock bool) (*quote, error) {
	var v utils.Validator
	startTime = strings.TrimSpace(startTime)
	startMinute, clockErr := utils.ParseClock(startTime)
	v.Check(clockErr == nil, "start_time", "must be HH:MM")
	v.Check(minutes >= minSessionMinutes && minutes <= maxTrainerMinutes, "duration_minutes",
		fmt.Sprintf("must be between %d and %d", minSessionMinutes, maxTrainerMinutes))
	if err := v.Err(); err != nil {
		return nil, err
	}

	var (
		t   *db_models.PersonalTrainer
		err error
	)
	if lock {
		t, err = tx.Trainers().FindByIDForUpdate(ctx, trainerID)
	} else {
		t, err = tx.Trainers().FindByID(ctx, trainerID)
	}
	if err != nil {
		return nil, utils.Database(err)
	}
	if t == nil {
		return nil, admissionError("trainer does not exist")
	}
	if !t.Approved {
		return nil, admissionError("trainer is not approved")
	}
	if !t.BookingEnabled {
		return nil, admissionError("trainer is not taking bookings")
	}

	taken, err := tx.TrainerBookings().CountOverlapping(ctx, t.ID, date, startMinute, startMinute+minutes)
	if err != nil {
		return nil, utils.Database(err)
	}
	if taken > 0 {
		return nil, admissionError("trainer already has a booking overlapping %s for %d minutes on %s",
			startTime, minutes, utils.FormatDate(date))
	}

	price := utils.ProRata(t.HourlyRateMinor, minutes)
	fee, total := s.market.Pricing(price)
	return &quote{
		purpose:  db_models.PurposeTrainerBooking,
		targetID: t.ID,
		title:    t.Name,
		date:     date,
		price:    price,
		fee:      fee,
		total:    total,
		trainer:  t,
	}, nil
}

func (s *bookingService) CreateTrainerBooking(ctx context.Context, actor authz.Actor, req request_models.CreateTrainerBookingRequest) (*response_models.TrainerBookingResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	tid, err := parseID("trainer_id", req.TrainerID)
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

	pre, err := s.admitTrainer(ctx, s.store, tid, date, req.StartTime, req.DurationMinutes, false)
	if err != nil {
		if errors.Is(err, utils.ErrAdmission) {
			s.releaseHold(ctx, actor, intentID, db_models.PurposeTrainerBooking, tid, err)
		}
		return nil, err
	}
	status, err := s.confirmPayment(ctx, intentID, pre.total)
	if err != nil {
		return nil, err
	}

	var (
		booking *db_models.TrainerBooking
		q       *quote
	)
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		q, err = s.admitTrainer(ctx, tx, tid, date, req.StartTime, req.DurationMinutes, true)
		if err != nil {
			return err
		}
		booking = &db_models.TrainerBooking{
			BaseModel:        db_models.BaseModel{ID: uuid.New()},
			UserID:           actor.UserID,
			TrainerID:        q.trainer.ID,
			SessionDate:      date,
			StartTime:        strings.TrimSpace(req.StartTime),
			DurationMinutes:  req.DurationMinutes,
			Status:           db_models.BookingConfirmed,
			PaymentIntentRef: &intentID,
			PriceMinor:       q.price,
			PlatformFeeMinor: q.fee,
			TotalAmountMinor: q.total,
			Currency:         s.market.Currency,
			Notes:            optionalString(req.Notes),
		}
		if err := consumeAuthorization(ctx, tx, actor, intentID, q, booking.ID, s.now().Unix()); err != nil {
			return err
		}
		if err := tx.TrainerBookings().Create(ctx, booking); err != nil {
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
		Subject: "Trainer session confirmed with " + q.trainer.Name,
		Body: fmt.Sprintf("You're booked with %s on %s at %s for %d minutes. Total paid: %s.",
			q.trainer.Name, utils.FormatDate(date), booking.StartTime, booking.DurationMinutes,
			utils.FormatMinor(q.total, s.market.Currency)),
		CTAText:  "View my bookings",
		CTAURL:   s.market.link("/bookings"),
		Category: EventTrainerBookingCreated,
	})
	s.effects.notify(ctx, Message{
		To:       q.trainer.Email,
		Subject:  "New booking on " + utils.FormatDate(date),
		Body:     fmt.Sprintf("%s booked you at %s for %d minutes.", actor.Name, booking.StartTime, booking.DurationMinutes),
		Category: EventTrainerBookingCreated,
	})
	s.effects.publish(ctx, EventTrainerBookingCreated, s.trainerBookingEvent(booking))

	resp := toTrainerBookingResponse(booking, q.trainer.Name)
	return &resp, nil
}

func (s *bookingService) trainerBookingEvent(b *db_models.TrainerBooking) bookingEvent {
	return bookingEvent{
		BookingID:   b.ID,
		Kind:        "trainer",
		UserID:      b.UserID,
		TargetID:    b.TrainerID,
		SessionDate: utils.FormatDate(b.SessionDate),
		Status:      string(b.Status),
		TotalMinor:  b.TotalAmountMinor,
		Currency:    b.Currency,
		At:          s.now().Unix(),
	}
}

func (s *bookingService) ListMyTrainerBookings(ctx context.Context, actor authz.Actor) ([]response_models.TrainerBookingResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	list, err := s.store.TrainerBookings().ListByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, utils.Database(err)
	}

	ids := make([]uuid.UUID, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.TrainerID)
	}
	trainers, err := s.store.Trainers().FindByIDs(ctx, ids)
	if err != nil {
		return nil, utils.Database(err)
	}
	names := make(map[uuid.UUID]string, len(trainers))
	for _, t := range trainers {
		names[t.ID] = t.Name
	}

	out := make([]response_models.TrainerBookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toTrainerBookingResponse(&list[i], names[list[i].TrainerID]))
	}
	return out, nil
}

func (s *bookingService) UpdateTrainerBookingStatus(ctx context.Context, actor authz.Actor, id, status string) (*response_models.TrainerBookingResponse, error) {
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
		booking *db_models.TrainerBooking
		name    string
	)
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		booking, err = tx.TrainerBookings().FindByIDForUpdate(ctx, bid)
		if err != nil {
			return utils.Database(err)
		}
		if booking == nil {
			return utils.NotFound("booking")
		}
		t, err := tx.Trainers().FindByID(ctx, booking.TrainerID)
		if err != nil {
			return utils.Database(err)
		}
		isTrainer := t != nil && t.UserID == actor.UserID
		if t != nil {
			name = t.Name
		}

		if err := checkStatusChange(actor, booking.Status, next, booking.UserID == actor.UserID, isTrainer); err != nil {
			return err
		}
		booking.Status = next
		if err := tx.TrainerBookings().Save(ctx, booking); err != nil {
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
			Subject:  fmt.Sprintf("Your session with %s is %s", name, next),
			Body:     fmt.Sprintf("Your trainer booking on %s at %s was marked %s.", utils.FormatDate(booking.SessionDate), booking.StartTime, next),
			CTAText:  "View my bookings",
			CTAURL:   s.market.link("/bookings"),
			Category: EventTrainerBookingStatus,
		})
	}
	s.effects.publish(ctx, EventTrainerBookingStatus, s.trainerBookingEvent(booking))

	resp := toTrainerBookingResponse(booking, name)
	return &resp, nil
}
