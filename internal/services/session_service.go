package services

import (
	"context"
	"fmt"
	"slices"
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
)

const minSessionMinutes = 15

type SessionService interface {
	ListSessionTypes(ctx context.Context) ([]response_models.SessionTypeResponse, error)
	Create(ctx context.Context, actor authz.Actor, req request_models.CreateSessionRequest) (*response_models.SessionResponse, error)
	Approve(ctx context.Context, actor authz.Actor, id string, approved bool) (*response_models.SessionResponse, error)
	Search(ctx context.Context, q request_models.SessionSearchQuery) ([]response_models.SessionResponse, error)
	ListByBusiness(ctx context.Context, actor authz.Actor, businessID string) ([]response_models.SessionResponse, error)
	ListPending(ctx context.Context, actor authz.Actor) ([]response_models.SessionResponse, error)
	Get(ctx context.Context, actor authz.Actor, id string) (*response_models.SessionResponse, error)
}

type sessionService struct {
	store   repositories.Store
	market  MarketplaceConfig
	effects sideEffects
	now     func() time.Time
}

func NewSessionService(store repositories.Store, notifier Notifier, events EventPublisher, market MarketplaceConfig, log *zap.Logger) SessionService {
	return &sessionService{
		store:   store,
		market:  market,
		effects: sideEffects{notifier: notifier, events: events, log: log},
		now:     time.Now,
	}
}

type sessionEvent struct {
	SessionID  uuid.UUID `json:"session_id"`
	BusinessID uuid.UUID `json:"business_id"`
	Title      string    `json:"title"`
	Approved   bool      `json:"approved"`
	At         int64     `json:"at"`
}

func (s *sessionService) ListSessionTypes(ctx context.Context) ([]response_models.SessionTypeResponse, error) {
	list, err := s.store.SessionTypes().List(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	out := make([]response_models.SessionTypeResponse, 0, len(list))
	for i := range list {
		out = append(out, *toSessionTypeResponse(&list[i]))
	}
	return out, nil
}

func (s *sessionService) Create(ctx context.Context, actor authz.Actor, req request_models.CreateSessionRequest) (*response_models.SessionResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	b, err := s.ownedApprovedBusiness(ctx, actor, req.BusinessID)
	if err != nil {
		return nil, err
	}

	session, err := s.buildSession(ctx, b.ID, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Sessions().Create(ctx, session); err != nil {
		return nil, utils.Database(err)
	}

	s.effects.notify(ctx, Message{
		To:       s.market.AdminEmail,
		Subject:  "New session awaiting approval: " + session.Title,
		Body:     fmt.Sprintf("%s added %q (%s).", b.Name, session.Title, utils.FormatMinor(session.PriceMinor, s.market.Currency)),
		CTAText:  "Review sessions",
		CTAURL:   s.market.link("/admin/sessions"),
		Category: EventSessionCreated,
	})
	s.effects.publish(ctx, EventSessionCreated, sessionEvent{
		SessionID: session.ID, BusinessID: b.ID, Title: session.Title, At: s.now().Unix(),
	})

	resp := toSessionResponse(session, s.market.Currency)
	resp.Business = toBusinessSummary(b)
	return &resp, nil
}

// ownedApprovedBusiness resolves the business a session is created under.
// Without an explicit id the caller's first approved business is used.
func (s *sessionService) ownedApprovedBusiness(ctx context.Context, actor authz.Actor, rawID string) (*db_models.Business, error) {
	if strings.TrimSpace(rawID) == "" {
		owned, err := s.store.Businesses().ListByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, utils.Database(err)
		}
		for i := range owned {
			if owned[i].Approved {
				return &owned[i], nil
			}
		}
		return nil, utils.Forbidden("you need an approved business to create sessions")
	}

	bid, err := parseID("business_id", rawID)
	if err != nil {
		return nil, err
	}
	b, err := s.store.Businesses().FindByID(ctx, bid)
	if err != nil {
		return nil, utils.Database(err)
	}
	if b == nil || !b.OwnedBy(actor.UserID) {
		return nil, utils.Forbidden("you do not own this business")
	}
	if !b.Approved {
		return nil, utils.Forbidden("business must be approved before adding sessions")
	}
	return b, nil
}

func (s *sessionService) buildSession(ctx context.Context, businessID uuid.UUID, req request_models.CreateSessionRequest) (*db_models.FitnessSession, error) {
	var v utils.Validator
	v.Required("title", req.Title)

	typeID, typeErr := uuid.Parse(strings.TrimSpace(req.SessionTypeID))
	if typeErr != nil {
		v.Add("session_type_id", "must be a valid id")
	} else {
		st, err := s.store.SessionTypes().FindByID(ctx, typeID)
		if err != nil {
			return nil, utils.Database(err)
		}
		v.Check(st != nil, "session_type_id", "unknown session type")
	}

	v.Check(req.PriceMinor >= 0, "price_minor", "must not be negative")
	v.Check(req.DurationMinutes >= minSessionMinutes, "duration_minutes", fmt.Sprintf("must be at least %d", minSessionMinutes))
	v.Check(req.MaxParticipants >= 1, "max_participants", "must be at least 1")

	difficulty := checkVocabulary(&v, "difficulty", req.Difficulty, db_models.Difficulties, db_models.DifficultyAllLevels)
	ages := checkVocabulary(&v, "age_groups", req.AgeGroups, db_models.AgeGroups, db_models.AgeGroupAllAges)

	gender := db_models.GenderPolicy(strings.TrimSpace(req.GenderPolicy))
	if gender == "" {
		gender = db_models.GenderMixed
	}
	v.Check(gender.Valid(), "gender_policy", "must be mixed, female_only or male_only")

	schedule := checkSchedule(&v, req.Schedule)

	if err := v.Err(); err != nil {
		return nil, err
	}
	return &db_models.FitnessSession{
		BusinessID:      businessID,
		SessionTypeID:   typeID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Difficulty:      difficulty,
		AgeGroups:       ages,
		GenderPolicy:    gender,
		PriceMinor:      req.PriceMinor,
		DurationMinutes: req.DurationMinutes,
		MaxParticipants: req.MaxParticipants,
		Schedule:        schedule,
		Approved:        false,
	}, nil
}

// checkVocabulary requires a non-empty subset of allowed. The sentinel may
// only appear on its own.
func checkVocabulary(v *utils.Validator, field string, values, allowed []string, sentinel string) []string {
	normalized := make([]string, 0, len(values))
	for _, raw := range cleanList(values) {
		normalized = append(normalized, strings.ToLower(raw))
	}
	normalized = cleanList(normalized)

	if len(normalized) == 0 {
		v.Add(field, "at least one value is required")
		return normalized
	}
	for _, val := range normalized {
		if !slices.Contains(allowed, val) {
			v.Add(field, fmt.Sprintf("unknown value %q", val))
			return normalized
		}
	}
	if len(normalized) > 1 && slices.Contains(normalized, sentinel) {
		v.Add(field, fmt.Sprintf("%q cannot be combined with other values", sentinel))
	}
	return normalized
}

func checkSchedule(v *utils.Validator, slots []request_models.ScheduleSlotRequest) []db_models.ScheduleSlot {
	if len(slots) == 0 {
		v.Add("schedule", "at least one slot is required")
		return nil
	}
	out := make([]db_models.ScheduleSlot, 0, len(slots))
	for i, slot := range slots {
		field := fmt.Sprintf("schedule[%d]", i)
		if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
			v.Add(field+".day_of_week", "must be between 0 and 6")
		}
		start, errStart := utils.ParseClock(slot.StartTime)
		end, errEnd := utils.ParseClock(slot.EndTime)
		switch {
		case errStart != nil:
			v.Add(field+".start_time", "must be HH:MM")
		case errEnd != nil:
			v.Add(field+".end_time", "must be HH:MM")
		case start >= end:
			v.Add(field, "start_time must be before end_time")
		}
		out = append(out, db_models.ScheduleSlot{
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	return out
}

// Approve toggles session visibility. Owners are not notified.
func (s *sessionService) Approve(ctx context.Context, actor authz.Actor, id string, approved bool) (*response_models.SessionResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	sid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	var session *db_models.FitnessSession
	err = s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		session, err = tx.Sessions().FindByIDForUpdate(ctx, sid)
		if err != nil {
			return utils.Database(err)
		}
		if session == nil {
			return utils.NotFound("session")
		}
		session.Approved = approved
		if err := tx.Sessions().Save(ctx, session); err != nil {
			return utils.Database(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.effects.publish(ctx, EventSessionApproved, sessionEvent{
		SessionID: session.ID, BusinessID: session.BusinessID, Title: session.Title, Approved: approved, At: s.now().Unix(),
	})
	resp := toSessionResponse(session, s.market.Currency)
	return &resp, nil
}

func (s *sessionService) Search(ctx context.Context, q request_models.SessionSearchQuery) ([]response_models.SessionResponse, error) {
	list, err := s.store.Sessions().Search(ctx, repositories.SessionFilter{
		Postcode:      q.Postcode,
		SessionType:   q.SessionType,
		AgeGroup:      strings.ToLower(strings.TrimSpace(q.AgeGroup)),
		Difficulty:    strings.ToLower(strings.TrimSpace(q.Difficulty)),
		MinPriceMinor: q.MinPrice,
		MaxPriceMinor: q.MaxPrice,
	})
	if err != nil {
		return nil, utils.Database(err)
	}
	return s.hydrate(ctx, list)
}

func (s *sessionService) ListByBusiness(ctx context.Context, actor authz.Actor, businessID string) ([]response_models.SessionResponse, error) {
	if err := authz.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	bid, err := parseID("business_id", businessID)
	if err != nil {
		return nil, err
	}
	b, err := s.store.Businesses().FindByID(ctx, bid)
	if err != nil {
		return nil, utils.Database(err)
	}
	if b == nil {
		return nil, utils.NotFound("business")
	}
	if err := authz.RequireOwnerOrAdmin(actor, b.UserID); err != nil {
		return nil, err
	}

	list, err := s.store.Sessions().ListByBusinessID(ctx, bid)
	if err != nil {
		return nil, utils.Database(err)
	}
	return s.hydrate(ctx, list)
}

func (s *sessionService) ListPending(ctx context.Context, actor authz.Actor) ([]response_models.SessionResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	list, err := s.store.Sessions().ListPending(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	return s.hydrate(ctx, list)
}

// Get shows a session publicly only while it and its business are approved.
func (s *sessionService) Get(ctx context.Context, actor authz.Actor, id string) (*response_models.SessionResponse, error) {
	sid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	session, err := s.store.Sessions().FindByID(ctx, sid)
	if err != nil {
		return nil, utils.Database(err)
	}
	if session == nil {
		return nil, utils.NotFound("session")
	}
	views, err := s.hydrate(ctx, []db_models.FitnessSession{*session})
	if err != nil {
		return nil, err
	}
	view := views[0]

	b, err := s.store.Businesses().FindByID(ctx, session.BusinessID)
	if err != nil {
		return nil, utils.Database(err)
	}
	public := session.Approved && b != nil && b.Approved
	if !public && !actor.IsAdmin() && (b == nil || !b.OwnedBy(actor.UserID)) {
		return nil, utils.NotFound("session")
	}
	return &view, nil
}

// hydrate attaches business and session type summaries by id lookup.
func (s *sessionService) hydrate(ctx context.Context, list []db_models.FitnessSession) ([]response_models.SessionResponse, error) {
	businessIDs := make([]uuid.UUID, 0, len(list))
	typeIDs := make([]uuid.UUID, 0, len(list))
	for _, item := range list {
		businessIDs = append(businessIDs, item.BusinessID)
		typeIDs = append(typeIDs, item.SessionTypeID)
	}

	businesses, err := s.store.Businesses().FindByIDs(ctx, businessIDs)
	if err != nil {
		return nil, utils.Database(err)
	}
	types, err := s.store.SessionTypes().FindByIDs(ctx, typeIDs)
	if err != nil {
		return nil, utils.Database(err)
	}
	byBusiness := make(map[uuid.UUID]*db_models.Business, len(businesses))
	for i := range businesses {
		byBusiness[businesses[i].ID] = &businesses[i]
	}
	byType := make(map[uuid.UUID]*db_models.SessionType, len(types))
	for i := range types {
		byType[types[i].ID] = &types[i]
	}

	out := make([]response_models.SessionResponse, 0, len(list))
	for i := range list {
		view := toSessionResponse(&list[i], s.market.Currency)
		if b, ok := byBusiness[list[i].BusinessID]; ok {
			view.Business = toBusinessSummary(b)
		}
		if st, ok := byType[list[i].SessionTypeID]; ok {
			view.SessionType = toSessionTypeResponse(st)
		}
		out = append(out, view)
	}
	return out, nil
}
