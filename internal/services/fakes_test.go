package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fitbook/internal/authz"
	"fitbook/internal/models/db_models"
	"fitbook/internal/repositories"
	"fitbook/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memData is the state behind fakeStore. Rows are stored by value so callers
// only see their changes after Save, as with a real database.
type memData struct {
	seq          int64
	users        map[string]db_models.User
	businesses   map[uuid.UUID]db_models.Business
	claims       map[uuid.UUID]db_models.BusinessClaim
	sessionTypes map[uuid.UUID]db_models.SessionType
	sessions     map[uuid.UUID]db_models.FitnessSession
	bookings     map[uuid.UUID]db_models.Booking
	trainers     map[uuid.UUID]db_models.PersonalTrainer
	tBookings    map[uuid.UUID]db_models.TrainerBooking
	payments     map[uuid.UUID]db_models.PaymentAuthorization
}

func newMemData() *memData {
	return &memData{
		users:        map[string]db_models.User{},
		businesses:   map[uuid.UUID]db_models.Business{},
		claims:       map[uuid.UUID]db_models.BusinessClaim{},
		sessionTypes: map[uuid.UUID]db_models.SessionType{},
		sessions:     map[uuid.UUID]db_models.FitnessSession{},
		bookings:     map[uuid.UUID]db_models.Booking{},
		trainers:     map[uuid.UUID]db_models.PersonalTrainer{},
		tBookings:    map[uuid.UUID]db_models.TrainerBooking{},
		payments:     map[uuid.UUID]db_models.PaymentAuthorization{},
	}
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		seq:          d.seq,
		users:        cloneMap(d.users),
		businesses:   cloneMap(d.businesses),
		claims:       cloneMap(d.claims),
		sessionTypes: cloneMap(d.sessionTypes),
		sessions:     cloneMap(d.sessions),
		bookings:     cloneMap(d.bookings),
		trainers:     cloneMap(d.trainers),
		tBookings:    cloneMap(d.tBookings),
		payments:     cloneMap(d.payments),
	}
}

func (d *memData) stamp(b *db_models.BaseModel) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	d.seq++
	if b.CreatedAt == 0 {
		b.CreatedAt = d.seq
	}
	b.UpdatedAt = d.seq
}

// fakeStore implements repositories.Store in memory. Transactions run on a
// copy that replaces the live data only when fn succeeds.
type fakeStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{mu: &sync.Mutex{}, data: newMemData()}
}

func (s *fakeStore) Users() repositories.UserRepository           { return fakeUsers{s} }
func (s *fakeStore) Businesses() repositories.BusinessRepository  { return fakeBusinesses{s} }
func (s *fakeStore) Claims() repositories.ClaimRepository         { return fakeClaims{s} }
func (s *fakeStore) SessionTypes() repositories.SessionTypeRepository {
	return fakeSessionTypes{s}
}
func (s *fakeStore) Sessions() repositories.SessionRepository { return fakeSessions{s} }
func (s *fakeStore) Bookings() repositories.BookingRepository { return fakeBookings{s} }
func (s *fakeStore) Trainers() repositories.TrainerRepository { return fakeTrainers{s} }
func (s *fakeStore) TrainerBookings() repositories.TrainerBookingRepository {
	return fakeTrainerBookings{s}
}
func (s *fakeStore) Payments() repositories.PaymentAuthorizationRepository {
	return fakePayments{s}
}
func (s *fakeStore) Dashboard() repositories.DashboardRepository { return fakeDashboard{s} }
func (s *fakeStore) Ping(context.Context) error                  { return nil }

func (s *fakeStore) WithinTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &fakeStore{mu: &sync.Mutex{}, data: s.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

// lock serialises non-transactional access; inside a transaction the outer
// lock is already held.
func (s *fakeStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// ---- users ----

type fakeUsers struct{ s *fakeStore }

func (r fakeUsers) Upsert(_ context.Context, u *db_models.User) error {
	defer r.s.lock()()
	if cur, ok := r.s.data.users[u.ID]; ok {
		cur.Email, cur.Name = u.Email, u.Name
		r.s.data.users[u.ID] = cur
		return nil
	}
	for _, other := range r.s.data.users {
		if other.Email == u.Email {
			return fmt.Errorf("duplicate email %s", u.Email)
		}
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r fakeUsers) FindByID(_ context.Context, id string) (*db_models.User, error) {
	defer r.s.lock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r fakeUsers) FindByEmail(_ context.Context, email string) (*db_models.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r fakeUsers) UpdateRole(_ context.Context, id string, role authz.Role) error {
	defer r.s.lock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return fmt.Errorf("no user %s", id)
	}
	u.Role = role
	r.s.data.users[id] = u
	return nil
}

func (r fakeUsers) SetPaymentCustomerRef(_ context.Context, id, ref string) error {
	defer r.s.lock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return fmt.Errorf("no user %s", id)
	}
	u.PaymentCustomerRef = &ref
	r.s.data.users[id] = u
	return nil
}

// ---- businesses ----

type fakeBusinesses struct{ s *fakeStore }

func (r fakeBusinesses) Create(_ context.Context, b *db_models.Business) error {
	defer r.s.lock()()
	r.s.data.stamp(&b.BaseModel)
	r.s.data.businesses[b.ID] = *b
	return nil
}

func (r fakeBusinesses) Save(_ context.Context, b *db_models.Business) error {
	defer r.s.lock()()
	r.s.data.stamp(&b.BaseModel)
	r.s.data.businesses[b.ID] = *b
	return nil
}

func (r fakeBusinesses) FindByID(_ context.Context, id uuid.UUID) (*db_models.Business, error) {
	defer r.s.lock()()
	b, ok := r.s.data.businesses[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r fakeBusinesses) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.Business, error) {
	return r.FindByID(ctx, id)
}

func (r fakeBusinesses) FindByIDs(_ context.Context, ids []uuid.UUID) ([]db_models.Business, error) {
	defer r.s.lock()()
	var out []db_models.Business
	for _, id := range ids {
		if b, ok := r.s.data.businesses[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r fakeBusinesses) FindBySubscriptionRef(_ context.Context, ref string) (*db_models.Business, error) {
	defer r.s.lock()()
	for _, b := range r.s.data.businesses {
		if b.ExternalSubscriptionRef != nil && *b.ExternalSubscriptionRef == ref {
			return &b, nil
		}
	}
	return nil, nil
}

func (r fakeBusinesses) filter(keep func(b db_models.Business) bool) []db_models.Business {
	defer r.s.lock()()
	var out []db_models.Business
	for _, b := range r.s.data.businesses {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}

func (r fakeBusinesses) ListByUserID(_ context.Context, userID string) ([]db_models.Business, error) {
	return r.filter(func(b db_models.Business) bool { return b.UserID != nil && *b.UserID == userID }), nil
}

func (r fakeBusinesses) ListUnclaimed(context.Context) ([]db_models.Business, error) {
	return r.filter(func(b db_models.Business) bool { return b.Claimable() }), nil
}

func (r fakeBusinesses) ListPending(context.Context) ([]db_models.Business, error) {
	return r.filter(func(b db_models.Business) bool { return !b.Approved }), nil
}

func (r fakeBusinesses) FindManual(_ context.Context, name, postcode string) (*db_models.Business, error) {
	list := r.filter(func(b db_models.Business) bool {
		return b.ManuallyAdded && strings.EqualFold(b.Name, name) && b.Postcode == postcode
	})
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// ---- claims ----

type fakeClaims struct{ s *fakeStore }

func (r fakeClaims) Create(_ context.Context, c *db_models.BusinessClaim) error {
	defer r.s.lock()()
	r.s.data.stamp(&c.BaseModel)
	r.s.data.claims[c.ID] = *c
	return nil
}

func (r fakeClaims) Save(_ context.Context, c *db_models.BusinessClaim) error {
	defer r.s.lock()()
	r.s.data.stamp(&c.BaseModel)
	r.s.data.claims[c.ID] = *c
	return nil
}

func (r fakeClaims) FindByID(_ context.Context, id uuid.UUID) (*db_models.BusinessClaim, error) {
	defer r.s.lock()()
	c, ok := r.s.data.claims[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r fakeClaims) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.BusinessClaim, error) {
	return r.FindByID(ctx, id)
}

func (r fakeClaims) HasPending(_ context.Context, businessID uuid.UUID, userID string) (bool, error) {
	defer r.s.lock()()
	for _, c := range r.s.data.claims {
		if c.BusinessID == businessID && c.UserID == userID && c.Status == db_models.ClaimPending {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeClaims) ListPending(context.Context) ([]db_models.BusinessClaim, error) {
	defer r.s.lock()()
	var out []db_models.BusinessClaim
	for _, c := range r.s.data.claims {
		if c.Status == db_models.ClaimPending {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// ---- session types ----

type fakeSessionTypes struct{ s *fakeStore }

func (r fakeSessionTypes) List(context.Context) ([]db_models.SessionType, error) {
	defer r.s.lock()()
	var out []db_models.SessionType
	for _, st := range r.s.data.sessionTypes {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeSessionTypes) FindByID(_ context.Context, id uuid.UUID) (*db_models.SessionType, error) {
	defer r.s.lock()()
	st, ok := r.s.data.sessionTypes[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (r fakeSessionTypes) FindByIDs(_ context.Context, ids []uuid.UUID) ([]db_models.SessionType, error) {
	defer r.s.lock()()
	var out []db_models.SessionType
	for _, id := range ids {
		if st, ok := r.s.data.sessionTypes[id]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r fakeSessionTypes) FirstOrCreate(_ context.Context, st *db_models.SessionType) error {
	defer r.s.lock()()
	for _, cur := range r.s.data.sessionTypes {
		if cur.Name == st.Name {
			*st = cur
			return nil
		}
	}
	r.s.data.stamp(&st.BaseModel)
	r.s.data.sessionTypes[st.ID] = *st
	return nil
}

// ---- sessions ----

type fakeSessions struct{ s *fakeStore }

func (r fakeSessions) Create(_ context.Context, fs *db_models.FitnessSession) error {
	defer r.s.lock()()
	r.s.data.stamp(&fs.BaseModel)
	r.s.data.sessions[fs.ID] = *fs
	return nil
}

func (r fakeSessions) Save(_ context.Context, fs *db_models.FitnessSession) error {
	defer r.s.lock()()
	r.s.data.stamp(&fs.BaseModel)
	r.s.data.sessions[fs.ID] = *fs
	return nil
}

func (r fakeSessions) FindByID(_ context.Context, id uuid.UUID) (*db_models.FitnessSession, error) {
	defer r.s.lock()()
	fs, ok := r.s.data.sessions[id]
	if !ok {
		return nil, nil
	}
	return &fs, nil
}

func (r fakeSessions) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.FitnessSession, error) {
	return r.FindByID(ctx, id)
}

func (r fakeSessions) FindByIDs(_ context.Context, ids []uuid.UUID) ([]db_models.FitnessSession, error) {
	defer r.s.lock()()
	var out []db_models.FitnessSession
	for _, id := range ids {
		if fs, ok := r.s.data.sessions[id]; ok {
			out = append(out, fs)
		}
	}
	return out, nil
}

func (r fakeSessions) filter(keep func(fs db_models.FitnessSession) bool) []db_models.FitnessSession {
	var out []db_models.FitnessSession
	for _, fs := range r.s.data.sessions {
		if keep(fs) {
			out = append(out, fs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}

func (r fakeSessions) ListByBusinessID(_ context.Context, businessID uuid.UUID) ([]db_models.FitnessSession, error) {
	defer r.s.lock()()
	return r.filter(func(fs db_models.FitnessSession) bool { return fs.BusinessID == businessID }), nil
}

func (r fakeSessions) ListPending(context.Context) ([]db_models.FitnessSession, error) {
	defer r.s.lock()()
	return r.filter(func(fs db_models.FitnessSession) bool { return !fs.Approved }), nil
}

func containsFold(list []string, v string) bool {
	for _, x := range list {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}

func (r fakeSessions) Search(_ context.Context, f repositories.SessionFilter) ([]db_models.FitnessSession, error) {
	defer r.s.lock()()
	return r.filter(func(fs db_models.FitnessSession) bool {
		b, ok := r.s.data.businesses[fs.BusinessID]
		if !ok || !fs.Approved || !b.Approved {
			return false
		}
		if f.Postcode != "" && !strings.Contains(strings.ToLower(b.Postcode), strings.ToLower(f.Postcode)) {
			return false
		}
		if f.SessionType != "" {
			st := r.s.data.sessionTypes[fs.SessionTypeID]
			if !strings.Contains(strings.ToLower(st.Name), strings.ToLower(f.SessionType)) {
				return false
			}
		}
		if f.AgeGroup != "" && !containsFold(fs.AgeGroups, f.AgeGroup) {
			return false
		}
		if f.Difficulty != "" && !containsFold(fs.Difficulty, f.Difficulty) {
			return false
		}
		if f.MinPriceMinor != nil && fs.PriceMinor < *f.MinPriceMinor {
			return false
		}
		if f.MaxPriceMinor != nil && fs.PriceMinor > *f.MaxPriceMinor {
			return false
		}
		return true
	}), nil
}

// ---- bookings ----

type fakeBookings struct{ s *fakeStore }

func (r fakeBookings) Create(_ context.Context, b *db_models.Booking) error {
	defer r.s.lock()()
	r.s.data.stamp(&b.BaseModel)
	r.s.data.bookings[b.ID] = *b
	return nil
}

func (r fakeBookings) Save(_ context.Context, b *db_models.Booking) error {
	defer r.s.lock()()
	r.s.data.stamp(&b.BaseModel)
	r.s.data.bookings[b.ID] = *b
	return nil
}

func (r fakeBookings) FindByID(_ context.Context, id uuid.UUID) (*db_models.Booking, error) {
	defer r.s.lock()()
	b, ok := r.s.data.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r fakeBookings) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r fakeBookings) ListByUserID(_ context.Context, userID string) ([]db_models.Booking, error) {
	defer r.s.lock()()
	var out []db_models.Booking
	for _, b := range r.s.data.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (r fakeBookings) CountActiveForSessionDate(_ context.Context, sessionID uuid.UUID, date time.Time) (int64, error) {
	defer r.s.lock()()
	var n int64
	for _, b := range r.s.data.bookings {
		if b.SessionID == sessionID && b.SessionDate.Equal(date) && b.Status == db_models.BookingConfirmed {
			n++
		}
	}
	return n, nil
}

// ---- trainers ----

type fakeTrainers struct{ s *fakeStore }

func (r fakeTrainers) Create(_ context.Context, t *db_models.PersonalTrainer) error {
	defer r.s.lock()()
	for _, cur := range r.s.data.trainers {
		if cur.UserID == t.UserID {
			return repositories.ErrDuplicate
		}
	}
	r.s.data.stamp(&t.BaseModel)
	r.s.data.trainers[t.ID] = *t
	return nil
}

func (r fakeTrainers) Save(_ context.Context, t *db_models.PersonalTrainer) error {
	defer r.s.lock()()
	r.s.data.stamp(&t.BaseModel)
	r.s.data.trainers[t.ID] = *t
	return nil
}

func (r fakeTrainers) FindByID(_ context.Context, id uuid.UUID) (*db_models.PersonalTrainer, error) {
	defer r.s.lock()()
	t, ok := r.s.data.trainers[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r fakeTrainers) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.PersonalTrainer, error) {
	return r.FindByID(ctx, id)
}

func (r fakeTrainers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]db_models.PersonalTrainer, error) {
	defer r.s.lock()()
	var out []db_models.PersonalTrainer
	for _, id := range ids {
		if t, ok := r.s.data.trainers[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r fakeTrainers) filter(keep func(t db_models.PersonalTrainer) bool) []db_models.PersonalTrainer {
	defer r.s.lock()()
	var out []db_models.PersonalTrainer
	for _, t := range r.s.data.trainers {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}

func (r fakeTrainers) ListByUserID(_ context.Context, userID string) ([]db_models.PersonalTrainer, error) {
	return r.filter(func(t db_models.PersonalTrainer) bool { return t.UserID == userID }), nil
}

func (r fakeTrainers) ListPending(context.Context) ([]db_models.PersonalTrainer, error) {
	return r.filter(func(t db_models.PersonalTrainer) bool { return !t.Approved }), nil
}

func (r fakeTrainers) Search(_ context.Context, f repositories.TrainerFilter) ([]db_models.PersonalTrainer, error) {
	return r.filter(func(t db_models.PersonalTrainer) bool {
		if !t.Approved {
			return false
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Bio), q) {
				return false
			}
		}
		if f.Specialty != "" && !containsFold(t.Specialties, f.Specialty) {
			return false
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(t.Location), strings.ToLower(f.Location)) {
			return false
		}
		if f.MaxRateMinor != nil && t.HourlyRateMinor > *f.MaxRateMinor {
			return false
		}
		return true
	}), nil
}

// ---- trainer bookings ----

type fakeTrainerBookings struct{ s *fakeStore }

func (r fakeTrainerBookings) Create(_ context.Context, b *db_models.TrainerBooking) error {
	defer r.s.lock()()
	r.s.data.stamp(&b.BaseModel)
	r.s.data.tBookings[b.ID] = *b
	return nil
}

func (r fakeTrainerBookings) Save(_ context.Context, b *db_models.TrainerBooking) error {
	defer r.s.lock()()
	r.s.data.stamp(&b.BaseModel)
	r.s.data.tBookings[b.ID] = *b
	return nil
}

func (r fakeTrainerBookings) FindByID(_ context.Context, id uuid.UUID) (*db_models.TrainerBooking, error) {
	defer r.s.lock()()
	b, ok := r.s.data.tBookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r fakeTrainerBookings) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*db_models.TrainerBooking, error) {
	return r.FindByID(ctx, id)
}

func (r fakeTrainerBookings) ListByUserID(_ context.Context, userID string) ([]db_models.TrainerBooking, error) {
	defer r.s.lock()()
	var out []db_models.TrainerBooking
	for _, b := range r.s.data.tBookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r fakeTrainerBookings) CountOverlapping(_ context.Context, trainerID uuid.UUID, date time.Time, startMinute, endMinute int) (int64, error) {
	defer r.s.lock()()
	var n int64
	for _, b := range r.s.data.tBookings {
		if b.TrainerID != trainerID || !b.SessionDate.Equal(date) || b.Status != db_models.BookingConfirmed {
			continue
		}
		start, err := utils.ParseClock(b.StartTime)
		if err != nil {
			return 0, err
		}
		if start < endMinute && start+b.DurationMinutes > startMinute {
			n++
		}
	}
	return n, nil
}

// ---- payment authorizations ----

type fakePayments struct{ s *fakeStore }

func (r fakePayments) Create(_ context.Context, a *db_models.PaymentAuthorization) error {
	defer r.s.lock()()
	for _, cur := range r.s.data.payments {
		if cur.ProviderIntentID == a.ProviderIntentID {
			return fmt.Errorf("duplicate intent %s", a.ProviderIntentID)
		}
	}
	r.s.data.stamp(&a.BaseModel)
	r.s.data.payments[a.ID] = *a
	return nil
}

func (r fakePayments) Save(_ context.Context, a *db_models.PaymentAuthorization) error {
	defer r.s.lock()()
	r.s.data.stamp(&a.BaseModel)
	r.s.data.payments[a.ID] = *a
	return nil
}

func (r fakePayments) FindByIntentIDForUpdate(_ context.Context, intentID string) (*db_models.PaymentAuthorization, error) {
	defer r.s.lock()()
	for _, a := range r.s.data.payments {
		if a.ProviderIntentID == intentID {
			return &a, nil
		}
	}
	return nil, nil
}

// ---- dashboard ----

type fakeDashboard struct{ s *fakeStore }

func (r fakeDashboard) CountUsers(context.Context) (int64, error) {
	defer r.s.lock()()
	return int64(len(r.s.data.users)), nil
}

func (r fakeDashboard) CountBusinesses(context.Context) (repositories.BusinessCounts, error) {
	defer r.s.lock()()
	var c repositories.BusinessCounts
	for _, b := range r.s.data.businesses {
		c.Total++
		if b.Approved {
			c.Approved++
		} else {
			c.Pending++
		}
		if b.BookingEnabled() {
			c.BookingEnabled++
		}
	}
	return c, nil
}

func (r fakeDashboard) CountSessions(context.Context) (int64, int64, error) {
	defer r.s.lock()()
	var total, pending int64
	for _, fs := range r.s.data.sessions {
		total++
		if !fs.Approved {
			pending++
		}
	}
	return total, pending, nil
}

func (r fakeDashboard) CountBookings(context.Context) (int64, int64, error) {
	defer r.s.lock()()
	var total, confirmed int64
	for _, b := range r.s.data.bookings {
		total++
		if b.Status == db_models.BookingConfirmed {
			confirmed++
		}
	}
	return total, confirmed, nil
}

func (r fakeDashboard) CountTrainers(context.Context) (int64, int64, error) {
	defer r.s.lock()()
	var total, pending int64
	for _, t := range r.s.data.trainers {
		total++
		if !t.Approved {
			pending++
		}
	}
	return total, pending, nil
}

func (r fakeDashboard) CountPendingClaims(context.Context) (int64, error) {
	defer r.s.lock()()
	var n int64
	for _, c := range r.s.data.claims {
		if c.Status == db_models.ClaimPending {
			n++
		}
	}
	return n, nil
}

func (r fakeDashboard) ConfirmedRevenue(context.Context) (int64, error) {
	defer r.s.lock()()
	var sum int64
	for _, b := range r.s.data.bookings {
		if b.Status != db_models.BookingCancelled {
			sum += b.TotalAmountMinor
		}
	}
	for _, b := range r.s.data.tBookings {
		if b.Status != db_models.BookingCancelled {
			sum += b.TotalAmountMinor
		}
	}
	return sum, nil
}

func (r fakeDashboard) RevenueSeries(context.Context, time.Time, time.Time, string, string) ([]repositories.BucketSum, error) {
	return nil, nil
}

// ---- gateways ----

type fakeGateway struct {
	mu      sync.Mutex
	seq     int
	intents map[string]*IntentStatus

	authorizeErr error
	statusErr    error
	captureErr   error
	subErr       error
	customers    int
	subs         []string

	captured  []string
	cancelled []string
	refunded  []string

	webhookEvent *SubscriptionEvent
	webhookErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: map[string]*IntentStatus{}}
}

func (g *fakeGateway) Authorize(_ context.Context, amount int64, currency string, _ map[string]string) (*PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authorizeErr != nil {
		return nil, g.authorizeErr
	}
	g.seq++
	id := fmt.Sprintf("pi_%d", g.seq)
	g.intents[id] = &IntentStatus{Status: "requires_payment_method", AmountMinor: amount, Currency: currency}
	return &PaymentIntent{ID: id, ClientSecret: id + "_secret", AmountMinor: amount, Currency: currency}, nil
}

// pay simulates the customer confirming the intent in the browser. The
// funds stay on hold until Capture.
func (g *fakeGateway) pay(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if in, ok := g.intents[id]; ok {
		in.Confirmed = true
		in.Status = "requires_capture"
	}
}

func (g *fakeGateway) Capture(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.captureErr != nil {
		return g.captureErr
	}
	in, ok := g.intents[id]
	if !ok || in.Status != "requires_capture" {
		return fmt.Errorf("intent %s cannot be captured", id)
	}
	in.Captured = true
	in.Status = "succeeded"
	g.captured = append(g.captured, id)
	return nil
}

func (g *fakeGateway) Cancel(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	in, ok := g.intents[id]
	if !ok || in.Captured {
		return fmt.Errorf("intent %s cannot be cancelled", id)
	}
	in.Confirmed = false
	in.Cancelled = true
	in.Status = "canceled"
	g.cancelled = append(g.cancelled, id)
	return nil
}

func (g *fakeGateway) Refund(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if in, ok := g.intents[id]; !ok || !in.Captured {
		return fmt.Errorf("intent %s has nothing to refund", id)
	}
	g.refunded = append(g.refunded, id)
	return nil
}

func (g *fakeGateway) PaymentStatus(_ context.Context, id string) (*IntentStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	in, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment intent %s", id)
	}
	cp := *in
	return &cp, nil
}

func (g *fakeGateway) CreateCustomer(context.Context, string, string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customers++
	return fmt.Sprintf("cus_%d", g.customers), nil
}

func (g *fakeGateway) CreateSubscription(_ context.Context, customerRef, priceRef string) (*GatewaySubscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.subErr != nil {
		return nil, g.subErr
	}
	id := fmt.Sprintf("sub_%d", len(g.subs)+1)
	g.subs = append(g.subs, customerRef+":"+priceRef)
	return &GatewaySubscription{
		ID:           id,
		Status:       "incomplete",
		PeriodEnd:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		ClientSecret: id + "_secret",
	}, nil
}

func (g *fakeGateway) ParseWebhook([]byte, string) (*SubscriptionEvent, error) {
	return g.webhookEvent, g.webhookErr
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *fakeNotifier) to(addr string) []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Message
	for _, m := range n.sent {
		if m.To == addr {
			out = append(out, m)
		}
	}
	return out
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

// ---- fixture ----

const adminEmail = "admin@fitbook.test"

type env struct {
	store    *fakeStore
	gateway  *fakeGateway
	notifier *fakeNotifier
	events   *fakePublisher
	market   MarketplaceConfig

	businesses BusinessService
	sessions   SessionService
	bookings   BookingService
	trainers   TrainerService
	dashboard  DashboardService
}

func newEnv() *env {
	e := &env{
		store:    newFakeStore(),
		gateway:  newFakeGateway(),
		notifier: &fakeNotifier{},
		events:   &fakePublisher{},
		market: MarketplaceConfig{
			AdminEmail:         adminEmail,
			Currency:           "gbp",
			PlatformFeePercent: 10,
			AppBaseURL:         "https://fitbook.test",
			PlanPrices: map[db_models.SubscriptionTier]string{
				db_models.TierBasic:   "price_basic",
				db_models.TierPremium: "price_premium",
			},
		},
	}
	log := zap.NewNop()
	e.businesses = NewBusinessService(e.store, e.gateway, e.notifier, e.events, e.market, log)
	e.sessions = NewSessionService(e.store, e.notifier, e.events, e.market, log)
	e.bookings = NewBookingService(e.store, e.gateway, e.notifier, e.events, e.market, log)
	e.trainers = NewTrainerService(e.store, e.notifier, e.events, e.market, log)
	e.dashboard = NewDashboardService(e.store, e.market)
	return e
}

// user inserts a user with role and returns the matching actor.
func (e *env) user(id string, role authz.Role) authz.Actor {
	email := id + "@fitbook.test"
	e.store.data.users[id] = db_models.User{ID: id, Email: email, Name: strings.ToUpper(id[:1]) + id[1:], Role: role}
	return authz.Actor{UserID: id, Email: email, Name: id, Role: role}
}

// actor re-reads the stored role, as the middleware does per request.
func (e *env) actor(id string) authz.Actor {
	u := e.store.data.users[id]
	return authz.Actor{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (e *env) sessionType(name string) db_models.SessionType {
	st := db_models.SessionType{Name: name}
	e.store.data.stamp(&st.BaseModel)
	e.store.data.sessionTypes[st.ID] = st
	return st
}

// bookableBusiness stores an approved business on an active paid tier.
func (e *env) bookableBusiness(owner string) db_models.Business {
	b := db_models.Business{
		UserID:             &owner,
		Name:               "Iron Temple",
		Address:            "1 High St",
		Postcode:           "SW1A 1AA",
		Claimed:            true,
		Approved:           true,
		SubscriptionTier:   db_models.TierBasic,
		SubscriptionActive: true,
	}
	e.store.data.stamp(&b.BaseModel)
	e.store.data.businesses[b.ID] = b
	return b
}

// mondaySession stores an approved session that runs on Mondays.
func (e *env) mondaySession(b db_models.Business, st db_models.SessionType, price int64, capacity int) db_models.FitnessSession {
	fs := db_models.FitnessSession{
		BusinessID:      b.ID,
		SessionTypeID:   st.ID,
		Title:           "Morning Flow",
		Difficulty:      []string{db_models.DifficultyBeginner},
		AgeGroups:       []string{db_models.AgeGroupAdults},
		GenderPolicy:    db_models.GenderMixed,
		PriceMinor:      price,
		DurationMinutes: 60,
		MaxParticipants: capacity,
		Schedule:        []db_models.ScheduleSlot{{DayOfWeek: 1, StartTime: "07:00", EndTime: "08:00"}},
		Approved:        true,
	}
	e.store.data.stamp(&fs.BaseModel)
	e.store.data.sessions[fs.ID] = fs
	return fs
}

func (e *env) approvedTrainer(owner string, rate int64) db_models.PersonalTrainer {
	t := db_models.PersonalTrainer{
		UserID:          owner,
		Name:            "Sam Coach",
		Bio:             "Strength and mobility",
		Location:        "Camden",
		Email:           owner + "@fitbook.test",
		Phone:           "0700000000",
		Specialties:     []string{"strength"},
		HourlyRateMinor: rate,
		Approved:        true,
		BookingEnabled:  true,
	}
	e.store.data.stamp(&t.BaseModel)
	e.store.data.trainers[t.ID] = t
	return t
}

const (
	nextMonday  = "2030-01-07"
	nextTuesday = "2030-01-08"
)
