package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories so a service can run several of them inside
// one transaction.
type Store interface {
	Users() UserRepository
	Businesses() BusinessRepository
	Claims() ClaimRepository
	SessionTypes() SessionTypeRepository
	Sessions() SessionRepository
	Bookings() BookingRepository
	Trainers() TrainerRepository
	TrainerBookings() TrainerBookingRepository
	Payments() PaymentAuthorizationRepository
	Dashboard() DashboardRepository

	// WithinTransaction runs fn against a transactional Store. fn's error
	// rolls everything back.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return NewUserRepository(s.db) }
func (s *gormStore) Businesses() BusinessRepository        { return NewBusinessRepository(s.db) }
func (s *gormStore) Claims() ClaimRepository               { return NewClaimRepository(s.db) }
func (s *gormStore) SessionTypes() SessionTypeRepository   { return NewSessionTypeRepository(s.db) }
func (s *gormStore) Sessions() SessionRepository           { return NewSessionRepository(s.db) }
func (s *gormStore) Bookings() BookingRepository           { return NewBookingRepository(s.db) }
func (s *gormStore) Trainers() TrainerRepository           { return NewTrainerRepository(s.db) }
func (s *gormStore) TrainerBookings() TrainerBookingRepository {
	return NewTrainerBookingRepository(s.db)
}
func (s *gormStore) Payments() PaymentAuthorizationRepository {
	return NewPaymentAuthorizationRepository(s.db)
}
func (s *gormStore) Dashboard() DashboardRepository { return NewDashboardRepository(s.db) }

func (s *gormStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
