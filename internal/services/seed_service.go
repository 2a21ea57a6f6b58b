package services

import (
	"context"

	"fitbook/internal/models/db_models"
	"fitbook/internal/models/request_models"
	"fitbook/internal/repositories"
	"fitbook/pkg/utils"

	"go.uber.org/zap"
)

// DefaultSessionTypes is the vocabulary installed by the seed command.
var DefaultSessionTypes = []db_models.SessionType{
	{Name: "Yoga", Description: "Breath-led flexibility and balance classes"},
	{Name: "Pilates", Description: "Core strength and posture work"},
	{Name: "HIIT", Description: "High intensity interval training"},
	{Name: "Spin", Description: "Indoor cycling"},
	{Name: "Boxing", Description: "Bag work, pads and conditioning"},
	{Name: "Strength Training", Description: "Free weights and resistance machines"},
	{Name: "Swimming", Description: "Lessons and lane sessions"},
	{Name: "Dance", Description: "Dance fitness and choreography"},
	{Name: "Martial Arts", Description: "Karate, judo, BJJ and similar disciplines"},
	{Name: "Running Club", Description: "Group runs and track sessions"},
}

type SeedResult struct {
	SessionTypes      int
	BusinessesAdded   int
	BusinessesSkipped int
}

// Seeder installs reference data. Every step is safe to repeat.
type Seeder struct {
	store repositories.Store
	log   *zap.Logger
}

func NewSeeder(store repositories.Store, log *zap.Logger) *Seeder {
	return &Seeder{store: store, log: log}
}

func (s *Seeder) Run(ctx context.Context, businesses []request_models.BusinessRequest) (*SeedResult, error) {
	res := &SeedResult{}
	for _, st := range DefaultSessionTypes {
		row := st
		if err := s.store.SessionTypes().FirstOrCreate(ctx, &row); err != nil {
			return nil, utils.Database(err)
		}
		res.SessionTypes++
	}

	for i, req := range businesses {
		if err := validateBusiness(req, true); err != nil {
			s.log.Warn("skipping invalid business", zap.Int("index", i), zap.Error(err))
			res.BusinessesSkipped++
			continue
		}
		b := newBusiness(req)
		existing, err := s.store.Businesses().FindManual(ctx, b.Name, b.Postcode)
		if err != nil {
			return nil, utils.Database(err)
		}
		if existing != nil {
			res.BusinessesSkipped++
			continue
		}
		b.ManuallyAdded = true
		b.Approved = true
		if err := s.store.Businesses().Create(ctx, b); err != nil {
			return nil, utils.Database(err)
		}
		res.BusinessesAdded++
	}

	s.log.Info("seed complete",
		zap.Int("session_types", res.SessionTypes),
		zap.Int("businesses_added", res.BusinessesAdded),
		zap.Int("businesses_skipped", res.BusinessesSkipped))
	return res, nil
}

