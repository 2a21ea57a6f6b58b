package services

import (
	"context"
	"time"

	"fitbook/internal/authz"
	resp "fitbook/internal/models/response_models"
	"fitbook/internal/repositories"
	"fitbook/pkg/utils"
)

type DashboardService interface {
	BuildStats(ctx context.Context, actor authz.Actor, rng resp.TimeRange) (*resp.AdminStatsResponse, error)
}

type dashboardService struct {
	store  repositories.Store
	market MarketplaceConfig
}

func NewDashboardService(store repositories.Store, market MarketplaceConfig) DashboardService {
	return &dashboardService{store: store, market: market}
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	switch out.Interval {
	case "day", "week", "month":
	default:
		out.Interval = "day"
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30) // last 30 days default
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func (s *dashboardService) BuildStats(ctx context.Context, actor authz.Actor, rng resp.TimeRange) (*resp.AdminStatsResponse, error) {
	if err := authz.RequireRole(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	rng = normalizeRange(rng)
	repo := s.store.Dashboard()

	users, err := repo.CountUsers(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	businesses, err := repo.CountBusinesses(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	sessions, pendingSessions, err := repo.CountSessions(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	bookings, confirmed, err := repo.CountBookings(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	trainers, pendingTrainers, err := repo.CountTrainers(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	claims, err := repo.CountPendingClaims(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}
	revenue, err := repo.ConfirmedRevenue(ctx)
	if err != nil {
		return nil, utils.Database(err)
	}

	rows, err := repo.RevenueSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, utils.Database(err)
	}
	series := resp.RevenueSeries{Currency: s.market.Currency, Points: make([]resp.SeriesPoint, 0, len(rows))}
	for _, r := range rows {
		series.Points = append(series.Points, resp.SeriesPoint{Bucket: r.Bucket, Value: r.Sum})
		series.TotalMinor += r.Sum
	}

	return &resp.AdminStatsResponse{
		Users: users,
		Businesses: resp.BusinessStats{
			Total:          businesses.Total,
			Pending:        businesses.Pending,
			Approved:       businesses.Approved,
			BookingEnabled: businesses.BookingEnabled,
		},
		Sessions:              sessions,
		PendingSessions:       pendingSessions,
		Bookings:              bookings,
		ConfirmedBookings:     confirmed,
		Trainers:              trainers,
		PendingTrainers:       pendingTrainers,
		PendingClaims:         claims,
		ConfirmedRevenueMinor: revenue,
		Currency:              s.market.Currency,
		Range:                 rng,
		Revenue:               series,
	}, nil
}
