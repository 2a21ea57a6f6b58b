package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fitbook/internal/models/response_models"
	"fitbook/internal/services"
	"fitbook/pkg/middleware"
	"fitbook/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultStatsWindowDays = 30
	defaultStatsTimezone   = "Europe/London"
)

type DashboardController struct {
	dashboardService services.DashboardService
}

func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// GetStats godoc
// @Summary Admin statistics
// @Description Marketplace counts (users, businesses, sessions, bookings, trainers, pending claims) and confirmed revenue bucketed over a window
// @Tags Admin
// @Produce json
// @Param start     query string false "RFC3339 window start"
// @Param end       query string false "RFC3339 window end, defaults to now"
// @Param last_days query int    false "Lookback in days; cannot be combined with start/end"
// @Param interval  query string false "day | week | month (default day)"
// @Param tz        query string false "IANA timezone used for buckets (default Europe/London)"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/stats [get]
func (d *DashboardController) GetStats(c *gin.Context) {
	rng, err := statsRange(c, time.Now().UTC())
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := d.dashboardService.BuildStats(c.Request.Context(), middleware.ActorFrom(c), rng)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, report, "Stats fetched successfully")
}

// statsRange reads the window query parameters. Ordering of start and end
// is left to the service.
func statsRange(c *gin.Context, now time.Time) (response_models.TimeRange, error) {
	rng := response_models.TimeRange{
		Interval: c.DefaultQuery("interval", "day"),
		Timezone: c.DefaultQuery("tz", defaultStatsTimezone),
	}
	if _, err := time.LoadLocation(rng.Timezone); err != nil {
		return rng, fmt.Errorf("tz %q is not an IANA timezone", rng.Timezone)
	}
	switch rng.Interval {
	case "day", "week", "month":
	default:
		return rng, fmt.Errorf("interval must be day, week or month")
	}

	rawStart, rawEnd, rawDays := c.Query("start"), c.Query("end"), c.Query("last_days")
	if rawDays != "" {
		if rawStart != "" || rawEnd != "" {
			return rng, fmt.Errorf("use last_days or start/end, not both")
		}
		days, err := strconv.Atoi(rawDays)
		if err != nil || days < 1 {
			return rng, fmt.Errorf("last_days must be a positive integer")
		}
		rng.End, rng.Start = now, now.AddDate(0, 0, -days)
		return rng, nil
	}

	var err error
	if rng.Start, err = rfc3339OrZero("start", rawStart); err != nil {
		return rng, err
	}
	if rng.End, err = rfc3339OrZero("end", rawEnd); err != nil {
		return rng, err
	}
	if rng.End.IsZero() {
		rng.End = now
	}
	if rng.Start.IsZero() {
		rng.Start = rng.End.AddDate(0, 0, -defaultStatsWindowDays)
	}
	return rng, nil
}

func rfc3339OrZero(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339, e.g. 2030-01-01T00:00:00Z", name)
	}
	return t, nil
}
