package services

import (
	"fitbook/internal/models/db_models"
	"fitbook/internal/models/response_models"
	"fitbook/pkg/utils"
)

func toUserResponse(u *db_models.User) response_models.UserResponse {
	return response_models.UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}

func toBusinessResponse(b *db_models.Business) response_models.BusinessResponse {
	return response_models.BusinessResponse{
		ID:                 b.ID,
		UserID:             b.UserID,
		Name:               b.Name,
		Description:        b.Description,
		Address:            b.Address,
		Postcode:           b.Postcode,
		City:               b.City,
		Phone:              b.Phone,
		Email:              b.Email,
		Website:            b.Website,
		BusinessType:       b.BusinessType,
		Specialties:        nonNil(b.Specialties),
		AgeRanges:          nonNil(b.AgeRanges),
		DifficultyLevels:   nonNil(b.DifficultyLevels),
		Amenities:          nonNil(b.Amenities),
		Approved:           b.Approved,
		Claimed:            b.Claimed,
		ManuallyAdded:      b.ManuallyAdded,
		SubscriptionTier:   string(b.SubscriptionTier),
		BookingEnabled:     b.BookingEnabled(),
		SubscriptionExpiry: utils.FromUnixSeconds(b.SubscriptionExpiry),
		CreatedAt:          b.CreatedAt,
	}
}

func toBusinessResponses(in []db_models.Business) []response_models.BusinessResponse {
	out := make([]response_models.BusinessResponse, 0, len(in))
	for i := range in {
		out = append(out, toBusinessResponse(&in[i]))
	}
	return out
}

func toBusinessSummary(b *db_models.Business) *response_models.BusinessSummary {
	return &response_models.BusinessSummary{
		ID:             b.ID,
		Name:           b.Name,
		Address:        b.Address,
		Postcode:       b.Postcode,
		City:           b.City,
		BookingEnabled: b.BookingEnabled(),
	}
}

func toClaimResponse(c *db_models.BusinessClaim, businessName string) response_models.ClaimResponse {
	return response_models.ClaimResponse{
		ID:                    c.ID,
		BusinessID:            c.BusinessID,
		BusinessName:          businessName,
		UserID:                c.UserID,
		ClaimMessage:          c.ClaimMessage,
		VerificationDocuments: nonNil(c.VerificationDocuments),
		Status:                string(c.Status),
		AdminNotes:            c.AdminNotes,
		ApprovedAt:            utils.FromUnixSeconds(c.ApprovedAt),
		CreatedAt:             c.CreatedAt,
	}
}

func toSessionTypeResponse(st *db_models.SessionType) *response_models.SessionTypeResponse {
	return &response_models.SessionTypeResponse{
		ID:          st.ID,
		Name:        st.Name,
		Description: st.Description,
	}
}

func toSessionResponse(s *db_models.FitnessSession, currency string) response_models.SessionResponse {
	schedule := make([]response_models.ScheduleSlotResponse, 0, len(s.Schedule))
	for _, slot := range s.Schedule {
		schedule = append(schedule, response_models.ScheduleSlotResponse{
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	return response_models.SessionResponse{
		ID:              s.ID,
		BusinessID:      s.BusinessID,
		SessionTypeID:   s.SessionTypeID,
		Title:           s.Title,
		Description:     s.Description,
		Difficulty:      nonNil(s.Difficulty),
		AgeGroups:       nonNil(s.AgeGroups),
		GenderPolicy:    string(s.GenderPolicy),
		PriceMinor:      s.PriceMinor,
		Currency:        currency,
		DurationMinutes: s.DurationMinutes,
		MaxParticipants: s.MaxParticipants,
		Schedule:        schedule,
		Approved:        s.Approved,
		CreatedAt:       s.CreatedAt,
	}
}

func toBookingResponse(b *db_models.Booking, title string) response_models.BookingResponse {
	return response_models.BookingResponse{
		ID:                  b.ID,
		UserID:              b.UserID,
		SessionID:           b.SessionID,
		SessionTitle:        title,
		SessionDate:         utils.FormatDate(b.SessionDate),
		Status:              string(b.Status),
		PaymentIntentID:     b.PaymentIntentRef,
		PriceMinor:          b.PriceMinor,
		PlatformFeeMinor:    b.PlatformFeeMinor,
		TotalAmountMinor:    b.TotalAmountMinor,
		Currency:            b.Currency,
		SpecialRequirements: b.SpecialRequirements,
		CreatedAt:           b.CreatedAt,
	}
}

func toTrainerResponse(t *db_models.PersonalTrainer, currency string) response_models.TrainerResponse {
	return response_models.TrainerResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		Name:            t.Name,
		Bio:             t.Bio,
		Location:        t.Location,
		Postcode:        t.Postcode,
		Email:           t.Email,
		Phone:           t.Phone,
		Specialties:     nonNil(t.Specialties),
		Certifications:  nonNil(t.Certifications),
		ExperienceYears: t.ExperienceYears,
		HourlyRateMinor: t.HourlyRateMinor,
		Currency:        currency,
		Approved:        t.Approved,
		BookingEnabled:  t.BookingEnabled,
		CreatedAt:       t.CreatedAt,
	}
}

func toTrainerBookingResponse(b *db_models.TrainerBooking, trainerName string) response_models.TrainerBookingResponse {
	return response_models.TrainerBookingResponse{
		ID:               b.ID,
		UserID:           b.UserID,
		TrainerID:        b.TrainerID,
		TrainerName:      trainerName,
		SessionDate:      utils.FormatDate(b.SessionDate),
		StartTime:        b.StartTime,
		DurationMinutes:  b.DurationMinutes,
		Status:           string(b.Status),
		PaymentIntentID:  b.PaymentIntentRef,
		PriceMinor:       b.PriceMinor,
		PlatformFeeMinor: b.PlatformFeeMinor,
		TotalAmountMinor: b.TotalAmountMinor,
		Currency:         b.Currency,
		Notes:            b.Notes,
		CreatedAt:        b.CreatedAt,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
