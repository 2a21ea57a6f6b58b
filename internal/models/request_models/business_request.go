package request_models

// BusinessRequest is used both for owner registration and for admin manual
// insertion. Required fields are checked by the service so that every
// missing field is reported at once.
type BusinessRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Address          string   `json:"address"`
	Postcode         string   `json:"postcode"`
	City             string   `json:"city"`
	Phone            string   `json:"phone"`
	Email            string   `json:"email"`
	Website          string   `json:"website"`
	BusinessType     string   `json:"business_type"`
	Specialties      []string `json:"specialties"`
	AgeRanges        []string `json:"age_ranges"`
	DifficultyLevels []string `json:"difficulty_levels"`
	Amenities        []string `json:"amenities"`
}

type ApproveRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

type UpgradeSubscriptionRequest struct {
	Tier string `json:"tier" binding:"required"`
}

type ClaimBusinessRequest struct {
	Message               string   `json:"message"`
	VerificationDocuments []string `json:"verification_documents"`
}

type DecideClaimRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Notes   string `json:"notes"`
}
