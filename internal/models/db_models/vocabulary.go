package db_models

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierBasic   SubscriptionTier = "basic"
	TierPremium SubscriptionTier = "premium"
)

func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierFree, TierBasic, TierPremium:
		return true
	}
	return false
}

func (t SubscriptionTier) Paid() bool { return t == TierBasic || t == TierPremium }

type GenderPolicy string

const (
	GenderMixed      GenderPolicy = "mixed"
	GenderFemaleOnly GenderPolicy = "female_only"
	GenderMaleOnly   GenderPolicy = "male_only"
)

func (g GenderPolicy) Valid() bool {
	switch g {
	case GenderMixed, GenderFemaleOnly, GenderMaleOnly:
		return true
	}
	return false
}

// Closed vocabularies for session difficulty and age groups. The "all"
// sentinel of each set excludes every other value.
const (
	DifficultyAllLevels    = "all levels"
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"

	AgeGroupAllAges  = "all ages"
	AgeGroupChildren = "children"
	AgeGroupTeens    = "teens"
	AgeGroupAdults   = "adults"
	AgeGroupSeniors  = "seniors"
)

var (
	Difficulties = []string{DifficultyAllLevels, DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}
	AgeGroups    = []string{AgeGroupAllAges, AgeGroupChildren, AgeGroupTeens, AgeGroupAdults, AgeGroupSeniors}
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s. Only confirmed
// bookings move, and cancelled/completed are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return s == BookingConfirmed && (next == BookingCancelled || next == BookingCompleted)
}

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "pending"
	ClaimApproved ClaimStatus = "approved"
	ClaimRejected ClaimStatus = "rejected"
)
