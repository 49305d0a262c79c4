package enums

type FlagReason string

const (
	FlagReasonProhibited   FlagReason = "PROHIBITED"
	FlagReasonCounterfeit  FlagReason = "COUNTERFEIT"
	FlagReasonCopyright    FlagReason = "COPYRIGHT"
	FlagReasonOffensive    FlagReason = "OFFENSIVE"
	FlagReasonMisleading   FlagReason = "MISLEADING"
	FlagReasonSpam         FlagReason = "SPAM"
	FlagReasonPriceGouging FlagReason = "PRICE_GOUGING"
	FlagReasonOther        FlagReason = "OTHER"
)

func (r FlagReason) Valid() bool {
	switch r {
	case FlagReasonProhibited, FlagReasonCounterfeit, FlagReasonCopyright, FlagReasonOffensive,
		FlagReasonMisleading, FlagReasonSpam, FlagReasonPriceGouging, FlagReasonOther:
		return true
	default:
		return false
	}
}

type FlagPriority string

const (
	FlagPriorityLow      FlagPriority = "LOW"
	FlagPriorityMedium   FlagPriority = "MEDIUM"
	FlagPriorityHigh     FlagPriority = "HIGH"
	FlagPriorityCritical FlagPriority = "CRITICAL"
)

// Rank orders priorities for queue sorting and monotonic upgrades.
func (p FlagPriority) Rank() int {
	switch p {
	case FlagPriorityCritical:
		return 4
	case FlagPriorityHigh:
		return 3
	case FlagPriorityMedium:
		return 2
	case FlagPriorityLow:
		return 1
	default:
		return 0
	}
}

type FlagStatus string

const (
	FlagStatusPending     FlagStatus = "PENDING"
	FlagStatusUnderReview FlagStatus = "UNDER_REVIEW"
	FlagStatusResolved    FlagStatus = "RESOLVED"
)

func (s FlagStatus) Open() bool {
	return s == FlagStatusPending || s == FlagStatusUnderReview
}

type ModerationAction string

const (
	ModerationActionApprove ModerationAction = "APPROVE"
	ModerationActionRemove  ModerationAction = "REMOVE"
	ModerationActionHide    ModerationAction = "HIDE"
	ModerationActionEdit    ModerationAction = "EDIT"
	ModerationActionWarn    ModerationAction = "WARN"
)

func (a ModerationAction) Valid() bool {
	switch a {
	case ModerationActionApprove, ModerationActionRemove, ModerationActionHide, ModerationActionEdit, ModerationActionWarn:
		return true
	default:
		return false
	}
}
