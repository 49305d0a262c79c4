package rules

import "github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"

// ScoringTables holds the fixed lookup data the pipeline escalates on.
// Values are copied out at use time; a table change never rewrites history.
type ScoringTables struct {
	ReasonScores map[enums.FlagReason]int
	StrikePoints map[enums.StrikeType]int
}

func DefaultScoringTables() ScoringTables {
	return ScoringTables{
		ReasonScores: map[enums.FlagReason]int{
			enums.FlagReasonProhibited:   5,
			enums.FlagReasonCounterfeit:  4,
			enums.FlagReasonCopyright:    4,
			enums.FlagReasonOffensive:    3,
			enums.FlagReasonMisleading:   2,
			enums.FlagReasonPriceGouging: 2,
			enums.FlagReasonSpam:         1,
			enums.FlagReasonOther:        1,
		},
		StrikePoints: map[enums.StrikeType]int{
			enums.StrikeTypeProhibitedItem:     5,
			enums.StrikeTypeCounterfeitProduct: 5,
			enums.StrikeTypeFraud:              5,
			enums.StrikeTypePolicyViolation:    3,
			enums.StrikeTypeMisleadingListing:  2,
			enums.StrikeTypeCustomerAbuse:      2,
			enums.StrikeTypeLateShipment:       1,
			enums.StrikeTypeSpam:               1,
		},
	}
}

// PriorityForReason buckets the per-reason score into a queue priority.
// Auto-flagged reports get +1 to the score before bucketing.
func (t ScoringTables) PriorityForReason(reason enums.FlagReason, autoFlagged bool) enums.FlagPriority {
	score := t.ReasonScores[reason]
	if autoFlagged {
		score++
	}
	switch {
	case score >= 5:
		return enums.FlagPriorityCritical
	case score >= 4:
		return enums.FlagPriorityHigh
	case score >= 2:
		return enums.FlagPriorityMedium
	default:
		return enums.FlagPriorityLow
	}
}

// PointsForStrike returns the fixed point value for a strike type.
func (t ScoringTables) PointsForStrike(strikeType enums.StrikeType) int {
	return t.StrikePoints[strikeType]
}
