package rules

import "github.com/Vijayapardhu/risbow-backend-sub001/internal/domain/enums"

// DisciplineThresholds drives automatic escalation from active strike totals.
type DisciplineThresholds struct {
	BanPoints            int
	LongSuspensionCount  int
	LongSuspensionDays   int
	RepeatSuspensionDays int
	ShortSuspensionCount int
	ShortSuspensionDays  int
	WarningCount         int
}

func DefaultDisciplineThresholds() DisciplineThresholds {
	return DisciplineThresholds{
		BanPoints:            15,
		LongSuspensionCount:  3,
		LongSuspensionDays:   30,
		RepeatSuspensionDays: 60,
		ShortSuspensionCount: 2,
		ShortSuspensionDays:  7,
		WarningCount:         1,
	}
}

// Tier is the discipline a vendor's cumulative active strikes call for.
// DurationDays == 0 means indefinite.
type Tier struct {
	Status       enums.DisciplineStatus
	DurationDays int
}

// SelectTier evaluates thresholds most severe first and returns the tier the
// totals cross, or ok=false while the vendor stays in good standing.
func (t DisciplineThresholds) SelectTier(activeCount, activePoints int) (Tier, bool) {
	switch {
	case activePoints >= t.BanPoints:
		return Tier{Status: enums.DisciplineStatusBanned}, true
	case activeCount >= t.LongSuspensionCount:
		days := t.LongSuspensionDays
		if activeCount >= t.LongSuspensionCount+1 {
			// Stacked suspension for repeat offenders.
			days = t.RepeatSuspensionDays
		}
		return Tier{Status: enums.DisciplineStatusSuspended, DurationDays: days}, true
	case activeCount >= t.ShortSuspensionCount:
		return Tier{Status: enums.DisciplineStatusSuspended, DurationDays: t.ShortSuspensionDays}, true
	case activeCount >= t.WarningCount:
		return Tier{Status: enums.DisciplineStatusWarning}, true
	default:
		return Tier{}, false
	}
}
