package enums

type DisciplineStatus string

const (
	DisciplineStatusWarning   DisciplineStatus = "WARNING"
	DisciplineStatusSuspended DisciplineStatus = "SUSPENDED"
	DisciplineStatusBanned    DisciplineStatus = "BANNED"
	DisciplineStatusExpired   DisciplineStatus = "EXPIRED"
	DisciplineStatusLifted    DisciplineStatus = "LIFTED"
)

// Active reports whether the record still restricts the vendor.
func (s DisciplineStatus) Active() bool {
	switch s {
	case DisciplineStatusWarning, DisciplineStatusSuspended, DisciplineStatusBanned:
		return true
	default:
		return false
	}
}

// Deactivating reports whether the status takes the vendor off the marketplace.
func (s DisciplineStatus) Deactivating() bool {
	return s == DisciplineStatusSuspended || s == DisciplineStatusBanned
}
