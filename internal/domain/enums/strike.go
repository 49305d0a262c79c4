package enums

type StrikeType string

const (
	StrikeTypeProhibitedItem     StrikeType = "PROHIBITED_ITEM"
	StrikeTypeCounterfeitProduct StrikeType = "COUNTERFEIT_PRODUCT"
	StrikeTypeFraud              StrikeType = "FRAUD"
	StrikeTypePolicyViolation    StrikeType = "POLICY_VIOLATION"
	StrikeTypeMisleadingListing  StrikeType = "MISLEADING_LISTING"
	StrikeTypeCustomerAbuse      StrikeType = "CUSTOMER_ABUSE"
	StrikeTypeLateShipment       StrikeType = "LATE_SHIPMENT"
	StrikeTypeSpam               StrikeType = "SPAM"
)

func (t StrikeType) Valid() bool {
	switch t {
	case StrikeTypeProhibitedItem, StrikeTypeCounterfeitProduct, StrikeTypeFraud, StrikeTypePolicyViolation,
		StrikeTypeMisleadingListing, StrikeTypeCustomerAbuse, StrikeTypeLateShipment, StrikeTypeSpam:
		return true
	default:
		return false
	}
}

type StrikeResolution string

const (
	StrikeResolutionUpheld     StrikeResolution = "UPHELD"
	StrikeResolutionOverturned StrikeResolution = "OVERTURNED"
	StrikeResolutionModified   StrikeResolution = "MODIFIED"
)

func (r StrikeResolution) Valid() bool {
	switch r {
	case StrikeResolutionUpheld, StrikeResolutionOverturned, StrikeResolutionModified:
		return true
	default:
		return false
	}
}
