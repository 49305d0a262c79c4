package enums

type ContentType string

const (
	ContentTypeProduct       ContentType = "PRODUCT"
	ContentTypeProductImage  ContentType = "PRODUCT_IMAGE"
	ContentTypeReview        ContentType = "REVIEW"
	ContentTypeVendorProfile ContentType = "VENDOR_PROFILE"
	ContentTypeBanner        ContentType = "BANNER"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeProduct, ContentTypeProductImage, ContentTypeReview, ContentTypeVendorProfile, ContentTypeBanner:
		return true
	default:
		return false
	}
}
