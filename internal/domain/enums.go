package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
}

// BatchState represents the lifecycle state of a processing batch.
type BatchState string

const (
	BatchStateUploaded              BatchState = "UPLOADED"
	BatchStateProcessingSplit       BatchState = "PROCESSING_SPLIT"
	BatchStateSplitProposed         BatchState = "SPLIT_PROPOSED"
	BatchStateSplitValidated        BatchState = "SPLIT_VALIDATED"
	BatchStateExtractingData        BatchState = "EXTRACTING_DATA"
	BatchStateDataValidationPending BatchState = "DATA_VALIDATION_PENDING"
	BatchStateProcessingFailed      BatchState = "PROCESSING_FAILED"
	BatchStateError                 BatchState = "ERROR"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s BatchState) IsTerminal() bool {
	return s == BatchStateDataValidationPending || s == BatchStateError
}

// Tier identifies which extraction strategy supplied a field value.
// Lower tiers are more trusted.
type Tier string

const (
	TierDeterministic     Tier = "deterministic"
	TierTargetedLookup    Tier = "targeted_lookup"
	TierInferenceFallback Tier = "inference_fallback"
)

// TierWeight returns the confidence weight applied to fields from a tier.
func TierWeight(t Tier) float64 {
	switch t {
	case TierDeterministic:
		return 1.0
	case TierTargetedLookup:
		return 0.9
	case TierInferenceFallback:
		return 0.7
	default:
		return 0.5
	}
}

// LineItemType classifies a line item on an invoice.
type LineItemType string

const (
	LineItemProduct  LineItemType = "product"
	LineItemShipping LineItemType = "shipping"
	LineItemTax      LineItemType = "tax"
	LineItemFee      LineItemType = "fee"
	LineItemDiscount LineItemType = "discount"
	LineItemOther    LineItemType = "other"
)

// KnownLineItemTypes is the set of accepted line item classifications.
var KnownLineItemTypes = map[LineItemType]bool{
	LineItemProduct:  true,
	LineItemShipping: true,
	LineItemTax:      true,
	LineItemFee:      true,
	LineItemDiscount: true,
	LineItemOther:    true,
}
