package constants

// DocumentType is decided once per grid before row-level processing.
type DocumentType string

const (
	DocumentDetailed DocumentType = "detailed"
	DocumentSummary  DocumentType = "summary"
	DocumentRecap    DocumentType = "recap"
	DocumentUnknown  DocumentType = "unknown"
)

// ParseDocumentType accepts the lowercase names above; anything else is unknown.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch DocumentType(s) {
	case DocumentDetailed, DocumentSummary, DocumentRecap, DocumentUnknown:
		return DocumentType(s), true
	}
	return DocumentUnknown, false
}

// LineType is the classification of one grid row. Never persisted.
type LineType string

const (
	LineEmpty    LineType = "EMPTY"
	LineHeader   LineType = "HEADER"
	LineCategory LineType = "CATEGORY"
	LineItem     LineType = "ITEM"
	LineSubtotal LineType = "SUBTOTAL"
	LineTotal    LineType = "TOTAL"
	LineMetadata LineType = "METADATA"
)

// ColumnRole is the semantic meaning assigned to a grid column.
type ColumnRole string

const (
	RoleNumber      ColumnRole = "NUMBER"
	RoleDesignation ColumnRole = "DESIGNATION"
	RoleUnit        ColumnRole = "UNIT"
	RoleQuantity    ColumnRole = "QUANTITY"
	RoleUnitPrice   ColumnRole = "UNIT_PRICE"
	RoleTotalPrice  ColumnRole = "TOTAL_PRICE"
	RoleLot         ColumnRole = "LOT"
)

// IsValid reports whether r is one of the known roles.
func (r ColumnRole) IsValid() bool {
	for _, known := range ColumnRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ColumnRoles lists roles in mapping order.
var ColumnRoles = []ColumnRole{
	RoleNumber, RoleDesignation, RoleUnit, RoleQuantity, RoleUnitPrice, RoleTotalPrice, RoleLot,
}

// ExtractionMode records which pipeline produced a document.
type ExtractionMode string

// ParseExtractionMode accepts local, ai and auto.
func ParseExtractionMode(s string) (ExtractionMode, bool) {
	switch m := ExtractionMode(s); m {
	case ModeLocal, ModeAI, ModeAuto:
		return m, true
	}
	return "", false
}

const (
	ModeLocal ExtractionMode = "local"
	ModeAI    ExtractionMode = "ai"
	ModeAuto  ExtractionMode = "auto"
)

// Stable values for rows in the extractions table.
const (
	StatusOK      = "OK"
	StatusPartial = "PARTIAL" // extracted with warnings
	StatusFailed  = "FAILED"
)

// Defaults reused across packages.
const (
	DefaultCurrency          = "FCFA"
	UndefinedBucket          = "Non défini"
	RecapCategoryName        = "RECAPITULATIF"
	MismatchToleranceDefault = 1000.0
)
