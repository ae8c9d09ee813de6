package billing

// ChargeType classifies an invoice line item. The set is closed: unknown
// values are rejected at the boundary instead of flowing through the ledger
// as raw strings.
type ChargeType string

const (
	ChargeTypeLineHaul      ChargeType = "LINE_HAUL"
	ChargeTypeFuelSurcharge ChargeType = "FUEL_SURCHARGE"
	ChargeTypeDetention     ChargeType = "DETENTION"
	ChargeTypeDemurrage     ChargeType = "DEMURRAGE"
	ChargeTypePerDiem       ChargeType = "PER_DIEM"
	ChargeTypeChassis       ChargeType = "CHASSIS"
	ChargeTypeStorage       ChargeType = "STORAGE"
	ChargeTypeRedelivery    ChargeType = "REDELIVERY"
	ChargeTypeDryRun        ChargeType = "DRY_RUN"
	ChargeTypeWaiting       ChargeType = "WAITING"
	ChargeTypeOverweight    ChargeType = "OVERWEIGHT"
	ChargeTypeHazmat        ChargeType = "HAZMAT"
	ChargeTypeReefer        ChargeType = "REEFER"
	ChargeTypePrepull       ChargeType = "PREPULL"
	ChargeTypeOther         ChargeType = "OTHER"
)

// IsValid checks if the charge type is a recognized ChargeType
func (c ChargeType) IsValid() bool {
	switch c {
	case ChargeTypeLineHaul, ChargeTypeFuelSurcharge, ChargeTypeDetention,
		ChargeTypeDemurrage, ChargeTypePerDiem, ChargeTypeChassis,
		ChargeTypeStorage, ChargeTypeRedelivery, ChargeTypeDryRun,
		ChargeTypeWaiting, ChargeTypeOverweight, ChargeTypeHazmat,
		ChargeTypeReefer, ChargeTypePrepull, ChargeTypeOther:
		return true
	}
	return false
}

// String returns the string representation of ChargeType
func (c ChargeType) String() string {
	return string(c)
}

// IsAccessorial returns true for charges layered on top of the base haul
// rate (everything except line haul and fuel).
func (c ChargeType) IsAccessorial() bool {
	switch c {
	case ChargeTypeLineHaul, ChargeTypeFuelSurcharge:
		return false
	}
	return true
}
