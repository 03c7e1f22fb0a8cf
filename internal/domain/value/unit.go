package value

import (
	"strings"

	"github.com/shopspring/decimal"
)

type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "available"
	UnitStatusOnDeal    UnitStatus = "on_deal"
	UnitStatusSold      UnitStatus = "sold"
	UnitStatusReserved  UnitStatus = "reserved"
	UnitStatusInactive  UnitStatus = "inactive"
)

func (s UnitStatus) String() string {
	return string(s)
}

// UnitAttributes характеристики камня, по которым подбираются замены.
type UnitAttributes struct {
	Shape   string          `json:"shape"`
	Carat   decimal.Decimal `json:"carat"`
	Color   string          `json:"color"`
	Clarity string          `json:"clarity"`
}

//nolint:gochecknoglobals
var colorGrades = []string{"D", "E", "F", "G"}

// ColorBand возвращает цвет и соседние с ним градации.
// Неизвестный цвет возвращается как есть.
func ColorBand(color string) []string {
	upper := strings.ToUpper(color)

	for i, grade := range colorGrades {
		if grade != upper {
			continue
		}

		band := []string{grade}
		if i > 0 {
			band = append(band, colorGrades[i-1])
		}
		if i < len(colorGrades)-1 {
			band = append(band, colorGrades[i+1])
		}

		return band
	}

	return []string{color}
}

type ExclusionReason string

const (
	ExclusionReasonDealCancelled ExclusionReason = "deal_cancelled"
	ExclusionReasonProductSold   ExclusionReason = "product_sold"
)

// MemberRole должность сотрудника компании.
type MemberRole string

const (
	MemberRoleSupervisor MemberRole = "supervisor"
	MemberRoleManager    MemberRole = "manager"
	MemberRoleMember     MemberRole = "member"
)

// DashboardKind классификация сделки на панели супервизора.
type DashboardKind string

const (
	DashboardMainCustomerSale            DashboardKind = "mainCustomerSale"
	DashboardPrimarySupplierPurchase     DashboardKind = "primarySupplierPurchase"
	DashboardAlternativeSupplierPurchase DashboardKind = "alternativeSupplierPurchase"
	DashboardStandaloneSupplierPurchase  DashboardKind = "standaloneSupplierPurchase"
)

// EventKind тип уведомления о сделке.
type EventKind string

const (
	EventDealCreated     EventKind = "deal_created"
	EventTermsProposed   EventKind = "terms_proposed"
	EventTermsAccepted   EventKind = "terms_accepted"
	EventStageChanged    EventKind = "stage_changed"
	EventUnitSubstituted EventKind = "unit_substituted"
	EventDealCompleted   EventKind = "deal_completed"
	EventDealCancelled   EventKind = "deal_cancelled"
	EventPairingRepaired EventKind = "pairing_repaired"
)
