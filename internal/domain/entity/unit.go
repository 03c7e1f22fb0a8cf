package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gem_market/internal/domain/value"
)

// Unit единица товара с уникальным сертификатом.
type Unit struct {
	ID                   uuid.UUID
	CompanyID            uuid.UUID
	CertificateNumber    string
	CertificateInstitute string
	Price                decimal.Decimal
	Attributes           value.UnitAttributes
	Status               value.UnitStatus
	DealID               uuid.UUID
	UpdatedAt            time.Time
}

// AlternativeQuery критерии подбора замены для единицы.
type AlternativeQuery struct {
	Shape        string
	CaratMin     decimal.Decimal
	CaratMax     decimal.Decimal
	Clarity      string
	Colors       []string
	ExcludeUnits []uuid.UUID
	Limit        int
}

type ExclusionEntry struct {
	CertificateNumber string                `json:"certificateNumber"`
	Reason            value.ExclusionReason `json:"reason"`
	DealID            uuid.UUID             `json:"dealId"`
	AddedBy           uuid.UUID             `json:"addedBy"`
	CreatedAt         time.Time             `json:"createdAt"`
}

type CartItem struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	UnitID  uuid.UUID
	AddedAt time.Time
}
