package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gem_market/internal/domain/value"
)

// DealView сделка глазами конкретного участника.
type DealView struct {
	Deal           *Deal
	UserRole       value.Role
	AllowedActions []value.Action
	IsDirect       bool
	CanEdit        bool
}

type DashboardEntry struct {
	Deal             *Deal
	Kind             value.DashboardKind
	CounterpartyName string
	LinkedDealNumber string
}

// DealFilter нулевые поля не участвуют в отборе.
type DealFilter struct {
	Type            value.DealType
	BuyerID         uuid.UUID
	BuyerCompanyID  uuid.UUID
	SellerCompanyID uuid.UUID
	// SellerParty отбирает сделки, где продаёт пользователь или его компания.
	SellerParty  *Party
	PairedDealID uuid.UUID
	OpenOnly     bool
	Limit        int
	Offset       int
}

type Party struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
}

// PairingReport расхождения связей между сделкой покупателя и сделками продавцов.
type PairingReport struct {
	BuyerDealID uuid.UUID
	// MissingBackLinks сделки продавцов, ссылающиеся на покупателя, но не указанные в PairedDealIDs.
	MissingBackLinks []uuid.UUID
	// DanglingIDs идентификаторы из PairedDealIDs, для которых сделки нет.
	DanglingIDs []uuid.UUID
	// ForeignLinks сделки из PairedDealIDs, чей PairedDealID указывает в другое место.
	ForeignLinks []uuid.UUID
	// UnlistedAlternatives спекулятивные сделки из строк, не попавшие в PairedDealIDs.
	UnlistedAlternatives []uuid.UUID
}

func (r PairingReport) OK() bool {
	return len(r.MissingBackLinks) == 0 &&
		len(r.DanglingIDs) == 0 &&
		len(r.ForeignLinks) == 0 &&
		len(r.UnlistedAlternatives) == 0
}

// DealEvent уведомление о событии жизненного цикла.
type DealEvent struct {
	Kind       value.EventKind `json:"kind"`
	DealID     uuid.UUID       `json:"dealId"`
	DealNumber string          `json:"dealNumber"`
	DealType   value.DealType  `json:"dealType"`
	Stage      value.Stage     `json:"stage"`
	Status     value.Status    `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	Details    string          `json:"details,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

func NewDealEvent(kind value.EventKind, deal *Deal, details string, at time.Time) DealEvent {
	return DealEvent{
		Kind:       kind,
		DealID:     deal.ID,
		DealNumber: deal.Number,
		DealType:   deal.Type,
		Stage:      deal.Stage,
		Status:     deal.Status,
		Amount:     deal.Amount,
		Details:    details,
		OccurredAt: at,
	}
}
