package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"gem_market/internal/domain/value"
)

// Deal одна сторона сделки: покупатель-посредник или посредник-продавец.
type Deal struct {
	ID                    uuid.UUID
	Number                string
	Type                  value.DealType
	Stage                 value.Stage
	Status                value.Status
	Items                 []LineItem
	Amount                decimal.Decimal
	Fee                   decimal.Decimal
	BuyerID               uuid.UUID // uuid.Nil, когда покупает посредник
	BuyerCompanyID        uuid.UUID
	SellerID              uuid.UUID // uuid.Nil, когда продаёт посредник
	SellerCompanyID       uuid.UUID
	IntermediaryCompanyID uuid.UUID
	PairedDealID          uuid.UUID
	PairedDealIDs         []uuid.UUID
	Request               RequestDetails
	Negotiation           Negotiation
	Payment               PaymentDetails
	Shipping              ShippingDetails
	Notes                 string
	Activity              []Activity
	CreatedAt             time.Time
	LastActionAt          time.Time
	CompletedAt           *time.Time
}

type LineItem struct {
	UnitID                  uuid.UUID           `json:"unitId"`
	Price                   decimal.Decimal     `json:"price"`
	Alternatives            []Alternative       `json:"suggestedAlternatives,omitempty"`
	SelectedAlternative     uuid.UUID           `json:"selectedAlternativeProduct"`
	StruckOut               bool                `json:"originalProductStruckOut"`
	OriginalPriceBeforeSwap decimal.NullDecimal `json:"originalPriceBeforeSwap"`
}

// Alternative кандидат на замену и спекулятивная сделка с его продавцом.
type Alternative struct {
	UnitID       uuid.UUID `json:"unitId"`
	PairedDealID uuid.UUID `json:"pairedDealId"`
}

// EffectiveUnitID единица, которая фактически продаётся по строке.
func (li LineItem) EffectiveUnitID() uuid.UUID {
	if li.SelectedAlternative != uuid.Nil {
		return li.SelectedAlternative
	}

	return li.UnitID
}

func (li LineItem) Alternative(unitID uuid.UUID) (Alternative, bool) {
	return lo.Find(li.Alternatives, func(a Alternative) bool {
		return a.UnitID == unitID
	})
}

type RequestDetails struct {
	RequestedAt     time.Time `json:"requestedAt"`
	RequestedBy     uuid.UUID `json:"requestedBy"`
	Notes           string    `json:"notes,omitempty"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
}

type PaymentDetails struct {
	InvoiceFile       string     `json:"invoiceFile,omitempty"`
	InvoiceUploadedAt *time.Time `json:"invoiceUploadedAt,omitempty"`
	InvoiceAccepted   bool       `json:"invoiceAccepted"`
	InvoiceRejection  string     `json:"invoiceRejection,omitempty"`
	PaymentReference  string     `json:"paymentReference,omitempty"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
}

type Address struct {
	Recipient  string `json:"recipient"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type ShippingDetails struct {
	Cost                decimal.Decimal `json:"cost"`
	Address             Address         `json:"shippingAddress"`
	TrackingNumber      string          `json:"trackingNumber,omitempty"`
	Carrier             string          `json:"carrier,omitempty"`
	ShippedAt           *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt         *time.Time      `json:"deliveredAt,omitempty"`
	DeliveryConfirmedBy uuid.UUID       `json:"deliveryConfirmedBy"`
}

type Activity struct {
	Action      value.ActivityAction `json:"action"`
	PerformedBy uuid.UUID            `json:"performedBy"`
	Details     string               `json:"details"`
	At          time.Time            `json:"timestamp"`
}

// Log добавляет запись в журнал и сдвигает LastActionAt.
func (d *Deal) Log(at time.Time, action value.ActivityAction, by uuid.UUID, details string) {
	d.Activity = append(d.Activity, Activity{
		Action:      action,
		PerformedBy: by,
		Details:     details,
		At:          at,
	})
	d.LastActionAt = at
}

func (d *Deal) IsTerminal() bool {
	return d.Stage.IsTerminal()
}

// LinesTotal сумма текущих цен строк.
func (d *Deal) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Price)
	}

	return total
}

// RecalculateAmount приводит Amount к сумме строк.
func (d *Deal) RecalculateAmount() {
	d.Amount = d.LinesTotal()
}

// UnitIDs единицы, фактически участвующие в сделке.
func (d *Deal) UnitIDs() []uuid.UUID {
	return lo.Map(d.Items, func(item LineItem, _ int) uuid.UUID {
		return item.EffectiveUnitID()
	})
}

func (d *Deal) ItemIndex(unitID uuid.UUID) int {
	_, idx, found := lo.FindIndexOf(d.Items, func(item LineItem) bool {
		return item.UnitID == unitID
	})
	if !found {
		return -1
	}

	return idx
}

// FirstUnitID первая единица сделки или uuid.Nil.
func (d *Deal) FirstUnitID() uuid.UUID {
	if len(d.Items) == 0 {
		return uuid.Nil
	}

	return d.Items[0].UnitID
}

// AlternativeDealIDs спекулятивные сделки, созданные под кандидатов на замену.
func (d *Deal) AlternativeDealIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, item := range d.Items {
		for _, alt := range item.Alternatives {
			if alt.PairedDealID != uuid.Nil {
				ids = append(ids, alt.PairedDealID)
			}
		}
	}

	return ids
}

// SelectedAlternativeDealIDs сделки под выбранные замены.
func (d *Deal) SelectedAlternativeDealIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, item := range d.Items {
		if item.SelectedAlternative == uuid.Nil {
			continue
		}
		if alt, ok := item.Alternative(item.SelectedAlternative); ok && alt.PairedDealID != uuid.Nil {
			ids = append(ids, alt.PairedDealID)
		}
	}

	return ids
}

// PrimaryPairedDealIDs сделки с продавцами исходных единиц.
func (d *Deal) PrimaryPairedDealIDs() []uuid.UUID {
	alternatives := d.AlternativeDealIDs()

	return lo.Filter(d.PairedDealIDs, func(id uuid.UUID, _ int) bool {
		return !lo.Contains(alternatives, id)
	})
}

// ActiveSellerDealIDs сделки с продавцами, которые поставляют товар по этой сделке.
func (d *Deal) ActiveSellerDealIDs() []uuid.UUID {
	return lo.Uniq(append(d.PrimaryPairedDealIDs(), d.SelectedAlternativeDealIDs()...))
}

// IsDirect сделка, где посредник сам поставляет весь товар.
func (d *Deal) IsDirect() bool {
	return d.Type == value.DealTypeBuyerToIntermediary && len(d.ActiveSellerDealIDs()) == 0
}

// HasPairedDeal проверяет, что id уже указан в PairedDealIDs.
func (d *Deal) HasPairedDeal(id uuid.UUID) bool {
	return lo.Contains(d.PairedDealIDs, id)
}
