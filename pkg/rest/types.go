// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string

type Address struct {
	Recipient  string `json:"recipient"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Alternative struct {
	UnitID       string `json:"unitId"`
	PairedDealID string `json:"pairedDealId,omitempty"`
}

type LineItem struct {
	UnitID                     string           `json:"unitId"`
	Price                      decimal.Decimal  `json:"price"`
	SuggestedAlternatives      []Alternative    `json:"suggestedAlternatives,omitempty"`
	SelectedAlternativeProduct string           `json:"selectedAlternativeProduct,omitempty"`
	OriginalProductStruckOut   bool             `json:"originalProductStruckOut"`
	OriginalPriceBeforeSwap    *decimal.Decimal `json:"originalPriceBeforeSwap,omitempty"`
}

type TermsLine struct {
	UnitID          string           `json:"unitId" validate:"required,uuid"`
	Price           decimal.Decimal  `json:"price"`
	OriginalPrice   *decimal.Decimal `json:"originalPrice,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
}

type Proposal struct {
	ID              string          `json:"id"`
	ProposedBy      string          `json:"proposedBy"`
	ProposerRole    string          `json:"proposerRole"`
	ProposedDate    time.Time       `json:"proposedDate"`
	Price           decimal.Decimal `json:"price"`
	Products        []TermsLine     `json:"products"`
	DeliveryTerms   string          `json:"deliveryTerms,omitempty"`
	AdditionalTerms string          `json:"additionalTerms,omitempty"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	Status          string          `json:"status"`
}

type FinalTerms struct {
	Price           decimal.Decimal `json:"price"`
	Products        []TermsLine     `json:"products"`
	DeliveryTerms   string          `json:"deliveryTerms,omitempty"`
	AdditionalTerms string          `json:"additionalTerms,omitempty"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	AcceptedDate    time.Time       `json:"acceptedDate"`
}

type Negotiation struct {
	StartDate     *time.Time  `json:"startDate,omitempty"`
	EndDate       *time.Time  `json:"endDate,omitempty"`
	ProposedTerms []Proposal  `json:"proposedTerms"`
	FinalTerms    *FinalTerms `json:"finalTerms,omitempty"`
}

type Payment struct {
	InvoiceFile      string     `json:"invoiceFile,omitempty"`
	InvoiceAccepted  bool       `json:"invoiceAccepted"`
	InvoiceRejection string     `json:"invoiceRejection,omitempty"`
	PaymentReference string     `json:"paymentReference,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
}

type Shipping struct {
	Cost           decimal.Decimal `json:"cost"`
	Address        Address         `json:"shippingAddress"`
	TrackingNumber string          `json:"trackingNumber,omitempty"`
	Carrier        string          `json:"carrier,omitempty"`
	ShippedAt      *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt    *time.Time      `json:"deliveredAt,omitempty"`
}

type Activity struct {
	Action      string    `json:"action"`
	PerformedBy string    `json:"performedBy"`
	Details     string    `json:"details"`
	Timestamp   time.Time `json:"timestamp"`
}

type Deal struct {
	ID                    string          `json:"id"`
	Number                string          `json:"dealNumber"`
	Type                  string          `json:"dealType"`
	Stage                 string          `json:"stage"`
	Status                string          `json:"status"`
	Products              []LineItem      `json:"products"`
	Amount                decimal.Decimal `json:"amount"`
	Fee                   decimal.Decimal `json:"fee"`
	BuyerID               string          `json:"buyerId,omitempty"`
	BuyerCompanyID        string          `json:"buyerCompanyId,omitempty"`
	SellerID              string          `json:"sellerId,omitempty"`
	SellerCompanyID       string          `json:"sellerCompanyId,omitempty"`
	IntermediaryCompanyID string          `json:"intermediaryCompanyId,omitempty"`
	PairedDealID          string          `json:"pairedDealId,omitempty"`
	PairedDealIDs         []string        `json:"pairedDealIds"`
	Negotiation           Negotiation     `json:"negotiation"`
	Payment               Payment         `json:"payment"`
	Shipping              Shipping        `json:"shipping"`
	Notes                 string          `json:"notes,omitempty"`
	RejectionReason       string          `json:"rejectionReason,omitempty"`
	ActivityLog           []Activity      `json:"activityLog"`
	CreatedAt             time.Time       `json:"createdAt"`
	LastActionAt          time.Time       `json:"lastActionAt"`
	CompletedAt           *time.Time      `json:"completedAt,omitempty"`
}

type DealView struct {
	Deal           Deal     `json:"deal"`
	UserRole       string   `json:"userRole"`
	AllowedActions []string `json:"allowedActions"`
	IsDirectDeal   bool     `json:"isDirectDeal"`
	CanEdit        bool     `json:"canEdit"`
}

type DealList struct {
	Deals []DealView `json:"deals"`
}

type DashboardEntry struct {
	Deal             Deal   `json:"deal"`
	Classification   string `json:"classification"`
	CounterpartyName string `json:"counterpartyCompany,omitempty"`
	LinkedDealNumber string `json:"linkedDealNumber,omitempty"`
}

type Dashboard struct {
	Entries []DashboardEntry `json:"entries"`
}

type PairingReport struct {
	BuyerDealID          string   `json:"buyerDealId"`
	OK                   bool     `json:"ok"`
	MissingBackLinks     []string `json:"missingBackLinks"`
	DanglingIDs          []string `json:"danglingIds"`
	ForeignLinks         []string `json:"foreignLinks"`
	UnlistedAlternatives []string `json:"unlistedAlternatives"`
}

type InitiateDealRequest struct {
	CartItemIDs     []string `json:"cartItemIds" validate:"required,min=1,dive,uuid"`
	ShippingAddress Address  `json:"shippingAddress"`
}

type InitiateDealResponse struct {
	BuyerDeal          DealView `json:"buyerDeal"`
	SellerDealIDs      []string `json:"sellerDealIds"`
	AlternativeDealIDs []string `json:"alternativeDealIds"`
}

type ProposeTermsRequest struct {
	Price           decimal.Decimal  `json:"price"`
	DeliveryTerms   string           `json:"deliveryTerms"`
	AdditionalTerms string           `json:"additionalTerms"`
	ShippingCost    *decimal.Decimal `json:"shippingCost"`
}

type AcceptTermsRequest struct {
	ProposalID string `json:"proposalId" validate:"required,uuid"`
}

type FinalTermsRequest struct {
	Price           decimal.Decimal `json:"price"`
	Products        []TermsLine     `json:"products" validate:"dive"`
	DeliveryTerms   string          `json:"deliveryTerms"`
	AdditionalTerms string          `json:"additionalTerms"`
}

type ChangeStageRequest struct {
	Stage        string             `json:"stage"`
	Status       string             `json:"status"`
	ShippingCost *decimal.Decimal   `json:"shippingCost"`
	Notes        string             `json:"notes"`
	FinalTerms   *FinalTermsRequest `json:"finalTerms"`
}

type SelectAlternativeRequest struct {
	UnitID            string `json:"unitId" validate:"required,uuid"`
	AlternativeUnitID string `json:"alternativeUnitId" validate:"required,uuid"`
}

type UploadInvoiceRequest struct {
	FileName string `json:"fileName" validate:"required"`
}

type ReviewInvoiceRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason"`
}

type ConfirmPaymentRequest struct {
	Reference string `json:"reference"`
}

type AddTrackingRequest struct {
	TrackingNumber string `json:"trackingNumber" validate:"required"`
	Carrier        string `json:"carrier"`
}
