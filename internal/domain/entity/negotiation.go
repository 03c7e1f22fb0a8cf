package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gem_market/internal/domain/value"
)

type ProposalStatus string

const (
	ProposalStatusProposed   ProposalStatus = "proposed"
	ProposalStatusAccepted   ProposalStatus = "accepted"
	ProposalStatusSuperseded ProposalStatus = "superseded"
)

// Negotiation история предложений. Proposals и Decisions только дополняются,
// статус предложения и итоговые условия вычисляются из них.
type Negotiation struct {
	StartedAt  *time.Time  `json:"startDate,omitempty"`
	EndedAt    *time.Time  `json:"endDate,omitempty"`
	Proposals  []Proposal  `json:"proposedTerms"`
	Decisions  []Decision  `json:"decisions"`
	FinalTerms *FinalTerms `json:"finalTerms,omitempty"`
}

type Proposal struct {
	ID              uuid.UUID       `json:"id"`
	ProposedBy      uuid.UUID       `json:"proposedBy"`
	ProposerRole    value.Role      `json:"proposerRole"`
	ProposedAt      time.Time       `json:"proposedDate"`
	Price           decimal.Decimal `json:"price"`
	Lines           []TermsLine     `json:"products"`
	DeliveryTerms   string          `json:"deliveryTerms,omitempty"`
	AdditionalTerms string          `json:"additionalTerms,omitempty"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
}

type TermsLine struct {
	UnitID          uuid.UUID       `json:"product"`
	Price           decimal.Decimal `json:"price"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

type Decision struct {
	ProposalID uuid.UUID      `json:"proposalId"`
	Status     ProposalStatus `json:"status"`
	DecidedBy  uuid.UUID      `json:"decidedBy"`
	DecidedAt  time.Time      `json:"decidedAt"`
}

type FinalTerms struct {
	Price           decimal.Decimal `json:"price"`
	Lines           []TermsLine     `json:"products"`
	DeliveryTerms   string          `json:"deliveryTerms,omitempty"`
	AdditionalTerms string          `json:"additionalTerms,omitempty"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	AcceptedAt      time.Time       `json:"acceptedDate"`
}

func (n Negotiation) Proposal(id uuid.UUID) (Proposal, bool) {
	for _, p := range n.Proposals {
		if p.ID == id {
			return p, true
		}
	}

	return Proposal{}, false
}

// LastProposal последнее поданное предложение.
func (n Negotiation) LastProposal() (Proposal, bool) {
	if len(n.Proposals) == 0 {
		return Proposal{}, false
	}

	return n.Proposals[len(n.Proposals)-1], true
}

// StatusOf статус предложения с учётом решений и более поздних предложений.
func (n Negotiation) StatusOf(id uuid.UUID) ProposalStatus {
	for i := len(n.Decisions) - 1; i >= 0; i-- {
		if n.Decisions[i].ProposalID == id {
			return n.Decisions[i].Status
		}
	}

	last, ok := n.LastProposal()
	if ok && last.ID != id {
		return ProposalStatusSuperseded
	}

	return ProposalStatusProposed
}

// ActiveProposal последнее предложение, по которому ещё нет решения.
func (n Negotiation) ActiveProposal() (Proposal, bool) {
	last, ok := n.LastProposal()
	if !ok || n.StatusOf(last.ID) != ProposalStatusProposed {
		return Proposal{}, false
	}

	return last, true
}

func (p Proposal) Terms(at time.Time) FinalTerms {
	return FinalTerms{
		Price:           p.Price,
		Lines:           append([]TermsLine(nil), p.Lines...),
		DeliveryTerms:   p.DeliveryTerms,
		AdditionalTerms: p.AdditionalTerms,
		ShippingCost:    p.ShippingCost,
		AcceptedAt:      at,
	}
}
