package server

import (
	"fmt"

	"git.appkode.ru/pub/go/failure"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/lox"
	"gem_market/pkg/rest"
)

func optionalID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func idStrings(ids []uuid.UUID) []string {
	return lo.Map(ids, func(id uuid.UUID, _ int) string { return id.String() })
}

func newRESTAddress(a entity.Address) rest.Address {
	return rest.Address{
		Recipient:  a.Recipient,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func newDomainAddress(a rest.Address) entity.Address {
	return entity.Address{
		Recipient:  a.Recipient,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func newRESTTermsLines(lines []entity.TermsLine) []rest.TermsLine {
	return lo.Map(lines, func(l entity.TermsLine, _ int) rest.TermsLine {
		original, discount := l.OriginalPrice, l.DiscountPercent
		return rest.TermsLine{
			UnitID:          l.UnitID.String(),
			Price:           l.Price,
			OriginalPrice:   &original,
			DiscountPercent: &discount,
		}
	})
}

func newRESTNegotiation(n entity.Negotiation) rest.Negotiation {
	out := rest.Negotiation{
		StartDate: n.StartedAt,
		EndDate:   n.EndedAt,
		ProposedTerms: lo.Map(n.Proposals, func(p entity.Proposal, _ int) rest.Proposal {
			return rest.Proposal{
				ID:              p.ID.String(),
				ProposedBy:      p.ProposedBy.String(),
				ProposerRole:    p.ProposerRole.String(),
				ProposedDate:    p.ProposedAt,
				Price:           p.Price,
				Products:        newRESTTermsLines(p.Lines),
				DeliveryTerms:   p.DeliveryTerms,
				AdditionalTerms: p.AdditionalTerms,
				ShippingCost:    p.ShippingCost,
				Status:          string(n.StatusOf(p.ID)),
			}
		}),
	}

	if t := n.FinalTerms; t != nil {
		out.FinalTerms = &rest.FinalTerms{
			Price:           t.Price,
			Products:        newRESTTermsLines(t.Lines),
			DeliveryTerms:   t.DeliveryTerms,
			AdditionalTerms: t.AdditionalTerms,
			ShippingCost:    t.ShippingCost,
			AcceptedDate:    t.AcceptedAt,
		}
	}

	return out
}

func newRESTDeal(d *entity.Deal) rest.Deal {
	return rest.Deal{
		ID:     d.ID.String(),
		Number: d.Number,
		Type:   d.Type.String(),
		Stage:  d.Stage.String(),
		Status: d.Status.String(),
		Products: lo.Map(d.Items, func(item entity.LineItem, _ int) rest.LineItem {
			li := rest.LineItem{
				UnitID:                     item.UnitID.String(),
				Price:                      item.Price,
				SelectedAlternativeProduct: optionalID(item.SelectedAlternative),
				OriginalProductStruckOut:   item.StruckOut,
				SuggestedAlternatives: lo.Map(item.Alternatives, func(a entity.Alternative, _ int) rest.Alternative {
					return rest.Alternative{UnitID: a.UnitID.String(), PairedDealID: optionalID(a.PairedDealID)}
				}),
			}
			if item.OriginalPriceBeforeSwap.Valid {
				li.OriginalPriceBeforeSwap = &item.OriginalPriceBeforeSwap.Decimal
			}
			return li
		}),
		Amount:                d.Amount,
		Fee:                   d.Fee,
		BuyerID:               optionalID(d.BuyerID),
		BuyerCompanyID:        optionalID(d.BuyerCompanyID),
		SellerID:              optionalID(d.SellerID),
		SellerCompanyID:       optionalID(d.SellerCompanyID),
		IntermediaryCompanyID: optionalID(d.IntermediaryCompanyID),
		PairedDealID:          optionalID(d.PairedDealID),
		PairedDealIDs:         idStrings(d.PairedDealIDs),
		Negotiation:           newRESTNegotiation(d.Negotiation),
		Payment: rest.Payment{
			InvoiceFile:      d.Payment.InvoiceFile,
			InvoiceAccepted:  d.Payment.InvoiceAccepted,
			InvoiceRejection: d.Payment.InvoiceRejection,
			PaymentReference: d.Payment.PaymentReference,
			PaidAt:           d.Payment.PaidAt,
		},
		Shipping: rest.Shipping{
			Cost:           d.Shipping.Cost,
			Address:        newRESTAddress(d.Shipping.Address),
			TrackingNumber: d.Shipping.TrackingNumber,
			Carrier:        d.Shipping.Carrier,
			ShippedAt:      d.Shipping.ShippedAt,
			DeliveredAt:    d.Shipping.DeliveredAt,
		},
		Notes:           d.Notes,
		RejectionReason: d.Request.RejectionReason,
		ActivityLog: lo.Map(d.Activity, func(a entity.Activity, _ int) rest.Activity {
			return rest.Activity{
				Action:      string(a.Action),
				PerformedBy: a.PerformedBy.String(),
				Details:     a.Details,
				Timestamp:   a.At,
			}
		}),
		CreatedAt:    d.CreatedAt,
		LastActionAt: d.LastActionAt,
		CompletedAt:  d.CompletedAt,
	}
}

func newRESTDealView(v entity.DealView) rest.DealView {
	return rest.DealView{
		Deal:     newRESTDeal(v.Deal),
		UserRole: v.UserRole.String(),
		AllowedActions: lo.Map(v.AllowedActions, func(a value.Action, _ int) string {
			return string(a)
		}),
		IsDirectDeal: v.IsDirect,
		CanEdit:      v.CanEdit,
	}
}

func newRESTDealList(views []entity.DealView) rest.DealList {
	return rest.DealList{Deals: lo.Map(views, func(v entity.DealView, _ int) rest.DealView {
		return newRESTDealView(v)
	})}
}

func newRESTDashboard(entries []entity.DashboardEntry) rest.Dashboard {
	return rest.Dashboard{Entries: lo.Map(entries, func(e entity.DashboardEntry, _ int) rest.DashboardEntry {
		return rest.DashboardEntry{
			Deal:             newRESTDeal(e.Deal),
			Classification:   string(e.Kind),
			CounterpartyName: e.CounterpartyName,
			LinkedDealNumber: e.LinkedDealNumber,
		}
	})}
}

func newRESTPairingReport(r entity.PairingReport) rest.PairingReport {
	return rest.PairingReport{
		BuyerDealID:          r.BuyerDealID.String(),
		OK:                   r.OK(),
		MissingBackLinks:     idStrings(r.MissingBackLinks),
		DanglingIDs:          idStrings(r.DanglingIDs),
		ForeignLinks:         idStrings(r.ForeignLinks),
		UnlistedAlternatives: idStrings(r.UnlistedAlternatives),
	}
}

func newRESTInitiateResponse(r deal.InitiateResult) rest.InitiateDealResponse {
	return rest.InitiateDealResponse{
		BuyerDeal:          newRESTDealView(r.BuyerDeal),
		SellerDealIDs:      idStrings(r.SellerDealIDs),
		AlternativeDealIDs: idStrings(r.AlternativeDealIDs),
	}
}

func parseID(raw string, code failure.ErrorCode) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, failure.NewInvalidArgumentError(
			fmt.Errorf("uuid.Parse: %w", err).Error(),
			failure.WithCode(code),
			failure.WithDescription("invalid identifier "+raw),
		)
	}

	return id, nil
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	return lox.MapErr(raw, func(r string) (uuid.UUID, error) {
		return parseID(r, errcodes.ValidationError)
	})
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func newDomainInitiate(r rest.InitiateDealRequest) (deal.InitiateRequest, error) {
	ids, err := parseIDs(r.CartItemIDs)
	if err != nil {
		return deal.InitiateRequest{}, err
	}

	return deal.InitiateRequest{
		CartItemIDs:     ids,
		ShippingAddress: newDomainAddress(r.ShippingAddress),
	}, nil
}

func newDomainPropose(r rest.ProposeTermsRequest) deal.ProposeRequest {
	return deal.ProposeRequest{
		Price:           r.Price,
		DeliveryTerms:   r.DeliveryTerms,
		AdditionalTerms: r.AdditionalTerms,
		ShippingCost:    nullDecimal(r.ShippingCost),
	}
}

func newDomainChangeStage(r rest.ChangeStageRequest) (deal.ChangeStageRequest, error) {
	out := deal.ChangeStageRequest{
		ShippingCost: nullDecimal(r.ShippingCost),
		Notes:        r.Notes,
	}

	if r.Stage != "" {
		stage, err := value.ParseStage(r.Stage)
		if err != nil {
			return deal.ChangeStageRequest{}, invalidArgument(err, "unknown stage "+r.Stage)
		}
		out.Stage = stage
	}

	if r.Status != "" {
		status, err := value.ParseStatus(r.Status)
		if err != nil {
			return deal.ChangeStageRequest{}, invalidArgument(err, "unknown status "+r.Status)
		}
		out.Status = status
	}

	if t := r.FinalTerms; t != nil {
		lines := make([]deal.TermsLineInput, 0, len(t.Products))
		for _, p := range t.Products {
			id, err := parseID(p.UnitID, errcodes.InvalidFinalTerms)
			if err != nil {
				return deal.ChangeStageRequest{}, err
			}
			lines = append(lines, deal.TermsLineInput{UnitID: id, Price: p.Price})
		}

		out.FinalTerms = &deal.FinalTermsInput{
			Price:           t.Price,
			Lines:           lines,
			DeliveryTerms:   t.DeliveryTerms,
			AdditionalTerms: t.AdditionalTerms,
		}
	}

	return out, nil
}

func newDomainSelectAlternative(r rest.SelectAlternativeRequest) (deal.SelectAlternativeRequest, error) {
	unitID, err := parseID(r.UnitID, errcodes.ValidationError)
	if err != nil {
		return deal.SelectAlternativeRequest{}, err
	}

	alternativeID, err := parseID(r.AlternativeUnitID, errcodes.ValidationError)
	if err != nil {
		return deal.SelectAlternativeRequest{}, err
	}

	return deal.SelectAlternativeRequest{UnitID: unitID, AlternativeUnitID: alternativeID}, nil
}

func invalidArgument(err error, description string) error {
	return failure.NewInvalidArgumentError(
		err.Error(),
		failure.WithCode(errcodes.ValidationError),
		failure.WithDescription(description),
	)
}
