package role

import (
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/value"
)

// AllowedActions действия, доступные роли в текущем состоянии сделки.
func AllowedActions(deal *entity.Deal, r value.Role, direct bool) []value.Action {
	if r == value.RoleNone || deal.IsTerminal() {
		return []value.Action{}
	}

	if direct && r == value.RoleIntermediaryDual {
		return dualRoleActions(deal)
	}

	buyer := r == value.RoleBuyer || r == value.RoleIntermediaryBuyer
	seller := r == value.RoleSeller || r == value.RoleIntermediarySeller

	var actions []value.Action

	switch deal.Stage {
	case value.StageRequest:
		if seller {
			actions = append(actions, value.ActionApproveRequest, value.ActionRejectRequest)
		}
		actions = append(actions, value.ActionCancelDeal)
	case value.StageNegotiation:
		if buyer {
			actions = append(actions, value.ActionSubmitProposal, value.ActionAcceptTerms, value.ActionMoveToPayment)
		}
		if seller {
			actions = append(actions, value.ActionCounterOffer, value.ActionRejectNegotiation, value.ActionAcceptTerms)
		}
		actions = append(actions, value.ActionCancelDeal)
	case value.StagePaymentDelivery:
		switch {
		case deal.Status == value.StatusAwaitingInvoice && seller:
			actions = append(actions, value.ActionUploadInvoice)
		case deal.Status == value.StatusInvoicePending && buyer:
			actions = append(actions, value.ActionAcceptInvoice, value.ActionRejectInvoice)
		case deal.Status == value.StatusAwaitingPayment && seller:
			actions = append(actions, value.ActionConfirmPayment)
		case deal.Status == value.StatusPaymentReceived && seller:
			actions = append(actions, value.ActionAddTracking)
		case deal.Status == value.StatusShipped && buyer:
			actions = append(actions, value.ActionConfirmDelivery)
		}
		if deal.Status != value.StatusShipped {
			actions = append(actions, value.ActionCancelDeal)
		}
	}

	if actions == nil {
		return []value.Action{}
	}

	return actions
}

func dualRoleActions(deal *entity.Deal) []value.Action {
	switch deal.Stage {
	case value.StageRequest:
		return []value.Action{value.ActionApproveRequest, value.ActionRejectRequest, value.ActionCancelDeal}
	case value.StageNegotiation:
		return []value.Action{
			value.ActionSubmitProposal,
			value.ActionCounterOffer,
			value.ActionAcceptTerms,
			value.ActionMoveToPayment,
			value.ActionCancelDeal,
		}
	case value.StagePaymentDelivery:
		var actions []value.Action
		switch deal.Status {
		case value.StatusAwaitingInvoice:
			actions = append(actions, value.ActionUploadInvoice)
		case value.StatusInvoicePending:
			actions = append(actions, value.ActionAcceptInvoice, value.ActionRejectInvoice)
		case value.StatusAwaitingPayment:
			actions = append(actions, value.ActionConfirmPayment)
		case value.StatusPaymentReceived:
			actions = append(actions, value.ActionAddTracking)
		case value.StatusShipped:
			actions = append(actions, value.ActionConfirmDelivery)
		}
		if deal.Status != value.StatusShipped {
			actions = append(actions, value.ActionCancelDeal)
		}
		return actions
	default:
		return []value.Action{}
	}
}

// View собирает проекцию сделки для пользователя.
func View(deal *entity.Deal, identity entity.Identity) entity.DealView {
	direct := deal.IsDirect()
	r := Resolve(deal, identity.UserID, identity.Privileged, direct)

	return entity.DealView{
		Deal:           deal,
		UserRole:       r,
		AllowedActions: AllowedActions(deal, r, direct),
		IsDirect:       direct,
		CanEdit:        CanEdit(deal, r),
	}
}
