// Package transition проверяет допустимость переходов между стадиями и статусами сделки.
package transition

import "gem_market/internal/domain/value"

//nolint:gochecknoglobals
var statusGraph = map[value.Stage]map[value.Status][]value.Status{
	value.StageRequest: {
		value.StatusPending:  {value.StatusApproved, value.StatusRejected},
		value.StatusApproved: {value.StatusNegotiating},
	},
	value.StageNegotiation: {
		value.StatusNegotiating: {
			value.StatusTermsProposed,
			value.StatusSellerCounterOffer,
			value.StatusSellerFinalOffer,
			value.StatusAwaitingInvoice,
		},
		value.StatusTermsProposed: {
			value.StatusSellerCounterOffer,
			value.StatusSellerFinalOffer,
			value.StatusAwaitingInvoice,
		},
		value.StatusSellerCounterOffer: {
			value.StatusTermsProposed,
			value.StatusSellerFinalOffer,
			value.StatusAwaitingInvoice,
		},
		value.StatusSellerFinalOffer: {value.StatusAwaitingInvoice},
	},
	value.StagePaymentDelivery: {
		value.StatusAwaitingInvoice: {value.StatusInvoicePending},
		value.StatusInvoicePending:  {value.StatusAwaitingInvoice, value.StatusAwaitingPayment},
		value.StatusAwaitingPayment: {value.StatusPaymentReceived},
		value.StatusPaymentReceived: {value.StatusShipped},
		value.StatusShipped:         {value.StatusCompleted},
	},
}

// IsValidStageTransition разрешает отмену из любой стадии и движение строго вперёд.
func IsValidStageTransition(current, next value.Stage) bool {
	if next == value.StageCancelled {
		return true
	}

	currentIndex, nextIndex := current.Index(), next.Index()
	if currentIndex < 0 || nextIndex < 0 {
		return false
	}

	return nextIndex > currentIndex
}

// IsValidStatusTransition проверяет смену статуса current -> next при переходе
// из стадии currentStage в targetStage. Для смены статуса внутри стадии
// targetStage совпадает с currentStage.
func IsValidStatusTransition(currentStage, targetStage value.Stage, current, next value.Status) bool {
	if next == value.StatusCancelled {
		return true
	}

	if currentStage == value.StageNegotiation && targetStage == value.StagePaymentDelivery {
		return current.BelongsTo(value.StageNegotiation) && next == value.StatusAwaitingInvoice
	}

	if targetStage == value.StageNegotiation && current == value.StatusPending {
		return next == value.StatusNegotiating
	}

	for _, allowed := range statusGraph[currentStage][current] {
		if allowed == next {
			return true
		}
	}

	return false
}

// IsValidMove полная проверка перехода в пару (targetStage, next): обе
// проверки выше плюс принадлежность статуса стадии.
func IsValidMove(currentStage, targetStage value.Stage, current, next value.Status) bool {
	if targetStage != currentStage && !IsValidStageTransition(currentStage, targetStage) {
		return false
	}

	if !next.BelongsTo(targetStage) {
		return false
	}

	if next == current {
		return false
	}

	return IsValidStatusTransition(currentStage, targetStage, current, next)
}
