package transition_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"gem_market/internal/domain/service/transition"
	"gem_market/internal/domain/value"
)

func genStage() gopter.Gen {
	stages := make([]any, 0, len(value.StageOrder))
	for _, s := range value.StageOrder {
		stages = append(stages, s)
	}

	return gen.OneConstOf(stages...)
}

func allStatuses() []value.Status {
	var statuses []value.Status
	for _, stage := range value.StageOrder {
		statuses = append(statuses, value.StatusesOf(stage)...)
	}

	return statuses
}

func genStatus() gopter.Gen {
	statuses := allStatuses()
	values := make([]any, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, s)
	}

	return gen.OneConstOf(values...)
}

func TestStageTransitionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("valid iff cancelled or strictly forward", prop.ForAll(
		func(a, b value.Stage) bool {
			expected := b == value.StageCancelled || b.Index() > a.Index()
			return transition.IsValidStageTransition(a, b) == expected
		},
		genStage(), genStage(),
	))

	properties.Property("never regresses", prop.ForAll(
		func(a, b value.Stage) bool {
			if b == value.StageCancelled || b.Index() > a.Index() {
				return true
			}
			return !transition.IsValidStageTransition(a, b)
		},
		genStage(), genStage(),
	))

	properties.TestingRun(t)
}

func TestStatusTransitionProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("cancelled is always reachable", prop.ForAll(
		func(a, b value.Stage, s value.Status) bool {
			return transition.IsValidStatusTransition(a, b, s, value.StatusCancelled)
		},
		genStage(), genStage(), genStatus(),
	))

	properties.Property("negotiation to payment lands on awaiting_invoice", prop.ForAll(
		func(s value.Status) bool {
			for _, next := range allStatuses() {
				ok := transition.IsValidStatusTransition(value.StageNegotiation, value.StagePaymentDelivery, s, next)
				if next == value.StatusCancelled {
					continue
				}
				expected := next == value.StatusAwaitingInvoice
				if ok != expected {
					return false
				}
			}
			return true
		},
		gen.OneConstOf(
			value.StatusNegotiating,
			value.StatusTermsProposed,
			value.StatusSellerCounterOffer,
			value.StatusSellerFinalOffer,
		),
	))

	properties.Property("valid move keeps status inside its stage", prop.ForAll(
		func(a, b value.Stage, s, next value.Status) bool {
			if !transition.IsValidMove(a, b, s, next) {
				return true
			}
			return next.BelongsTo(b)
		},
		genStage(), genStage(), genStatus(), genStatus(),
	))

	properties.TestingRun(t)
}

func TestIsValidStatusTransition(t *testing.T) {
	testCases := []struct {
		name         string
		currentStage value.Stage
		targetStage  value.Stage
		current      value.Status
		next         value.Status
		expected     bool
	}{
		{
			name:         "request approve",
			currentStage: value.StageRequest,
			targetStage:  value.StageRequest,
			current:      value.StatusPending,
			next:         value.StatusApproved,
			expected:     true,
		},
		{
			name:         "pending into negotiation must be negotiating",
			currentStage: value.StageRequest,
			targetStage:  value.StageNegotiation,
			current:      value.StatusPending,
			next:         value.StatusTermsProposed,
			expected:     false,
		},
		{
			name:         "pending into negotiation",
			currentStage: value.StageRequest,
			targetStage:  value.StageNegotiation,
			current:      value.StatusPending,
			next:         value.StatusNegotiating,
			expected:     true,
		},
		{
			name:         "rejected is a dead end",
			currentStage: value.StageRequest,
			targetStage:  value.StageNegotiation,
			current:      value.StatusRejected,
			next:         value.StatusNegotiating,
			expected:     false,
		},
		{
			name:         "final offer cannot be countered",
			currentStage: value.StageNegotiation,
			targetStage:  value.StageNegotiation,
			current:      value.StatusSellerFinalOffer,
			next:         value.StatusTermsProposed,
			expected:     false,
		},
		{
			name:         "invoice rejected",
			currentStage: value.StagePaymentDelivery,
			targetStage:  value.StagePaymentDelivery,
			current:      value.StatusInvoicePending,
			next:         value.StatusAwaitingInvoice,
			expected:     true,
		},
		{
			name:         "skip payment",
			currentStage: value.StagePaymentDelivery,
			targetStage:  value.StagePaymentDelivery,
			current:      value.StatusAwaitingInvoice,
			next:         value.StatusPaymentReceived,
			expected:     false,
		},
		{
			name:         "shipped to completed",
			currentStage: value.StagePaymentDelivery,
			targetStage:  value.StageCompleted,
			current:      value.StatusShipped,
			next:         value.StatusCompleted,
			expected:     true,
		},
		{
			name:         "cancel from shipped",
			currentStage: value.StagePaymentDelivery,
			targetStage:  value.StageCancelled,
			current:      value.StatusShipped,
			next:         value.StatusCancelled,
			expected:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			rq.Equal(tc.expected, transition.IsValidStatusTransition(tc.currentStage, tc.targetStage, tc.current, tc.next))
		})
	}
}

func TestIsValidMove(t *testing.T) {
	rq := require.New(t)

	rq.True(transition.IsValidMove(value.StagePaymentDelivery, value.StageCompleted, value.StatusShipped, value.StatusCompleted))
	rq.False(transition.IsValidMove(value.StagePaymentDelivery, value.StageCompleted, value.StatusPaymentReceived, value.StatusCompleted))
	rq.False(transition.IsValidMove(value.StageNegotiation, value.StageRequest, value.StatusNegotiating, value.StatusPending))
	rq.False(transition.IsValidMove(value.StageNegotiation, value.StagePaymentDelivery, value.StatusNegotiating, value.StatusShipped))
	rq.True(transition.IsValidMove(value.StageRequest, value.StageCancelled, value.StatusPending, value.StatusCancelled))
	rq.False(transition.IsValidMove(value.StageRequest, value.StageRequest, value.StatusPending, value.StatusPending))
}
