package telemetry_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"gem_market/internal/domain/value"
	"gem_market/internal/infrastructure/telemetry"
)

func TestRecorder(t *testing.T) {
	rq := require.New(t)
	reg := prometheus.NewRegistry()
	r := telemetry.NewRecorder(reg)

	r.DealInitiated()
	r.DealTransition(value.DealTypeBuyerToIntermediary, value.StageCompleted)
	r.DealTransition(value.DealTypeBuyerToIntermediary, value.StageCompleted)
	r.DealTransition(value.DealTypeIntermediaryToSeller, value.StageCancelled)
	r.SideEffectFailure("inventory")

	rq.Equal(2, testutil.CollectAndCount(reg, "gem_market_deal_transitions_total"))

	rq.NoError(testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP gem_market_deal_transitions_total Deal stage transitions by deal type and target stage.
# TYPE gem_market_deal_transitions_total counter
gem_market_deal_transitions_total{deal_type="buyer-to-intermediary",stage="completed"} 2
gem_market_deal_transitions_total{deal_type="intermediary-to-seller",stage="cancelled"} 1
# HELP gem_market_deals_initiated_total Buyer deals initiated from a cart.
# TYPE gem_market_deals_initiated_total counter
gem_market_deals_initiated_total 1
# HELP gem_market_side_effect_failures_total Best-effort side effects that failed after the main change was saved.
# TYPE gem_market_side_effect_failures_total counter
gem_market_side_effect_failures_total{kind="inventory"} 1
`)))
}
