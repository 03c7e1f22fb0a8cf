package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/internal/worker"
)

type pairingService struct {
	mu         sync.Mutex
	ids        []uuid.UUID
	broken     map[uuid.UUID]bool
	failing    map[uuid.UUID]bool
	reconciled []uuid.UUID
}

func (s *pairingService) OpenBuyerDealIDs(_ context.Context, page deal.Page) ([]uuid.UUID, error) {
	if page.Offset >= len(s.ids) {
		return nil, nil
	}
	end := min(page.Offset+page.Limit, len(s.ids))

	return s.ids[page.Offset:end], nil
}

func (s *pairingService) VerifyPairingIntegrity(_ context.Context, id uuid.UUID) (entity.PairingReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing[id] {
		return entity.PairingReport{}, errors.New("storage unavailable")
	}

	report := entity.PairingReport{BuyerDealID: id}
	if s.broken[id] {
		report.DanglingIDs = []uuid.UUID{uuid.New()}
	}

	return report, nil
}

func (s *pairingService) ReconcilePairing(_ context.Context, id uuid.UUID) (entity.PairingReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reconciled = append(s.reconciled, id)
	delete(s.broken, id)

	return entity.PairingReport{BuyerDealID: id}, nil
}

func TestPairingReconciler_RunOnce(t *testing.T) {
	rq := require.New(t)

	ids := make([]uuid.UUID, 250)
	for i := range ids {
		ids[i] = uuid.New()
	}

	svc := &pairingService{
		ids:     ids,
		broken:  map[uuid.UUID]bool{ids[3]: true, ids[180]: true},
		failing: map[uuid.UUID]bool{ids[7]: true},
	}

	w := worker.NewPairingReconciler(svc).WithRateControl(0)
	w.RunOnce(context.Background())

	stats := w.Stats()
	rq.Equal(1, stats.Cycles)
	rq.Equal(250, stats.Checked)
	rq.Equal(2, stats.Repaired)
	rq.Equal(1, stats.Failed)
	rq.ElementsMatch([]uuid.UUID{ids[3], ids[180]}, svc.reconciled)
	rq.False(stats.Running)
}

func TestPairingReconciler_StartStop(t *testing.T) {
	rq := require.New(t)

	svc := &pairingService{ids: []uuid.UUID{uuid.New()}}
	w := worker.NewPairingReconciler(svc).WithInterval(time.Hour).WithRateControl(0)

	rq.NoError(w.Start(context.Background()))
	rq.True(w.IsRunning())
	rq.Error(w.Start(context.Background()))

	rq.Eventually(func() bool { return w.Stats().Cycles == 1 }, time.Second, 10*time.Millisecond)

	w.Stop()
	rq.False(w.IsRunning())

	w.Stop()
}
