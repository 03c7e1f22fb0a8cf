package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/pkg/logx"
)

const pageSize = 100

type PairingService interface {
	OpenBuyerDealIDs(ctx context.Context, page deal.Page) ([]uuid.UUID, error)
	VerifyPairingIntegrity(ctx context.Context, dealID uuid.UUID) (entity.PairingReport, error)
	ReconcilePairing(ctx context.Context, dealID uuid.UUID) (entity.PairingReport, error)
}

// ReconcilerStats состояние фоновой сверки для админ-бота.
type ReconcilerStats struct {
	Running     bool
	Cycles      int
	Checked     int
	Repaired    int
	Failed      int
	LastCycleAt time.Time
}

// PairingReconciler периодически проверяет связи между сделкой покупателя
// и сделками поставщиков и чинит расхождения.
type PairingReconciler struct {
	service PairingService

	interval        time.Duration
	requestInterval time.Duration
	lastRequest     time.Time

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
	stats      ReconcilerStats
}

func NewPairingReconciler(service PairingService) *PairingReconciler {
	return &PairingReconciler{
		service:         service,
		interval:        5 * time.Minute,
		requestInterval: 50 * time.Millisecond,
	}
}

func (w *PairingReconciler) WithInterval(interval time.Duration) *PairingReconciler {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// WithRateControl ограничивает частоту обращений к хранилищу.
func (w *PairingReconciler) WithRateControl(requestInterval time.Duration) *PairingReconciler {
	w.requestInterval = requestInterval
	return w
}

func (w *PairingReconciler) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("reconciler is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("pairing reconciler stopped", logx.Error(err))
		}
	}()

	return nil
}

func (w *PairingReconciler) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *PairingReconciler) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

func (w *PairingReconciler) Stats() ReconcilerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats := w.stats
	stats.Running = w.isRunning

	return stats
}

func (w *PairingReconciler) Run(ctx context.Context) error {
	logger(ctx).Info("pairing reconciler started", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.RunOnce(ctx)

		select {
		case <-ctx.Done():
			logger(ctx).Info("pairing reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce один полный проход по открытым сделкам покупателей.
func (w *PairingReconciler) RunOnce(ctx context.Context) {
	var checked, repaired, failed int

	for offset := 0; ; offset += pageSize {
		ids, err := w.service.OpenBuyerDealIDs(ctx, deal.Page{Limit: pageSize, Offset: offset})
		if err != nil {
			logger(ctx).Error("failed to list open deals", logx.Error(err))
			failed++
			break
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				w.record(checked, repaired, failed)
				return
			}

			fixed, err := w.checkOne(ctx, id)
			checked++
			if err != nil {
				failed++
				logger(ctx).Error("pairing check failed", slog.String(logx.FieldDealID, id.String()), logx.Error(err))
				continue
			}
			if fixed {
				repaired++
			}
		}

		if len(ids) < pageSize {
			break
		}
	}

	w.record(checked, repaired, failed)

	if repaired > 0 || failed > 0 {
		logger(ctx).Info("reconcile cycle completed",
			slog.Int("checked", checked),
			slog.Int("repaired", repaired),
			slog.Int("failed", failed),
		)
	}
}

func (w *PairingReconciler) checkOne(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := w.waitForNextSlot(ctx); err != nil {
		return false, err
	}

	report, err := w.service.VerifyPairingIntegrity(ctx, id)
	if err != nil {
		return false, err
	}
	if report.OK() {
		return false, nil
	}

	report, err = w.service.ReconcilePairing(ctx, id)
	if err != nil {
		return false, err
	}

	return report.OK(), nil
}

func (w *PairingReconciler) record(checked, repaired, failed int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stats.Cycles++
	w.stats.Checked += checked
	w.stats.Repaired += repaired
	w.stats.Failed += failed
	w.stats.LastCycleAt = time.Now()
}

func (w *PairingReconciler) waitForNextSlot(ctx context.Context) error {
	if w.requestInterval <= 0 {
		return nil
	}

	if w.lastRequest.IsZero() {
		w.lastRequest = time.Now()
		return nil
	}

	elapsed := time.Since(w.lastRequest)
	if elapsed >= w.requestInterval {
		w.lastRequest = time.Now()
		return nil
	}

	select {
	case <-time.After(w.requestInterval - elapsed):
		w.lastRequest = time.Now()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
