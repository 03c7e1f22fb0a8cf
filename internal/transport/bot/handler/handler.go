package handler

import (
	"context"

	"github.com/google/uuid"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/service/deal"
	"gem_market/internal/worker"
)

type DealService interface {
	GetByNumber(ctx context.Context, number string) (*entity.Deal, error)
	VerifyPairingIntegrity(ctx context.Context, dealID uuid.UUID) (entity.PairingReport, error)
	ReconcilePairing(ctx context.Context, dealID uuid.UUID) (entity.PairingReport, error)
	Dashboard(ctx context.Context, identity entity.Identity, page deal.Page) ([]entity.DashboardEntry, error)
	Settings() deal.Settings
}

type Reconciler interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
	Stats() worker.ReconcilerStats
}

type Handler struct {
	svc        DealService
	reconciler Reconciler
	// operator от чьего имени бот смотрит панель посредника.
	operator entity.Identity
}

func New(svc DealService, reconciler Reconciler, operator entity.Identity) *Handler {
	operator.Privileged = true

	return &Handler{
		svc:        svc,
		reconciler: reconciler,
		operator:   operator,
	}
}
