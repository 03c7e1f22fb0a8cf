package deal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
)

// VerifyPairingIntegrity сверяет связи сделки покупателя со сделками продавцов.
// Для сделки продавца проверяется её сделка покупателя.
func (s *Service) VerifyPairingIntegrity(ctx context.Context, dealID uuid.UUID) (entity.PairingReport, error) {
	buyerDeal, err := s.buyerDealOf(ctx, dealID)
	if err != nil {
		return entity.PairingReport{}, err
	}

	if buyerDeal == nil {
		return entity.PairingReport{BuyerDealID: uuid.Nil}, nil
	}

	report, _, err := s.inspect(ctx, buyerDeal)

	return report, err
}

// ReconcilePairing исправляет то, что можно исправить: дописывает
// недостающие ссылки, убирает висячие и перенаправляет осиротевшие сделки
// продавцов. Возвращает отчёт после исправления.
func (s *Service) ReconcilePairing(ctx context.Context, dealID uuid.UUID) (entity.PairingReport, error) {
	buyerDeal, err := s.buyerDealOf(ctx, dealID)
	if err != nil {
		return entity.PairingReport{}, err
	}

	if buyerDeal == nil {
		return entity.PairingReport{BuyerDealID: uuid.Nil}, nil
	}

	ctx = withDealLogger(ctx, buyerDeal)

	report, listed, err := s.inspect(ctx, buyerDeal)
	if err != nil {
		return entity.PairingReport{}, err
	}

	if report.OK() {
		return report, nil
	}

	var repairs []string

	if len(report.DanglingIDs) > 0 {
		buyerDeal.PairedDealIDs = lo.Without(buyerDeal.PairedDealIDs, report.DanglingIDs...)
		repairs = append(repairs, fmt.Sprintf("removed %d dangling links", len(report.DanglingIDs)))
	}

	missing := append(append([]uuid.UUID(nil), report.MissingBackLinks...), report.UnlistedAlternatives...)
	if len(missing) > 0 {
		existing, err := s.deals.GetByIDs(ctx, lo.Uniq(missing))
		if err != nil {
			return entity.PairingReport{}, fmt.Errorf("deals.GetByIDs: %w", err)
		}

		ids := lo.Map(existing, func(d *entity.Deal, _ int) uuid.UUID { return d.ID })
		buyerDeal.PairedDealIDs = lo.Uniq(append(buyerDeal.PairedDealIDs, ids...))
		repairs = append(repairs, fmt.Sprintf("linked %d seller deals", len(ids)))
	}

	repointed := 0
	for _, id := range report.ForeignLinks {
		seller := listed[id]
		if seller == nil {
			continue
		}

		orphan, err := s.orphaned(ctx, seller)
		if err != nil {
			return entity.PairingReport{}, err
		}
		if !orphan {
			continue
		}

		seller.PairedDealID = buyerDeal.ID
		seller.Log(s.now(), value.ActivityPairingRepaired, uuid.Nil,
			fmt.Sprintf("Re-linked to buyer deal %s", buyerDeal.Number))

		if err := s.save(ctx, seller); err != nil {
			return entity.PairingReport{}, err
		}
		repointed++
	}
	if repointed > 0 {
		repairs = append(repairs, fmt.Sprintf("re-pointed %d seller deals", repointed))
	}

	if len(repairs) == 0 {
		logger(ctx).Warn("pairing mismatch cannot be repaired automatically",
			slog.Int("foreign", len(report.ForeignLinks)))
		return report, nil
	}

	details := "Pairing repaired: " + strings.Join(repairs, ", ")
	buyerDeal.Log(s.now(), value.ActivityPairingRepaired, uuid.Nil, details)

	if err := s.save(ctx, buyerDeal); err != nil {
		return entity.PairingReport{}, err
	}

	s.notify(ctx, value.EventPairingRepaired, buyerDeal, details)

	logger(ctx).Warn("pairing repaired",
		slog.Int("missing", len(report.MissingBackLinks)),
		slog.Int("dangling", len(report.DanglingIDs)),
		slog.Int("foreign", len(report.ForeignLinks)),
		slog.Int("unlisted", len(report.UnlistedAlternatives)),
	)

	after, _, err := s.inspect(ctx, buyerDeal)

	return after, err
}

// OpenBuyerDealIDs открытые сделки покупателей для фоновой сверки.
func (s *Service) OpenBuyerDealIDs(ctx context.Context, page Page) ([]uuid.UUID, error) {
	page = page.normalize()

	deals, err := s.deals.List(ctx, entity.DealFilter{
		Type:     value.DealTypeBuyerToIntermediary,
		OpenOnly: true,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("deals.List: %w", err)
	}

	return lo.Map(deals, func(d *entity.Deal, _ int) uuid.UUID { return d.ID }), nil
}

// buyerDealOf возвращает сделку покупателя или nil для непарной сделки продавца.
func (s *Service) buyerDealOf(ctx context.Context, dealID uuid.UUID) (*entity.Deal, error) {
	deal, err := s.load(ctx, dealID)
	if err != nil {
		return nil, err
	}

	if deal.Type == value.DealTypeBuyerToIntermediary {
		return deal, nil
	}

	if deal.PairedDealID == uuid.Nil {
		return nil, nil
	}

	return s.load(ctx, deal.PairedDealID)
}

func (s *Service) inspect(
	ctx context.Context,
	buyerDeal *entity.Deal,
) (entity.PairingReport, map[uuid.UUID]*entity.Deal, error) {
	report := entity.PairingReport{BuyerDealID: buyerDeal.ID}

	backLinked, err := s.deals.List(ctx, entity.DealFilter{
		Type:         value.DealTypeIntermediaryToSeller,
		PairedDealID: buyerDeal.ID,
	})
	if err != nil {
		return report, nil, fmt.Errorf("deals.List: %w", err)
	}

	report.MissingBackLinks = lo.FilterMap(backLinked, func(d *entity.Deal, _ int) (uuid.UUID, bool) {
		return d.ID, !buyerDeal.HasPairedDeal(d.ID)
	})

	listedDeals, err := s.deals.GetByIDs(ctx, buyerDeal.PairedDealIDs)
	if err != nil {
		return report, nil, fmt.Errorf("deals.GetByIDs: %w", err)
	}
	listed := lo.KeyBy(listedDeals, func(d *entity.Deal) uuid.UUID { return d.ID })

	for _, id := range buyerDeal.PairedDealIDs {
		d, ok := listed[id]
		switch {
		case !ok:
			report.DanglingIDs = append(report.DanglingIDs, id)
		case d.PairedDealID != buyerDeal.ID:
			report.ForeignLinks = append(report.ForeignLinks, id)
		}
	}

	report.UnlistedAlternatives = lo.Filter(buyerDeal.AlternativeDealIDs(), func(id uuid.UUID, _ int) bool {
		return !buyerDeal.HasPairedDeal(id) && !lo.Contains(report.MissingBackLinks, id)
	})

	return report, listed, nil
}

// orphaned сделка продавца ни к кому не привязана либо её сделка покупателя
// удалена или о ней не знает.
func (s *Service) orphaned(ctx context.Context, seller *entity.Deal) (bool, error) {
	if seller.PairedDealID == uuid.Nil {
		return true, nil
	}

	owner, err := s.deals.GetByID(ctx, seller.PairedDealID)
	if domain.HasCode(err, errcodes.DealNotFound) {
		logger(ctx).Debug("paired deal is gone",
			slog.String("seller-deal", seller.Number),
			slog.String("paired-deal-id", seller.PairedDealID.String()),
		)
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("deals.GetByID: %w", err)
	}

	return !owner.HasPairedDeal(seller.ID), nil
}
