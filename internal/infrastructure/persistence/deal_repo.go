package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
)

type DealRepository struct {
	db *sqlx.DB
}

func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

// Create сохраняет новую сделку.
func (r *DealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	schema, err := fromDeal(deal)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to encode deal")
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO deals (` + dealColumns + `)
			VALUES (
				:id, :number, :type, :stage, :status, :items, :amount, :fee,
				:buyer_id, :buyer_company_id, :seller_id, :seller_company_id, :intermediary_company_id,
				:paired_deal_id, :paired_deal_ids, :request, :negotiation, :payment, :shipping,
				:notes, :activity, :created_at, :last_action_at, :completed_at
			)`

		if _, err := tx.NamedExecContext(ctx, query, schema); err != nil {
			if isUniqueViolation(err) {
				return domain.WrapError(err, errcodes.SequenceUnavailable, "deal number already taken")
			}
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert deal")
		}

		return nil
	})
}

// Update перезаписывает изменяемые поля сделки.
func (r *DealRepository) Update(ctx context.Context, deal *entity.Deal) error {
	schema, err := fromDeal(deal)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to encode deal")
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := tx.BindNamed(`
			UPDATE deals SET
				stage = :stage, status = :status, items = :items, amount = :amount, fee = :fee,
				paired_deal_id = :paired_deal_id, paired_deal_ids = :paired_deal_ids,
				request = :request, negotiation = :negotiation, payment = :payment,
				shipping = :shipping, notes = :notes, activity = :activity,
				last_action_at = :last_action_at, completed_at = :completed_at
			WHERE id = :id`, schema)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to bind query")
		}

		return execAffecting(ctx, tx, domain.NewError(errcodes.DealNotFound, "deal not found"), query, args...)
	})
}

func (r *DealRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Deal, error) {
	return r.getOne(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id)
}

func (r *DealRepository) GetByNumber(ctx context.Context, number string) (*entity.Deal, error) {
	return r.getOne(ctx, `SELECT `+dealColumns+` FROM deals WHERE number = $1`, number)
}

func (r *DealRepository) getOne(ctx context.Context, query string, arg any) (*entity.Deal, error) {
	var schema dealSchema
	if err := r.db.GetContext(ctx, &schema, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.DealNotFound, "deal not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get deal")
	}

	deal, err := schema.toDomain()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to decode deal")
	}

	return deal, nil
}

// GetByIDs возвращает найденные сделки, отсутствующие пропускаются.
func (r *DealRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Deal, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+dealColumns+` FROM deals WHERE id IN (?) ORDER BY number`, ids)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
	}

	return r.selectMany(ctx, r.db.Rebind(query), args...)
}

// List сделки по фильтру, новые первыми.
func (r *DealRepository) List(ctx context.Context, filter entity.DealFilter) ([]*entity.Deal, error) {
	var (
		conds []string
		args  []any
	)

	add := func(cond string, condArgs ...any) {
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}

	if filter.Type != "" {
		add("type = ?", filter.Type.String())
	}
	if filter.BuyerID != uuid.Nil {
		add("buyer_id = ?", filter.BuyerID)
	}
	if filter.BuyerCompanyID != uuid.Nil {
		add("buyer_company_id = ?", filter.BuyerCompanyID)
	}
	if filter.SellerCompanyID != uuid.Nil {
		add("seller_company_id = ?", filter.SellerCompanyID)
	}
	if p := filter.SellerParty; p != nil {
		add("(seller_id = ? OR seller_company_id = ?)", nullUUID(p.UserID), nullUUID(p.CompanyID))
	}
	if filter.PairedDealID != uuid.Nil {
		add("paired_deal_id = ?", filter.PairedDealID)
	}
	if filter.OpenOnly {
		add("stage NOT IN (?, ?)", value.StageCompleted.String(), value.StageCancelled.String())
	}

	query := `SELECT ` + dealColumns + ` FROM deals`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, number DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	return r.selectMany(ctx, r.db.Rebind(query), args...)
}

func (r *DealRepository) selectMany(ctx context.Context, query string, args ...any) ([]*entity.Deal, error) {
	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query, args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list deals")
	}

	deals := make([]*entity.Deal, 0, len(schemas))
	for i := range schemas {
		deal, err := schemas[i].toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to decode deal")
		}
		deals = append(deals, deal)
	}

	return deals, nil
}
