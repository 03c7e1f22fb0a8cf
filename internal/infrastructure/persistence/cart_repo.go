package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/pkg/errcodes"
)

type CartRepository struct {
	db *sqlx.DB
}

func NewCartRepository(db *sqlx.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetItems позиции корзины пользователя из списка ids.
func (r *CartRepository) GetItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]entity.CartItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, user_id, unit_id, added_at
		FROM cart_items
		WHERE user_id = ? AND id IN (?)
		ORDER BY added_at, id`, userID, ids)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
	}

	var schemas []cartItemSchema
	if err := r.db.SelectContext(ctx, &schemas, r.db.Rebind(query), args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get cart items")
	}

	items := make([]entity.CartItem, 0, len(schemas))
	for _, s := range schemas {
		items = append(items, s.toDomain())
	}

	return items, nil
}

func (r *CartRepository) RemoveItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := sqlx.In(`DELETE FROM cart_items WHERE user_id = ? AND id IN (?)`, userID, ids)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to remove cart items")
		}

		return nil
	})
}
