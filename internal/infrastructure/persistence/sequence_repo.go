package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gem_market/internal/domain"
	"gem_market/pkg/errcodes"
)

// SequenceRepository именованные счётчики для номеров сделок.
type SequenceRepository struct {
	db *sqlx.DB
}

func NewSequenceRepository(db *sqlx.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next атомарно увеличивает счётчик и возвращает значение, дополненное
// нулями до width. Новый счётчик начинается со start.
func (r *SequenceRepository) Next(ctx context.Context, name string, start int64, width int) (string, error) {
	query := `
		INSERT INTO sequences (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`

	var next int64
	if err := r.db.GetContext(ctx, &next, query, name, start); err != nil {
		return "", domain.WrapError(err, errcodes.SequenceUnavailable, "failed to advance sequence "+name)
	}

	return fmt.Sprintf("%0*d", width, next), nil
}
