package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/value"
	"gem_market/pkg/errcodes"
)

// UnitRepository каталог единиц товара.
type UnitRepository struct {
	db *sqlx.DB
}

func NewUnitRepository(db *sqlx.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Unit, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+unitColumns+` FROM units WHERE id IN (?)`, ids)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
	}

	return r.selectMany(ctx, r.db.Rebind(query), args...)
}

// FindAlternatives свободные единицы с теми же характеристиками, чей
// сертификат не в списке исключений. Ближайшие по весу первыми.
func (r *UnitRepository) FindAlternatives(ctx context.Context, q entity.AlternativeQuery) ([]*entity.Unit, error) {
	if len(q.Colors) == 0 {
		return nil, nil
	}

	conds := []string{
		"u.status = ?",
		"u.shape = ?",
		"u.clarity = ?",
		"u.carat BETWEEN ? AND ?",
		"u.color IN (?)",
		"NOT EXISTS (SELECT 1 FROM excluded_certificates e WHERE e.certificate_number = u.certificate_number)",
	}
	args := []any{value.UnitStatusAvailable.String(), q.Shape, q.Clarity, q.CaratMin, q.CaratMax, q.Colors}

	if len(q.ExcludeUnits) > 0 {
		conds = append(conds, "u.id NOT IN (?)")
		args = append(args, q.ExcludeUnits)
	}

	query := `SELECT ` + prefixed("u.", unitColumns) + ` FROM units u WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY u.carat, u.price`

	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
	}

	return r.selectMany(ctx, r.db.Rebind(query), args...)
}

func (r *UnitRepository) MarkOnDeal(ctx context.Context, ids []uuid.UUID, dealID uuid.UUID) error {
	return r.setStatus(ctx, ids, value.UnitStatusOnDeal, nullUUID(dealID))
}

func (r *UnitRepository) MarkAvailable(ctx context.Context, ids []uuid.UUID) error {
	return r.setStatus(ctx, ids, value.UnitStatusAvailable, uuid.NullUUID{})
}

func (r *UnitRepository) MarkSold(ctx context.Context, ids []uuid.UUID) error {
	return r.setStatus(ctx, ids, value.UnitStatusSold, uuid.NullUUID{})
}

// Delete удаляет единицы из каталога; отсутствующие не считаются ошибкой.
func (r *UnitRepository) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := sqlx.In(`DELETE FROM units WHERE id IN (?)`, ids)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to delete units")
		}

		return nil
	})
}

func (r *UnitRepository) setStatus(ctx context.Context, ids []uuid.UUID, status value.UnitStatus, dealID uuid.NullUUID) error {
	if len(ids) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query, args, err := sqlx.In(`
			UPDATE units
			SET status = ?, deal_id = ?, updated_at = ?
			WHERE id IN (?)`, status.String(), dealID, time.Now(), ids)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to update units")
		}

		return nil
	})
}

func (r *UnitRepository) selectMany(ctx context.Context, query string, args ...any) ([]*entity.Unit, error) {
	var schemas []unitSchema
	if err := r.db.SelectContext(ctx, &schemas, query, args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get units")
	}

	units := make([]*entity.Unit, 0, len(schemas))
	for i := range schemas {
		units = append(units, schemas[i].toDomain())
	}

	return units, nil
}

func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}

	return strings.Join(parts, ", ")
}
