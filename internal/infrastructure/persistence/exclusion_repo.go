package persistence

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/pkg/errcodes"
	"gem_market/pkg/logx"
)

// ExclusionRepository список сертификатов, которые больше не принимаются в каталог.
type ExclusionRepository struct {
	db *sqlx.DB
}

func NewExclusionRepository(db *sqlx.DB) *ExclusionRepository {
	return &ExclusionRepository{db: db}
}

// InsertMany добавляет записи по одной. Уже исключённый сертификат
// пропускается, прочие ошибки прерывают вставку.
func (r *ExclusionRepository) InsertMany(ctx context.Context, entries []entity.ExclusionEntry) (int, error) {
	query := `
		INSERT INTO excluded_certificates (certificate_number, reason, deal_id, added_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	added := 0
	for _, e := range entries {
		_, err := r.db.ExecContext(ctx, query,
			e.CertificateNumber, string(e.Reason), nullUUID(e.DealID), nullUUID(e.AddedBy), e.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				logger(ctx).Debug("certificate already excluded",
					slog.String(logx.FieldCertificate, e.CertificateNumber))
				continue
			}
			return added, domain.WrapError(err, errcodes.InternalServerError, "failed to exclude certificate")
		}
		added++
	}

	return added, nil
}

// Contains проверяет, что сертификат в списке исключений.
func (r *ExclusionRepository) Contains(ctx context.Context, certificate string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM excluded_certificates WHERE certificate_number = $1)`

	if err := r.db.GetContext(ctx, &exists, query, certificate); err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to check exclusion")
	}

	return exists, nil
}
