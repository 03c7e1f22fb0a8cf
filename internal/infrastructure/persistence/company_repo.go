package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gem_market/internal/domain"
	"gem_market/internal/domain/entity"
	"gem_market/pkg/errcodes"
)

const companyColumns = `id, name, shipping_address, legal_address`

type CompanyRepository struct {
	db *sqlx.DB
}

func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
}

func (r *CompanyRepository) GetByName(ctx context.Context, name string) (*entity.Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE name = $1`, name)
}

func (r *CompanyRepository) getOne(ctx context.Context, query string, arg any) (*entity.Company, error) {
	var schema companySchema
	if err := r.db.GetContext(ctx, &schema, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.CompanyNotFound, "company not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get company")
	}

	company, err := schema.toDomain()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to decode company")
	}

	return company, nil
}

func (r *CompanyRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Company, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+companyColumns+` FROM companies WHERE id IN (?)`, ids)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
	}

	var schemas []companySchema
	if err := r.db.SelectContext(ctx, &schemas, r.db.Rebind(query), args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get companies")
	}

	companies := make([]*entity.Company, 0, len(schemas))
	for i := range schemas {
		company, err := schemas[i].toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to decode company")
		}
		companies = append(companies, company)
	}

	return companies, nil
}

// ListRepresentatives активные сотрудники компании.
func (r *CompanyRepository) ListRepresentatives(ctx context.Context, companyID uuid.UUID) ([]entity.Representative, error) {
	query := `
		SELECT user_id, company_id, role, active
		FROM company_members
		WHERE company_id = $1 AND active
		ORDER BY user_id`

	var schemas []memberSchema
	if err := r.db.SelectContext(ctx, &schemas, query, companyID); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list company members")
	}

	reps := make([]entity.Representative, 0, len(schemas))
	for _, s := range schemas {
		reps = append(reps, s.toDomain())
	}

	return reps, nil
}
