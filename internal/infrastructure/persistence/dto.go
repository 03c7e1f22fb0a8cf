package persistence

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"gem_market/internal/domain/entity"
	"gem_market/internal/domain/value"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const dealColumns = `id, number, type, stage, status, items, amount, fee,
	buyer_id, buyer_company_id, seller_id, seller_company_id, intermediary_company_id,
	paired_deal_id, paired_deal_ids, request, negotiation, payment, shipping,
	notes, activity, created_at, last_action_at, completed_at`

// dealSchema строка таблицы deals. Вложенные части сделки хранятся в JSONB.
type dealSchema struct {
	ID                    uuid.UUID       `db:"id"`
	Number                string          `db:"number"`
	Type                  string          `db:"type"`
	Stage                 string          `db:"stage"`
	Status                string          `db:"status"`
	Items                 []byte          `db:"items"`
	Amount                decimal.Decimal `db:"amount"`
	Fee                   decimal.Decimal `db:"fee"`
	BuyerID               uuid.NullUUID   `db:"buyer_id"`
	BuyerCompanyID        uuid.NullUUID   `db:"buyer_company_id"`
	SellerID              uuid.NullUUID   `db:"seller_id"`
	SellerCompanyID       uuid.NullUUID   `db:"seller_company_id"`
	IntermediaryCompanyID uuid.NullUUID   `db:"intermediary_company_id"`
	PairedDealID          uuid.NullUUID   `db:"paired_deal_id"`
	PairedDealIDs         []byte          `db:"paired_deal_ids"`
	Request               []byte          `db:"request"`
	Negotiation           []byte          `db:"negotiation"`
	Payment               []byte          `db:"payment"`
	Shipping              []byte          `db:"shipping"`
	Notes                 string          `db:"notes"`
	Activity              []byte          `db:"activity"`
	CreatedAt             time.Time       `db:"created_at"`
	LastActionAt          time.Time       `db:"last_action_at"`
	CompletedAt           sql.NullTime    `db:"completed_at"`
}

func fromDeal(d *entity.Deal) (*dealSchema, error) {
	s := &dealSchema{
		ID:                    d.ID,
		Number:                d.Number,
		Type:                  d.Type.String(),
		Stage:                 d.Stage.String(),
		Status:                d.Status.String(),
		Amount:                d.Amount,
		Fee:                   d.Fee,
		BuyerID:               nullUUID(d.BuyerID),
		BuyerCompanyID:        nullUUID(d.BuyerCompanyID),
		SellerID:              nullUUID(d.SellerID),
		SellerCompanyID:       nullUUID(d.SellerCompanyID),
		IntermediaryCompanyID: nullUUID(d.IntermediaryCompanyID),
		PairedDealID:          nullUUID(d.PairedDealID),
		Notes:                 d.Notes,
		CreatedAt:             d.CreatedAt,
		LastActionAt:          d.LastActionAt,
	}

	if d.CompletedAt != nil {
		s.CompletedAt = sql.NullTime{Time: *d.CompletedAt, Valid: true}
	}

	pairedDealIDs := d.PairedDealIDs
	if pairedDealIDs == nil {
		pairedDealIDs = []uuid.UUID{}
	}

	items := d.Items
	if items == nil {
		items = []entity.LineItem{}
	}

	activity := d.Activity
	if activity == nil {
		activity = []entity.Activity{}
	}

	for _, part := range []struct {
		dest *[]byte
		src  any
	}{
		{&s.Items, items},
		{&s.PairedDealIDs, pairedDealIDs},
		{&s.Request, d.Request},
		{&s.Negotiation, d.Negotiation},
		{&s.Payment, d.Payment},
		{&s.Shipping, d.Shipping},
		{&s.Activity, activity},
	} {
		raw, err := json.Marshal(part.src)
		if err != nil {
			return nil, err
		}
		*part.dest = raw
	}

	return s, nil
}

func (s *dealSchema) toDomain() (*entity.Deal, error) {
	d := &entity.Deal{
		ID:                    s.ID,
		Number:                s.Number,
		Type:                  value.DealType(s.Type),
		Stage:                 value.Stage(s.Stage),
		Status:                value.Status(s.Status),
		Amount:                s.Amount,
		Fee:                   s.Fee,
		BuyerID:               s.BuyerID.UUID,
		BuyerCompanyID:        s.BuyerCompanyID.UUID,
		SellerID:              s.SellerID.UUID,
		SellerCompanyID:       s.SellerCompanyID.UUID,
		IntermediaryCompanyID: s.IntermediaryCompanyID.UUID,
		PairedDealID:          s.PairedDealID.UUID,
		Notes:                 s.Notes,
		CreatedAt:             s.CreatedAt,
		LastActionAt:          s.LastActionAt,
	}

	if s.CompletedAt.Valid {
		completedAt := s.CompletedAt.Time
		d.CompletedAt = &completedAt
	}

	for _, part := range []struct {
		src  []byte
		dest any
	}{
		{s.Items, &d.Items},
		{s.PairedDealIDs, &d.PairedDealIDs},
		{s.Request, &d.Request},
		{s.Negotiation, &d.Negotiation},
		{s.Payment, &d.Payment},
		{s.Shipping, &d.Shipping},
		{s.Activity, &d.Activity},
	} {
		if len(part.src) == 0 {
			continue
		}
		if err := json.Unmarshal(part.src, part.dest); err != nil {
			return nil, err
		}
	}

	return d, nil
}

const unitColumns = `id, company_id, certificate_number, certificate_institute, price,
	shape, carat, color, clarity, status, deal_id, updated_at`

type unitSchema struct {
	ID                   uuid.UUID       `db:"id"`
	CompanyID            uuid.UUID       `db:"company_id"`
	CertificateNumber    string          `db:"certificate_number"`
	CertificateInstitute string          `db:"certificate_institute"`
	Price                decimal.Decimal `db:"price"`
	Shape                string          `db:"shape"`
	Carat                decimal.Decimal `db:"carat"`
	Color                string          `db:"color"`
	Clarity              string          `db:"clarity"`
	Status               string          `db:"status"`
	DealID               uuid.NullUUID   `db:"deal_id"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

func (s *unitSchema) toDomain() *entity.Unit {
	return &entity.Unit{
		ID:                   s.ID,
		CompanyID:            s.CompanyID,
		CertificateNumber:    s.CertificateNumber,
		CertificateInstitute: s.CertificateInstitute,
		Price:                s.Price,
		Attributes: value.UnitAttributes{
			Shape:   s.Shape,
			Carat:   s.Carat,
			Color:   s.Color,
			Clarity: s.Clarity,
		},
		Status:    value.UnitStatus(s.Status),
		DealID:    s.DealID.UUID,
		UpdatedAt: s.UpdatedAt,
	}
}

type companySchema struct {
	ID              uuid.UUID `db:"id"`
	Name            string    `db:"name"`
	ShippingAddress []byte    `db:"shipping_address"`
	LegalAddress    []byte    `db:"legal_address"`
}

func (s *companySchema) toDomain() (*entity.Company, error) {
	c := &entity.Company{ID: s.ID, Name: s.Name}

	if len(s.ShippingAddress) > 0 {
		if err := json.Unmarshal(s.ShippingAddress, &c.ShippingAddress); err != nil {
			return nil, err
		}
	}

	if len(s.LegalAddress) > 0 {
		if err := json.Unmarshal(s.LegalAddress, &c.LegalAddress); err != nil {
			return nil, err
		}
	}

	return c, nil
}

type memberSchema struct {
	UserID    uuid.UUID `db:"user_id"`
	CompanyID uuid.UUID `db:"company_id"`
	Role      string    `db:"role"`
	Active    bool      `db:"active"`
}

func (s memberSchema) toDomain() entity.Representative {
	return entity.Representative{
		UserID:    s.UserID,
		CompanyID: s.CompanyID,
		Role:      value.MemberRole(s.Role),
		Active:    s.Active,
	}
}

type cartItemSchema struct {
	ID      uuid.UUID `db:"id"`
	UserID  uuid.UUID `db:"user_id"`
	UnitID  uuid.UUID `db:"unit_id"`
	AddedAt time.Time `db:"added_at"`
}

func (s cartItemSchema) toDomain() entity.CartItem {
	return entity.CartItem{
		ID:      s.ID,
		UserID:  s.UserID,
		UnitID:  s.UnitID,
		AddedAt: s.AddedAt,
	}
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
