package config

import (
	"github.com/shopspring/decimal"

	"gem_market/internal/domain/service/deal"
)

// Market параметры площадки. Нулевые значения берутся из deal.DefaultSettings.
type Market struct {
	ManagementCompany     string          `env:"MARKET_MANAGEMENT_COMPANY"`
	SellerFeeRate         decimal.Decimal `env:"MARKET_SELLER_FEE_RATE"`
	BuyerDiscountCap      decimal.Decimal `env:"MARKET_BUYER_DISCOUNT_CAP"`
	PrivilegedDiscountCap decimal.Decimal `env:"MARKET_PRIVILEGED_DISCOUNT_CAP"`
	AlternativesLimit     int             `env:"MARKET_ALTERNATIVES_LIMIT"`
	DefaultShippingCost   decimal.Decimal `env:"MARKET_DEFAULT_SHIPPING_COST"`
	InternalShippingCost  decimal.Decimal `env:"MARKET_INTERNAL_SHIPPING_COST"`
}

func (m Market) Settings() deal.Settings {
	s := deal.DefaultSettings()

	if m.ManagementCompany != "" {
		s.ManagementCompany = m.ManagementCompany
	}
	if !m.SellerFeeRate.IsZero() {
		s.SellerFeeRate = m.SellerFeeRate
	}
	if !m.BuyerDiscountCap.IsZero() {
		s.BuyerDiscountCap = m.BuyerDiscountCap
	}
	if !m.PrivilegedDiscountCap.IsZero() {
		s.PrivilegedDiscountCap = m.PrivilegedDiscountCap
	}
	if m.AlternativesLimit > 0 {
		s.AlternativesLimit = m.AlternativesLimit
	}
	if !m.DefaultShippingCost.IsZero() {
		s.DefaultShippingCost = m.DefaultShippingCost
	}
	if !m.InternalShippingCost.IsZero() {
		s.InternalShippingCost = m.InternalShippingCost
	}

	return s
}
