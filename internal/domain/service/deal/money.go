package deal

import "github.com/shopspring/decimal"

const centPlaces = 2

//nolint:gochecknoglobals
var hundred = decimal.NewFromInt(100)

// sellerPrice цена, по которой посредник выкупает товар у продавца.
func (s *Service) sellerPrice(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(s.settings.SellerFeeRate)).Round(centPlaces)
}

func (s *Service) sellerFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(s.settings.SellerFeeRate).Round(centPlaces)
}

// discountPercent скидка price относительно original в процентах.
func discountPercent(original, price decimal.Decimal) decimal.Decimal {
	if original.IsZero() {
		return decimal.Zero
	}

	return original.Sub(price).Div(original).Mul(hundred)
}

// spread распределяет total по строкам пропорционально base, последняя
// строка забирает остаток округления.
func spread(base []decimal.Decimal, total decimal.Decimal) []decimal.Decimal {
	result := make([]decimal.Decimal, len(base))
	if len(base) == 0 {
		return result
	}

	sum := decimal.Zero
	for _, b := range base {
		sum = sum.Add(b)
	}

	if sum.IsZero() {
		result[len(result)-1] = total
		return result
	}

	ratio := total.Div(sum)
	allocated := decimal.Zero

	for i := range base[:len(base)-1] {
		result[i] = base[i].Mul(ratio).Round(centPlaces)
		allocated = allocated.Add(result[i])
	}
	result[len(result)-1] = total.Sub(allocated)

	return result
}
