package logx

import (
	"fmt"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/shopspring/decimal"
)

var Error = tint.Err //nolint:gochecknoglobals

func Stringer(name string, value fmt.Stringer) slog.Attr {
	return slog.String(name, value.String())
}

// Amount денежная сумма с двумя знаками.
func Amount(value decimal.Decimal) slog.Attr {
	return slog.String(FieldAmount, value.StringFixed(2)) //nolint:mnd
}
