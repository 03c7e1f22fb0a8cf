package req

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"gem_market/pkg/errcodes"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

// Read разбирает обязательное JSON-тело и валидирует его.
func Read(r *http.Request, dest any) error {
	return read(r, dest, false)
}

// ReadOptional как Read, но пустое тело считается пустым объектом.
func ReadOptional(r *http.Request, dest any) error {
	return read(r, dest, true)
}

func read(r *http.Request, dest any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dest)

	switch {
	case err == nil:
	case optional && errors.Is(err, io.EOF):
	default:
		return failure.NewInvalidArgumentError(
			fmt.Errorf("json.Decode: %w", err).Error(),
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription("Invalid JSON"),
		)
	}

	if err := validate.StructCtx(r.Context(), dest); err != nil {
		return failure.NewInvalidArgumentError(
			"validation error",
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription(err.Error()),
		)
	}

	return nil
}
