package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// MsgInvalidBody is returned when the request body cannot be decoded.
const MsgInvalidBody = "Invalid request body"

var (
	minMoney = decimal.New(1, -2)
	maxMoney = decimal.New(1, 17)
)

// NewValidator returns a validator that reports fields by their json name,
// understands shopspring decimals and supports the notblank, money and
// maxbytes tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("money", validMoney)
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return v
}

// decimalValue exposes decimals to the validator as their exact text.
// A zero Decimal maps to "" so that required rejects it, and a NullDecimal
// maps to a string pointer so omitempty only skips null values.
func decimalValue(field reflect.Value) any {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		if d.IsZero() {
			return ""
		}
		return d.String()
	case decimal.NullDecimal:
		if !d.Valid {
			return (*string)(nil)
		}
		text := d.Decimal.String()
		return &text
	}
	return nil
}

// validMoney accepts amounts that fit NUMERIC(19,2) and are at least 0.01.
func validMoney(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.GreaterThanOrEqual(minMoney) && d.LessThan(maxMoney) && d.Equal(d.Round(2))
}

// maxBytes limits the length of a string in bytes rather than runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil || fl.Field().Kind() != reflect.String {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// DecodeAndValidate decodes the JSON body into dst and validates it.
// On failure it writes the 400 response and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, validate *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		RespondError(w, r, logger, http.StatusBadRequest, MsgInvalidBody)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string, len(validationErrors))
			first := ""
			for _, fieldErr := range validationErrors {
				msg := "failed on rule: " + fieldErr.Tag()
				errorResponse[fieldErr.Field()] = msg
				if first == "" {
					first = fieldErr.Field() + ": " + msg
				}
			}
			logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			RespondValidationError(w, r, logger, errorResponse, first)
			return false
		}
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		RespondError(w, r, logger, http.StatusBadRequest, MsgInvalidBody)
		return false
	}
	return true
}
