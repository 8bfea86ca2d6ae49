package pos

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldViolation describes one malformed field of a payload
type FieldViolation struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

var (
	payloadValidator     *validator.Validate
	payloadValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	payloadValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		v.RegisterStructValidation(validateLineBounds, SaleLineItem{})
		payloadValidator = v
	})
	return payloadValidator
}

var (
	maxQuantity  = decimal.NewFromInt(10000)
	maxUnitPrice = decimal.NewFromInt(999999999)
	maxTaxRate   = decimal.NewFromInt(100)
)

// validateLineBounds compares the numeric bounds of a line on the decimal
// values themselves. A float conversion would round values just past a
// bound back onto it.
func validateLineBounds(sl validator.StructLevel) {
	item := sl.Current().Interface().(SaleLineItem)

	if !item.Quantity.IsPositive() {
		sl.ReportError(item.Quantity, "quantity", "Quantity", "gt", "0")
	} else if item.Quantity.GreaterThan(maxQuantity) {
		sl.ReportError(item.Quantity, "quantity", "Quantity", "lte", maxQuantity.String())
	}
	if item.UnitPrice.IsNegative() {
		sl.ReportError(item.UnitPrice, "unit_price", "UnitPrice", "gte", "0")
	} else if item.UnitPrice.GreaterThan(maxUnitPrice) {
		sl.ReportError(item.UnitPrice, "unit_price", "UnitPrice", "lte", maxUnitPrice.String())
	}
	if item.TaxRate.IsNegative() {
		sl.ReportError(item.TaxRate, "tax_rate", "TaxRate", "gte", "0")
	} else if item.TaxRate.GreaterThan(maxTaxRate) {
		sl.ReportError(item.TaxRate, "tax_rate", "TaxRate", "lte", maxTaxRate.String())
	}
}

// ValidatePayload checks shape and bounds, returning every violation found.
// A nil result means the payload is well formed.
func ValidatePayload(p *SalePayload) []FieldViolation {
	if p == nil {
		return []FieldViolation{{Field: "body", Error: "payload is required"}}
	}

	var violations []FieldViolation
	if err := getValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []FieldViolation{{Field: "body", Error: err.Error()}}
		}
		for _, fe := range verrs {
			violations = append(violations, FieldViolation{
				Field: fieldPath(fe.Namespace()),
				Error: describe(fe),
			})
		}
	}

	for i, item := range p.Items {
		gross := item.GrossAmount()
		if gross.IsNegative() || !item.Quantity.IsPositive() {
			continue
		}
		if item.Discount.GreaterThan(gross) {
			violations = append(violations, FieldViolation{
				Field: fmt.Sprintf("items[%d].discount", i),
				Error: "discount exceeds line amount",
			})
		}
	}
	return violations
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
