package pricing

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

// ConfigurationError reports the first pricing config field that violates its
// constraint.
type ConfigurationError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Value      any    `json:"value,omitempty"`
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid pricing config: %s %s", e.Field, e.Constraint)
}

// IsConfigurationError reports whether err carries a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks cfg against the solver preconditions.
func Validate(cfg Config) error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"basePrice", cfg.BasePrice},
		{"targetDiscountPct", cfg.TargetDiscountPct},
		{"minPriceFloor", cfg.MinPriceFloor},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ConfigurationError{Field: f.name, Constraint: "must be a finite number"}
		}
	}

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate pricing config: %w", err)
	}
	fe := fieldErrs[0]
	return &ConfigurationError{
		Field:      fe.Field(),
		Constraint: describe(fe),
		Value:      fe.Value(),
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be > " + fe.Param()
	case "min":
		return "must be >= " + fe.Param()
	case "max":
		return "must be <= " + fe.Param()
	case "lt":
		return "must be < " + fe.Param()
	case "ltefield":
		return "must be <= " + jsonName(fe.Param())
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func jsonName(field string) string {
	if t, ok := reflect.TypeOf(Config{}).FieldByName(field); ok {
		if name := strings.SplitN(t.Tag.Get("json"), ",", 2)[0]; name != "" {
			return name
		}
	}
	return field
}
