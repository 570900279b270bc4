package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/p-salazarhamm/SCGid/internal/failure"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report option names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every option. The first violation is returned as a
// *failure.ConfigurationError.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &failure.ConfigurationError{
				Field:   fe.Field(),
				Message: describe(fe),
				Cause:   err,
			}
		}
		return &failure.ConfigurationError{Message: "validating configuration", Cause: err}
	}
	if !c.Mode.Valid() {
		return failure.Configf("mode", "invalid mode %d (expected blastp|blastn)", int(c.Mode))
	}
	if _, err := strconv.ParseFloat(c.EValue, 64); err != nil {
		return &failure.ConfigurationError{Field: "evalue", Message: fmt.Sprintf("%q is not a number", c.EValue), Cause: err}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be >= %s (got %v)", fe.Param(), fe.Value())
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q (got %v)", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q validation (got %v)", fe.Tag(), fe.Value())
	}
}
