package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

var (
	digitsRe  = regexp.MustCompile(`^[0-9]+$`)
	decimalRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
)

// customRules are the tags this API adds on top of the validator builtins.
var customRules = map[string]validator.Func{
	"digits":  matches(digitsRe),
	"integer": matches(digitsRe),
	// a positive number with an optional fraction
	"decimal": func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return decimalRe.MatchString(s) && strings.Trim(s, "0.") != ""
	},
	"status": func(fl validator.FieldLevel) bool {
		_, err := domain.ParseStatus(fl.Field().String())
		return err == nil
	},
}

// tagMessages render a failed tag. %[1]s is the field and %[2]s the tag
// parameter.
var tagMessages = map[string]string{
	"required":  "%[1]s is required",
	"email":     "%[1]s must be a valid email",
	"digits":    "%[1]s must contain digits only",
	"len":       "%[1]s must be exactly %[2]s digits",
	"decimal":   "%[1]s must be a positive decimal number",
	"integer":   "%[1]s must be a whole number",
	"status":    "%[1]s must be one of: pending, in transit, delivered, cancelled",
	"gt":        "%[1]s must be greater than %[2]s",
	"min":       "%[1]s must be at least %[2]s",
	"oneof":     "%[1]s must be one of: %[2]s",
	"latitude":  "%[1]s must be a latitude between -90 and 90",
	"longitude": "%[1]s must be a longitude between -180 and 180",
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool { return re.MatchString(fl.Field().String()) }
}

// requestValidator plugs go-playground/validator into c.Validate.
type requestValidator struct {
	v *validator.Validate
}

func NewValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	for tag, fn := range customRules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validator: register %s: %v", tag, err))
		}
	}
	return &requestValidator{v: v}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Validate joins every failed field into one message.
func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	msgs := make([]string, len(fields))
	for i, fe := range fields {
		msgs[i] = describe(fe)
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	if format, ok := tagMessages[fe.Tag()]; ok {
		if strings.Contains(format, "%[2]s") {
			return fmt.Sprintf(format, fe.Field(), fe.Param())
		}
		return fmt.Sprintf(format, fe.Field())
	}
	return fmt.Sprintf("%s failed validation (%s)", fe.Field(), fe.Tag())
}
