package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
)

// registerValidations adds the custom rules and reports fields by their flag names.
func registerValidations(validate *validator.Validate) error {
	if err := validate.RegisterValidation("exclusive", validateExclusive); err != nil {
		return fmt.Errorf("registering exclusive validation: %w", err)
	}

	if err := validate.RegisterValidation("notnested", validateNotNested); err != nil {
		return fmt.Errorf("registering notnested validation: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		const splitSize = 2

		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", splitSize)[0]
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	return nil
}

// validateExclusive fails when both the field and the named field are set.
func validateExclusive(fl validator.FieldLevel) bool {
	field := fl.Field()
	other := fl.Parent().FieldByName(fl.Param())

	if !field.IsValid() || !other.IsValid() {
		return true
	}

	return field.IsZero() || other.IsZero()
}

// validateNotNested fails when the field names a directory equal to or below the named field.
func validateNotNested(fl validator.FieldLevel) bool {
	field := fl.Field()
	other := fl.Parent().FieldByName(fl.Param())

	if field.Kind() != reflect.String || !other.IsValid() || other.Kind() != reflect.String {
		return true
	}

	if field.String() == "" || other.String() == "" {
		return true
	}

	return !Nested(field.String(), other.String())
}

// Nested reports whether dir is parent or lies below it.
func Nested(dir, parent string) bool {
	dirAbs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}

	parentAbs, err := filepath.Abs(parent)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(parentAbs, dirAbs)
	if err != nil {
		return false
	}

	if runtime.GOOS == "windows" && filepath.VolumeName(dirAbs) != filepath.VolumeName(parentAbs) {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
