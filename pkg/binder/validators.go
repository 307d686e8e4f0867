package binder

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	dateRE       = regexp.MustCompile(`^\d{4}-(0[0-9]|1[0-2])-(0[0-9]|1[0-9]|2[0-9]|3[0-1])$`)
	cardNumberRE = regexp.MustCompile(`^LC-\d{6}$`)
	barcodeRE    = regexp.MustCompile(`^BC-\d{9}$`)
	pinRE        = regexp.MustCompile(`^\d{4,8}$`)
)

// dateValidator ensures the value is YYYY-MM-DD or empty. Pair it with
// `required` when the empty string should be rejected.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return dateRE.MatchString(value)
}

func cardNumberValidator(fl validator.FieldLevel) bool {
	return cardNumberRE.MatchString(fl.Field().String())
}

func barcodeValidator(fl validator.FieldLevel) bool {
	return barcodeRE.MatchString(fl.Field().String())
}

// pinValidator accepts 4 to 8 digits.
func pinValidator(fl validator.FieldLevel) bool {
	return pinRE.MatchString(fl.Field().String())
}
