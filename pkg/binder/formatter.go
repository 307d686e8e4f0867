package binder

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	timepkg "time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

const (
	barcode    = "barcode"
	cardNumber = "card_number"
	date       = "date"
	email      = "email"
	gt         = "gt"
	gte        = "gte"
	mx         = "max"
	mn         = "min"
	ne         = "ne"
	oneof      = "oneof"
	pin        = "pin"
	required   = "required"
	requiredIf = "required_if"
)

var (
	timeType = reflect.TypeOf(timepkg.Time{})
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func isNumeric(kind reflect.Kind) bool {
	//exhaustive:ignore
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func plural(word, n string) string {
	if n == "1" {
		return word
	}
	return word + "s"
}

func formatBound(field string, err validator.FieldError, comparison string) string {
	if isNumeric(err.Kind()) {
		return fmt.Sprintf("%q must be %s %s", field, comparison, err.Param())
	}
	unit := "character"
	if err.Kind() == reflect.Slice {
		unit = "element"
	}
	return fmt.Sprintf("%q length must be %s %s %s", field, comparison, err.Param(), plural(unit, err.Param()))
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case barcode:
		return fmt.Sprintf("%q should be in the format of BC-000000000", field)
	case cardNumber:
		return fmt.Sprintf("%q should be in the format of LC-000000", field)
	case date:
		return fmt.Sprintf("%q should be in the format of YYYY-MM-DD", field)
	case email:
		return fmt.Sprintf("%q is not a valid email", field)
	case gt:
		v := err.Param()
		if v == "" && err.Type() == timeType {
			v = "now"
		}
		return fmt.Sprintf("%q must be greater than %s", field, v)
	case gte:
		v := err.Param()
		if v == "" && err.Type() == timeType {
			v = "now"
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, v)
	case mx:
		return formatBound(field, err, "less than or equal to")
	case mn:
		return formatBound(field, err, "greater than or equal to")
	case ne:
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	case oneof:
		valids := []string{}
		for _, p := range strings.Fields(err.Param()) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case pin:
		return fmt.Sprintf("%q must be 4 to 8 digits", field)
	case required, requiredIf:
		return fmt.Sprintf("%q is required", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}
