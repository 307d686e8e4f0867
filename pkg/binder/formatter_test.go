package binder

import (
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
)

type mockFieldError struct {
	tag   string
	field string
	param string
	kind  reflect.Kind
}

func (e *mockFieldError) Error() string           { return "Mock Field Error" }
func (e *mockFieldError) Tag() string             { return e.tag }
func (e *mockFieldError) ActualTag() string       { return e.tag }
func (e *mockFieldError) Namespace() string       { return "" }
func (e *mockFieldError) StructNamespace() string { return "" }
func (e *mockFieldError) Field() string           { return e.field }
func (e *mockFieldError) StructField() string     { return "" }
func (e *mockFieldError) Value() interface{}      { return "" }
func (e *mockFieldError) Param() string           { return e.param }
func (e *mockFieldError) Kind() reflect.Kind {
	if e.kind == 0 {
		return reflect.String
	}
	return e.kind
}
func (e *mockFieldError) Type() reflect.Type               { return reflect.TypeOf("") }
func (e *mockFieldError) Translate(_ ut.Translator) string { return "" }

func TestFormatValidationError(t *testing.T) {
	cases := []struct {
		name  string
		field string
		tag   string
		param string
		kind  reflect.Kind
		msg   string
	}{
		{"email", "email", email, "", 0, `"email" is not a valid email`},
		{"gt", "patron_id", gt, "0", reflect.Int, `"patron_id" must be greater than 0`},
		{"string max plural", "title", mx, "200", reflect.String, `"title" length must be less than or equal to 200 characters`},
		{"string max singular", "genre", mx, "1", reflect.String, `"genre" length must be less than or equal to 1 character`},
		{"string min plural", "password", mn, "8", reflect.String, `"password" length must be greater than or equal to 8 characters`},
		{"string min singular", "q", mn, "1", reflect.String, `"q" length must be greater than or equal to 1 character`},
		{"int max", "limit", mx, "200", reflect.Int, `"limit" must be less than or equal to 200`},
		{"int64 max", "limit", mx, "100", reflect.Int64, `"limit" must be less than or equal to 100`},
		{"uint max", "offset", mx, "1", reflect.Uint, `"offset" must be less than or equal to 1`},
		{"int min", "item_id", mn, "1", reflect.Int, `"item_id" must be greater than or equal to 1`},
		{"float min", "amount", mn, "0", reflect.Float64, `"amount" must be greater than or equal to 0`},
		{"slice max plural", "item_ids", mx, "5", reflect.Slice, `"item_ids" length must be less than or equal to 5 elements`},
		{"slice max singular", "item_ids", mx, "1", reflect.Slice, `"item_ids" length must be less than or equal to 1 element`},
		{"slice min plural", "item_ids", mn, "2", reflect.Slice, `"item_ids" length must be greater than or equal to 2 elements`},
		{"slice min singular", "item_ids", mn, "1", reflect.Slice, `"item_ids" length must be greater than or equal to 1 element`},
		{"ne", "status", ne, "pending", 0, `"status" can't be "pending"`},
		{"oneof", "media_type", oneof, "book dvd cd", 0, `"media_type" must be one of the following: "book", "dvd", "cd"`},
		{"required", "title", required, "", 0, `"title" is required`},
		{"required if", "card_number", requiredIf, "UserType patron", 0, `"card_number" is required`},
		{"card number", "card_number", cardNumber, "", 0, `"card_number" should be in the format of LC-000000`},
		{"barcode", "barcode", barcode, "", 0, `"barcode" should be in the format of BC-000000000`},
		{"pin", "pin", pin, "", 0, `"pin" must be 4 to 8 digits`},
		{"unknown tag", "notes", "foo", "", 0, `"notes" is invalid`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := mockFieldError{tag: tt.tag, field: tt.field, param: tt.param, kind: tt.kind}
			assert.Equal(t, tt.msg, formatValidationError(&err))
		})
	}
}
