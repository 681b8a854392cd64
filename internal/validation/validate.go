// Package validation gates upstream payloads: a payload that does not match
// its schema never reaches a transformer.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode parses data into dst and checks it against the schema's required
// fields. Type mismatches are reported, never coerced.
func Decode(schema string, data []byte, dst any) error {
	if err := decode(schema, data, dst); err != nil {
		metrics.ValidationFailures.WithLabelValues(schema).Inc()
		return err
	}
	return nil
}

func decode(schema string, data []byte, dst any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &weather.ValidationError{Schema: schema, Field: "$", Expected: "object", Received: "empty body"}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "$"
			}
			return &weather.ValidationError{
				Schema:   schema,
				Field:    field,
				Expected: typeErr.Type.String(),
				Received: typeErr.Value,
			}
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return &weather.ValidationError{
				Schema:   schema,
				Field:    "$",
				Expected: "valid JSON",
				Received: fmt.Sprintf("syntax error at offset %d", syntaxErr.Offset),
			}
		}
		return &weather.ValidationError{Schema: schema, Field: "$", Expected: "valid JSON", Received: err.Error()}
	}

	return check(schema, dst)
}

func check(schema string, dst any) error {
	rv := reflect.ValueOf(dst)
	for rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}

	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			if err := validate.Struct(rv.Index(i).Interface()); err != nil {
				return toValidationError(schema, fmt.Sprintf("[%d]", i), err)
			}
		}
		return nil
	}

	if err := validate.Struct(dst); err != nil {
		return toValidationError(schema, "", err)
	}
	return nil
}

func toValidationError(schema, prefix string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &weather.ValidationError{Schema: schema, Field: "$", Expected: "object", Received: err.Error()}
	}

	fe := fieldErrs[0]
	field := fe.Namespace()
	// drop the root struct name
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if prefix != "" {
		field = prefix + "." + field
	}

	expected := strings.TrimPrefix(fe.Type().String(), "*")
	received := "missing"
	if fe.Tag() != "required" {
		expected = fmt.Sprintf("%s (%s=%s)", expected, fe.Tag(), fe.Param())
		received = fmt.Sprintf("%v", derefValue(fe.Value()))
	}

	return &weather.ValidationError{
		Schema:   schema,
		Field:    field,
		Expected: expected,
		Received: received,
	}
}

func derefValue(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
