// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const codeValidation = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// nameTags are consulted in order to report a field by its external name.
var nameTags = []string{"query", "koanf", "json"}

// FieldError describes one field that failed validation.
type FieldError struct {
	Field   string // dotted external path, e.g. "recommend.pearson.threshold"
	Tag     string
	Param   string
	Value   any
	Message string
}

func (e FieldError) Error() string { return e.Message }

// RequestValidationError collects every failing field of one struct.
type RequestValidationError struct {
	Fields []FieldError
}

func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// APIError is the error body the HTTP layer renders for validation failures.
type APIError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToAPIError renders the failures as a VALIDATION_ERROR body. A single
// failure is reported inline; several are listed under "fields".
func (ve *RequestValidationError) ToAPIError() *APIError {
	apiErr := &APIError{Code: codeValidation, Message: "Validation failed"}

	switch len(ve.Fields) {
	case 0:
	case 1:
		f := ve.Fields[0]
		apiErr.Message = f.Message
		apiErr.Details = map[string]any{"field": f.Field, "tag": f.Tag, "value": f.Value}
	default:
		fields := make([]map[string]any, len(ve.Fields))
		for i, f := range ve.Fields {
			fields[i] = map[string]any{"field": f.Field, "tag": f.Tag, "message": f.Message}
		}
		apiErr.Message = ve.Error()
		apiErr.Details = map[string]any{"fields": fields}
	}
	return apiErr
}

// GetValidator returns the shared validator with the custom rules registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(externalName)

		custom := map[string]validator.Func{
			"similarity": validateSimilarity, // finite value in [-1, 1]
			"finite":     validateFinite,     // not NaN or infinite
		}
		for tag, fn := range custom {
			if err := validate.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("register %s validator: %v", tag, err))
			}
		}
	})
	return validate
}

// externalName reports a field by its query, koanf or json name.
func externalName(fld reflect.StructField) string {
	for _, tag := range nameTags {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func validateSimilarity(fl validator.FieldLevel) bool {
	v, ok := floatValue(fl.Field())
	return ok && !math.IsNaN(v) && v >= -1 && v <= 1
}

func validateFinite(fl validator.FieldLevel) bool {
	v, ok := floatValue(fl.Field())
	return ok && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// floatValue dereferences pointers; a nil pointer is treated as valid.
func floatValue(field reflect.Value) (float64, bool) {
	for field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return 0, true
		}
		field = field.Elem()
	}
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		return field.Float(), true
	default:
		return 0, false
	}
}

// ValidateStruct runs the tag rules on s and returns nil when they pass.
//
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    respondValidationError(w, r, verr)
//	    return
//	}
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fieldPath(fe),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return &RequestValidationError{Fields: out}
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

// messages maps a tag to a template taking the field path and the tag param.
var messages = map[string]string{
	"required":      "%[1]s is required",
	"similarity":    "%[1]s must be a similarity between -1 and 1",
	"finite":        "%[1]s must be a finite number",
	"hostname_port": "%[1]s must be host:port",
	"oneof":         "%[1]s must be one of: %[2]s",
	"gte":           "%[1]s must be greater than or equal to %[2]s",
	"lte":           "%[1]s must be less than or equal to %[2]s",
	"gt":            "%[1]s must be greater than %[2]s",
	"lt":            "%[1]s must be less than %[2]s",
	"gtfield":       "%[1]s must be greater than %[2]s",
	"gtefield":      "%[1]s must be greater than or equal to %[2]s",
	"required_if":   "%[1]s is required when %[2]s",
}

func message(fe validator.FieldError) string {
	field, tag, param := fieldPath(fe), fe.Tag(), fe.Param()

	if tmpl, ok := messages[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
