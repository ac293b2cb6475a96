package program

import (
	"encoding/json"
	"math"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/nelc/eoxnelp/core"
)

var (
	invalidIntegerText = "a valid integer is required"
	invalidStringText  = "not a valid string"
)

// DecodeMetadata builds validated Metadata from a raw JSON object, as posted by clients or read from the
// course settings. trainer_type is read-only and always reset to its default.
func DecodeMetadata(raw map[string]interface{}, validate *validator.Validate, translator ut.Translator) (Metadata, error) {
	decodeErrs := make(map[string]string)
	md := Metadata{TrainerType: DefaultTrainerType}

	if v, ok := raw["type_of_activity"]; ok && v != nil {
		if n, ok := toInt(v); ok {
			md.TypeOfActivity = &n
		} else {
			decodeErrs["type_of_activity"] = invalidIntegerText
		}
	}
	for field, dst := range map[string]*string{
		"program_code":    &md.ProgramCode,
		"mandatory":       &md.Mandatory,
		"program_approve": &md.ProgramApprove,
	} {
		v, ok := raw[field]
		if !ok || v == nil {
			continue
		}
		if s, ok := toString(v); ok {
			*dst = s
		} else {
			decodeErrs[field] = invalidStringText
		}
	}
	md.ProgramCode = core.CleanString(md.ProgramCode)

	fldErrs := make(map[string]string)
	if err := validate.Struct(md); err != nil {
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return Metadata{}, err
		}
		for _, vErr := range vErrs {
			fldErrs[vErr.Field()] = vErr.Translate(translator)
		}
	}
	for field, msg := range decodeErrs {
		fldErrs[field] = msg
	}
	if len(fldErrs) > 0 {
		flds := make([]core.FieldError, 0, len(fldErrs))
		for field, msg := range fldErrs {
			flds = append(flds, core.FieldError{Field: field, Error: msg})
		}
		return Metadata{}, core.NewValidationError(nil, flds...)
	}
	return md, nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		return i, err == nil
	case string:
		i, err := strconv.Atoi(core.CleanString(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func toString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case json.Number:
		return s.String(), true
	default:
		return "", false
	}
}

func stringValue(m map[string]interface{}, key string) *string {
	if v, ok := m[key]; ok && v != nil {
		if s, ok := toString(v); ok {
			return &s
		}
	}
	return nil
}

func intValue(m map[string]interface{}, key string) *int {
	if v, ok := m[key]; ok && v != nil {
		if n, ok := toInt(v); ok {
			return &n
		}
	}
	return nil
}
