package program

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelc/eoxnelp/core"
)

func newValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate, translator
}

func fieldErrors(t *testing.T, err error) map[string]string {
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError, got %T", err)
	got := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		got[f.Field] = f.Error
	}
	return got
}

func TestDecodeMetadata(t *testing.T) {
	validate, translator := newValidator()

	tests := []struct {
		name    string
		raw     map[string]interface{}
		want    Metadata
		wantErr map[string]string
	}{
		{
			name: "valid",
			raw: map[string]interface{}{
				"program_code": " P-101 ", "type_of_activity": float64(135), "mandatory": "01", "program_approve": "00",
				"trainer_type": float64(99),
			},
			want: Metadata{ProgramCode: "P-101", TypeOfActivity: intPtr(135), Mandatory: "01", ProgramApprove: "00", TrainerType: 10},
		},
		{
			name: "numeric string activity",
			raw:  map[string]interface{}{"program_code": "P", "type_of_activity": "55", "mandatory": "00", "program_approve": "01"},
			want: Metadata{ProgramCode: "P", TypeOfActivity: intPtr(55), Mandatory: "00", ProgramApprove: "01", TrainerType: 10},
		},
		{
			name:    "bad mandatory",
			raw:     map[string]interface{}{"program_code": "P", "type_of_activity": 1, "mandatory": "02", "program_approve": "01"},
			wantErr: map[string]string{"mandatory": "mandatory must be one of: 01, 00"},
		},
		{
			name: "empty body",
			raw:  map[string]interface{}{},
			wantErr: map[string]string{
				"program_code":     "this field is required",
				"type_of_activity": "this field is required",
				"mandatory":        "this field is required",
				"program_approve":  "this field is required",
			},
		},
		{
			name:    "non-integer activity",
			raw:     map[string]interface{}{"program_code": "P", "type_of_activity": "abc", "mandatory": "01", "program_approve": "01"},
			wantErr: map[string]string{"type_of_activity": "a valid integer is required"},
		},
		{
			name:    "blank code",
			raw:     map[string]interface{}{"program_code": "   ", "type_of_activity": 1, "mandatory": "01", "program_approve": "01"},
			wantErr: map[string]string{"program_code": "this field is required"},
		},
		{
			name:    "bool flag",
			raw:     map[string]interface{}{"program_code": "P", "type_of_activity": 1, "mandatory": true, "program_approve": "01"},
			wantErr: map[string]string{"mandatory": "not a valid string"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMetadata(tt.raw, validate, translator)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, fieldErrors(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeMetadata_tooLongCode(t *testing.T) {
	validate, translator := newValidator()
	code := ""
	for i := 0; i < 65; i++ {
		code += "x"
	}
	_, err := DecodeMetadata(
		map[string]interface{}{"program_code": code, "type_of_activity": 1, "mandatory": "01", "program_approve": "01"},
		validate, translator,
	)
	assert.Contains(t, fieldErrors(t, err), "program_code")
}
