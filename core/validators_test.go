package core

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validated struct {
	Code       string `json:"code" validate:"required,notblank"`
	Flag       string `json:"flag" validate:"required,oneof=01 00"`
	NationalID string `json:"national_id" validate:"omitempty,nationalid"`
}

func newTestValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)
	return validate, translator
}

func TestInitValidators(t *testing.T) {
	validate, translator := newTestValidator()

	tests := []struct {
		name string
		data validated
		want map[string]string
	}{
		{name: "valid", data: validated{Code: "P1", Flag: "01", NationalID: "1234567890"}},
		{
			name: "blank code",
			data: validated{Code: "   ", Flag: "00"},
			want: map[string]string{"code": "this field may not be blank"},
		},
		{
			name: "missing fields",
			data: validated{},
			want: map[string]string{"code": "this field is required", "flag": "this field is required"},
		},
		{
			name: "flag out of choices",
			data: validated{Code: "P1", Flag: "02"},
			want: map[string]string{"flag": "flag must be one of: 01, 00"},
		},
		{
			name: "bad national id",
			data: validated{Code: "P1", Flag: "01", NationalID: "123"},
			want: map[string]string{"national_id": "national_id must be digits only and 10–15 characters"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.data)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			got := make(map[string]string)
			for _, fe := range err.(validator.ValidationErrors) {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
