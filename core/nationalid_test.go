package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidNationalID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "10 digits", id: "1234567890", want: true},
		{name: "15 digits", id: "123456789012345", want: true},
		{name: "9 digits", id: "123456789", want: false},
		{name: "16 digits", id: "1234567890123456", want: false},
		{name: "letters", id: "12345abcde", want: false},
		{name: "spaces", id: " 1234567890", want: false},
		{name: "arabic-indic digits", id: "١٢٣٤٥٦٧٨٩٠", want: false},
		{name: "empty", id: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidNationalID(tt.id))
			if tt.want {
				assert.NoError(t, ValidateNationalID(tt.id))
			} else {
				assert.Equal(t, ErrInvalidNationalID, ValidateNationalID(tt.id))
			}
		})
	}
}
