package program

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/nelc/eoxnelp/tests"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type failingCalendar struct{}

func (failingCalendar) ToHijri(time.Time) (string, error) { return "", errors.New("out of range") }

func TestConverter_ISODate(t *testing.T) {
	tests := []struct {
		name    string
		in      *string
		want    *string
		wantLog bool
	}{
		{name: "utc timestamp", in: strPtr("2023-01-01T12:00:00Z"), want: strPtr("2023-01-01")},
		{name: "late utc timestamp", in: strPtr("2024-03-10T23:59:59Z"), want: strPtr("2024-03-10")},
		{name: "offset keeps its own date", in: strPtr("2024-03-11T01:00:00+03:00"), want: strPtr("2024-03-11")},
		{name: "fractional seconds", in: strPtr("2024-03-11T10:00:00.123Z"), want: strPtr("2024-03-11")},
		{name: "nil", in: nil, want: nil},
		{name: "empty", in: strPtr(""), want: nil},
		{name: "garbage", in: strPtr("not-a-date"), want: nil, wantLog: true},
		{name: "date only", in: strPtr("2023-01-01"), want: nil, wantLog: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := testutil.NewLogger()
			conv := NewConverter(logger, nil)
			assert.Equal(t, tt.want, conv.ISODate(tt.in))
			assert.Equal(t, tt.wantLog, logger.Contains("ERROR", "Error parsing date string"))
		})
	}
}

func TestConverter_Hours(t *testing.T) {
	tests := []struct {
		in      *string
		want    *int
		wantLog bool
	}{
		{in: strPtr("2:31"), want: intPtr(3)},
		{in: strPtr("1:29"), want: intPtr(1)},
		{in: strPtr("0:45"), want: intPtr(1)},
		{in: strPtr("0:30"), want: intPtr(0)}, // half to even
		{in: strPtr("1:30"), want: intPtr(2)},
		{in: strPtr("5"), want: intPtr(5)},
		{in: strPtr("0"), want: intPtr(0)},
		{in: strPtr("2:99"), want: intPtr(2)},
		{in: strPtr("2:-5"), want: intPtr(2)},
		{in: nil, want: nil},
		{in: strPtr(""), want: nil},
		{in: strPtr("bad"), want: nil, wantLog: true},
		{in: strPtr("2:bad"), want: nil, wantLog: true},
		{in: strPtr("1:2:3"), want: nil, wantLog: true},
	}
	for _, tt := range tests {
		name := "<nil>"
		if tt.in != nil {
			name = fmt.Sprintf("%q", *tt.in)
		}
		t.Run(name, func(t *testing.T) {
			logger := testutil.NewLogger()
			conv := NewConverter(logger, nil)
			assert.Equal(t, tt.want, conv.Hours(tt.in))
			assert.Equal(t, tt.wantLog, logger.Contains("WARN", "Invalid time format"))
		})
	}
}

func TestConverter_Hijri(t *testing.T) {
	logger := testutil.NewLogger()
	conv := NewConverter(logger, UmmAlQura{})

	assert.Equal(t, strPtr("1445-09-01"), conv.Hijri(strPtr("2024-03-11")))
	assert.Nil(t, conv.Hijri(nil))
	assert.Nil(t, conv.Hijri(strPtr("11/03/2024")))
	assert.True(t, logger.Contains("ERROR", "Error parsing iso date"))

	logger = testutil.NewLogger()
	conv = NewConverter(logger, failingCalendar{})
	assert.Nil(t, conv.Hijri(strPtr("2024-03-11")))
	assert.True(t, logger.Contains("ERROR", "to hijri"))
}

func TestConverter_properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	conv := NewConverter(testutil.NewLogger(), nil)

	properties.Property("H:MM rounds hours plus minutes half to even", prop.ForAll(
		func(h, m int) bool {
			got := conv.Hours(strPtr(fmt.Sprintf("%d:%02d", h, m)))
			return got != nil && *got == int(math.RoundToEven(float64(h)+float64(m)/60))
		},
		gen.IntRange(0, 1000),
		gen.IntRange(0, 59),
	))

	properties.Property("out of range minutes are ignored", prop.ForAll(
		func(h, m int) bool {
			got := conv.Hours(strPtr(fmt.Sprintf("%d:%d", h, m)))
			return got != nil && *got == h
		},
		gen.IntRange(0, 1000),
		gen.IntRange(60, 999),
	))

	properties.Property("letters never parse", prop.ForAll(
		func(s string) bool {
			return conv.Hours(strPtr("x"+s)) == nil
		},
		gen.AlphaString(),
	))

	properties.Property("ISODate is the UTC calendar date", prop.ForAll(
		func(secs int64) bool {
			ts := time.Unix(secs, 0).UTC()
			got := conv.ISODate(strPtr(ts.Format("2006-01-02T15:04:05Z")))
			return got != nil && *got == ts.Format(isoDateLayout)
		},
		gen.Int64Range(0, 4102444800), // 1970 .. 2100
	))

	properties.TestingRun(t)
}
