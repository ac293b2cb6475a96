package program

import (
	"fmt"
	"time"

	"github.com/hablullah/go-hijri"
	"github.com/pkg/errors"
)

// HijriCalendar converts Gregorian dates to Hijri ISO dates (YYYY-MM-DD).
type HijriCalendar interface {
	ToHijri(date time.Time) (string, error)
}

// UmmAlQura is the official calendar of Saudi Arabia.
type UmmAlQura struct{}

var _ HijriCalendar = UmmAlQura{}

func (UmmAlQura) ToHijri(date time.Time) (string, error) {
	d, err := hijri.CreateUmmAlQuraDate(date)
	if err != nil {
		return "", errors.Wrapf(err, "converting %s to umm al-qura", date.Format(isoDateLayout))
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day), nil
}
