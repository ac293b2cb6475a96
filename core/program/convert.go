package program

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nelc/eoxnelp/core"
)

const isoDateLayout = "2006-01-02"

// Converter turns course listing values into lookup record values.
// Parsing failures are logged and degrade to nil.
type Converter struct {
	logger   core.Logger
	calendar HijriCalendar
}

func NewConverter(logger core.Logger, calendar HijriCalendar) *Converter {
	if calendar == nil {
		calendar = UmmAlQura{}
	}
	return &Converter{logger: logger, calendar: calendar}
}

// ISODate extracts the calendar date of a timestamp such as 2023-01-01T12:00:00Z.
// The date is the one of the timestamp's own offset.
func (c *Converter) ISODate(timestamp *string) *string {
	if timestamp == nil || *timestamp == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *timestamp)
	if err != nil {
		c.logger.Error(fmt.Sprintf("Error parsing date string %q", *timestamp), err)
		return nil
	}
	date := t.Format(isoDateLayout)
	return &date
}

// Hijri converts an ISO date to its Hijri equivalent. nil input is never converted.
func (c *Converter) Hijri(isoDate *string) *string {
	if isoDate == nil {
		return nil
	}
	t, err := time.Parse(isoDateLayout, *isoDate)
	if err != nil {
		c.logger.Error(fmt.Sprintf("Error parsing iso date %q", *isoDate), err)
		return nil
	}
	h, err := c.calendar.ToHijri(t)
	if err != nil {
		c.logger.Error(fmt.Sprintf("Error converting %q to hijri", *isoDate), err)
		return nil
	}
	return &h
}

// Hours parses an effort string "H" or "H:MM" into whole hours, rounding half to even.
// Minutes outside [0, 59] count as zero.
func (c *Converter) Hours(effort *string) *int {
	if effort == nil || *effort == "" {
		return nil
	}
	s := strings.TrimSpace(*effort)
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		c.logger.Warn(fmt.Sprintf("Invalid time format %q", *effort))
		return nil
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		c.logger.Warn(fmt.Sprintf("Invalid time format %q", *effort), err)
		return nil
	}
	if len(parts) == 1 {
		return &hours
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		c.logger.Warn(fmt.Sprintf("Invalid time format %q", *effort), err)
		return nil
	}
	if minutes < 0 || minutes > 59 {
		minutes = 0
	}
	rounded := int(math.RoundToEven(float64(hours) + float64(minutes)/60))
	return &rounded
}
