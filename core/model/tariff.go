package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MinutesPerDay is the length of the tariff day in minutes.
const MinutesPerDay = 24 * 60

var (
	// ErrInvalidSlot reports a slot with an unparsable clock, an empty
	// interval or a negative rate.
	ErrInvalidSlot = errors.New("invalid tariff slot")
	// ErrCoverage reports a tariff table leaving part of the day unpriced.
	ErrCoverage = errors.New("tariff does not cover the whole day")
)

// Clock is a zero-padded "HH:MM" time of day. "24:00" is accepted as the
// end of the day. Clocks compare correctly as strings.
type Clock string

// ClockAt formats hour and minute as a Clock.
func ClockAt(hour, minute int) Clock {
	return Clock(fmt.Sprintf("%02d:%02d", hour, minute))
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() (int, error) {
	s := string(c)
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) != 2 || len(m) != 2 {
		return 0, fmt.Errorf("clock %q: expected HH:MM", s)
	}
	hh, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, err)
	}
	mm, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, err)
	}
	if hh < 0 || hh > 24 || mm < 0 || mm > 59 || (hh == 24 && mm != 0) {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return hh*60 + mm, nil
}

// TimeSlot prices the half-open interval [Start, End).
type TimeSlot struct {
	Start    Clock   `json:"start" yaml:"start"`
	End      Clock   `json:"end" yaml:"end"`
	Rate     float64 `json:"rate" yaml:"rate"`
	Category string  `json:"type" yaml:"type"`
}

// Contains reports whether t falls inside the slot.
func (s TimeSlot) Contains(t Clock) bool {
	return s.Start <= t && t < s.End
}

// TariffTable is an ordered list of priced time slots.
type TariffTable struct {
	Plan     string     `json:"tariff_plan" yaml:"tariff_plan"`
	Currency string     `json:"currency" yaml:"currency"`
	Slots    []TimeSlot `json:"time_slots" yaml:"time_slots"`
}

// Validate checks every slot and that the slots leave no minute of the day
// unpriced. Overlapping slots are accepted; the first match wins at lookup.
func (t TariffTable) Validate() error {
	if len(t.Slots) == 0 {
		return fmt.Errorf("%w: no time slots", ErrCoverage)
	}
	type span struct{ from, to int }
	spans := make([]span, 0, len(t.Slots))
	for i, s := range t.Slots {
		from, err := s.Start.Minutes()
		if err != nil {
			return fmt.Errorf("%w %d: %v", ErrInvalidSlot, i, err)
		}
		to, err := s.End.Minutes()
		if err != nil {
			return fmt.Errorf("%w %d: %v", ErrInvalidSlot, i, err)
		}
		if from >= to {
			return fmt.Errorf("%w %d: start %s not before end %s", ErrInvalidSlot, i, s.Start, s.End)
		}
		if s.Rate < 0 {
			return fmt.Errorf("%w %d: negative rate %v", ErrInvalidSlot, i, s.Rate)
		}
		spans = append(spans, span{from, to})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].from < spans[j].from })
	covered := 0
	for _, sp := range spans {
		if sp.from > covered {
			return fmt.Errorf("%w: gap %s-%s", ErrCoverage, clockFromMinutes(covered), clockFromMinutes(sp.from))
		}
		if sp.to > covered {
			covered = sp.to
		}
	}
	if covered < MinutesPerDay {
		return fmt.Errorf("%w: gap %s-24:00", ErrCoverage, clockFromMinutes(covered))
	}
	return nil
}

func clockFromMinutes(m int) Clock {
	return ClockAt(m/60, m%60)
}

// DefaultTariff returns the tariff installed when no plan has been stored.
func DefaultTariff() TariffTable {
	return TariffTable{
		Plan:     "Standard Time of Use",
		Currency: "₹",
		Slots: []TimeSlot{
			{Start: "00:00", End: "06:00", Rate: 4.5, Category: "off-peak"},
			{Start: "06:00", End: "09:00", Rate: 8.0, Category: "peak"},
			{Start: "09:00", End: "17:00", Rate: 6.0, Category: "mid-peak"},
			{Start: "17:00", End: "22:00", Rate: 9.0, Category: "peak"},
			{Start: "22:00", End: "24:00", Rate: 5.0, Category: "off-peak"},
		},
	}
}
