package advisor

import "math"

// CostForStart returns the cost of running a load of powerKW for
// durationHours starting at the top of startHour, rounded to 2 decimals.
//
// The run is consumed in segments of at most one hour. Each segment is priced
// at the rate active at the top of its hour, even when a tariff boundary
// falls inside the hour.
func (a *Advisor) CostForStart(powerKW, durationHours float64, startHour int) float64 {
	if !(durationHours > 0) || math.IsInf(durationHours, 1) {
		return 0
	}
	total := 0.0
	hour := startHour
	remaining := durationHours
	for remaining > 0 {
		rate, _ := a.RateFor(mod24(hour), 0)
		segment := math.Min(remaining, 1.0)
		total += powerKW * segment * rate
		remaining -= segment
		hour++
	}
	return round(total, 2)
}

func mod24(h int) int {
	h %= HoursPerDay
	if h < 0 {
		h += HoursPerDay
	}
	return h
}
