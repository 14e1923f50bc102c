package advisor

import "github.com/kilianp07/tariffopt/core/model"

// RateFor returns the rate and category applying at hour:minute. The first
// slot containing the time wins. When no slot matches, the first slot of the
// table is used; an empty table yields a zero rate.
func (a *Advisor) RateFor(hour, minute int) (float64, string) {
	slots := a.tariff.Slots
	if len(slots) == 0 {
		return 0, ""
	}
	t := model.ClockAt(hour, minute)
	for _, s := range slots {
		if s.Contains(t) {
			return s.Rate, s.Category
		}
	}
	a.fallbackOnce.Do(func() {
		a.log.Debugf("no tariff slot for %s, using %s-%s", t, slots[0].Start, slots[0].End)
	})
	return slots[0].Rate, slots[0].Category
}
