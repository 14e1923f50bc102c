package advisor

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/tariffopt/core/model"
)

// RankedSlots is the number of entries in the best and worst slot lists.
const RankedSlots = 3

// Optimize ranks the 24 start hours of every requested appliance. Appliances
// are returned in snapshot order; unknown ids are skipped. Constraints are
// accepted but not applied.
func (a *Advisor) Optimize(ids []int, _ model.Constraints) []model.Recommendation {
	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	recs := make([]model.Recommendation, 0, len(ids))
	for _, app := range a.appliances {
		if _, ok := wanted[app.ID]; !ok {
			continue
		}
		recs = append(recs, a.Rank(app))
	}
	return recs
}

// Rank evaluates every start hour of a single appliance. Slots are sorted by
// cost with ties kept in hour order; the worst slots stay in ascending order.
func (a *Advisor) Rank(app model.Appliance) model.Recommendation {
	slots := a.scan(app)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Cost < slots[j].Cost })

	costs := make([]float64, len(slots))
	for i, s := range slots {
		costs[i] = s.Cost
	}
	peak := floats.Max(costs)
	for i := range slots {
		slots[i].SavingsVsPeak = round(peak-slots[i].Cost, 2)
	}

	n := RankedSlots
	if n > len(slots) {
		n = len(slots)
	}
	return model.Recommendation{
		ApplianceID:   app.ID,
		ApplianceName: app.Name,
		PowerKW:       app.PowerKW,
		DurationHours: app.DurationHours,
		BestSlots:     append([]model.ScheduleSlot(nil), slots[:n]...),
		WorstSlots:    append([]model.ScheduleSlot(nil), slots[len(slots)-n:]...),
		AllSlots:      slots,
	}
}

// scan prices every start hour in hour order.
func (a *Advisor) scan(app model.Appliance) []model.ScheduleSlot {
	slots := make([]model.ScheduleSlot, 0, HoursPerDay)
	// end_time truncates fractional durations.
	span := int(app.DurationHours)
	for hour := 0; hour < HoursPerDay; hour++ {
		_, category := a.RateFor(hour, 0)
		slots = append(slots, model.ScheduleSlot{
			StartTime: hourLabel(hour),
			EndTime:   hourLabel(mod24(hour + span)),
			Cost:      a.CostForStart(app.PowerKW, app.DurationHours, hour),
			RateType:  category,
		})
	}
	return slots
}

func hourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
