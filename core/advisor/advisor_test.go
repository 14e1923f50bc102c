package advisor

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffopt/core/model"
)

func defaultAdvisor() *Advisor {
	return New(model.DefaultTariff(), model.DefaultAppliances())
}

func TestRateForBoundaries(t *testing.T) {
	a := defaultAdvisor()
	for _, s := range model.DefaultTariff().Slots {
		h, err := s.Start.Minutes()
		require.NoError(t, err)
		rate, cat := a.RateFor(h/60, h%60)
		assert.Equal(t, s.Rate, rate, "start of %s", s.Start)
		assert.Equal(t, s.Category, cat)
	}
	// 09:00 closes the morning peak and opens mid-peak.
	rate, cat := a.RateFor(9, 0)
	assert.Equal(t, 6.0, rate)
	assert.Equal(t, "mid-peak", cat)
	rate, _ = a.RateFor(8, 59)
	assert.Equal(t, 8.0, rate)
	rate, cat = a.RateFor(23, 30)
	assert.Equal(t, 5.0, rate)
	assert.Equal(t, "off-peak", cat)
}

func TestRateForFallsBackToFirstSlot(t *testing.T) {
	tariff := model.TariffTable{Slots: []model.TimeSlot{
		{Start: "06:00", End: "09:00", Rate: 8, Category: "peak"},
		{Start: "09:00", End: "12:00", Rate: 6, Category: "mid-peak"},
	}}
	a := New(tariff, nil)
	rate, cat := a.RateFor(2, 0)
	assert.Equal(t, 8.0, rate)
	assert.Equal(t, "peak", cat)
	rate, cat = a.RateFor(12, 0)
	assert.Equal(t, 8.0, rate)
	assert.Equal(t, "peak", cat)
}

func TestRateForEmptyTable(t *testing.T) {
	rate, cat := New(model.TariffTable{}, nil).RateFor(10, 0)
	assert.Zero(t, rate)
	assert.Empty(t, cat)
}

func TestCostForStart(t *testing.T) {
	a := defaultAdvisor()
	assert.Equal(t, 24.0, a.CostForStart(2.0, 1.5, 6))
	// 22:00 and 23:00 at 5.0, then 00:00 and 01:00 at 4.5.
	assert.Equal(t, 7.0*(5+5+4.5+4.5), a.CostForStart(7.0, 4.0, 22))
	// 08:30 crossing is priced at the rate of the top of the hour.
	assert.Equal(t, 2.0*8.0+2.0*0.5*6.0, a.CostForStart(2.0, 1.5, 8))
	assert.Equal(t, 0.0, a.CostForStart(2.0, 0, 8))
	assert.Equal(t, 0.0, a.CostForStart(2.0, -1, 8))
	assert.Equal(t, 0.0, a.CostForStart(2.0, math.NaN(), 8))
}

func TestCostForStartWholeDay(t *testing.T) {
	a := defaultAdvisor()
	want := 6*4.5 + 3*8.0 + 8*6.0 + 5*9.0 + 2*5.0
	for h := 0; h < HoursPerDay; h++ {
		assert.InDelta(t, want, a.CostForStart(1, 24, h), 1e-9, "start %d", h)
	}
}

func TestCostForStartRounding(t *testing.T) {
	tariff := model.TariffTable{Slots: []model.TimeSlot{{Start: "00:00", End: "24:00", Rate: 0.333, Category: "flat"}}}
	a := New(tariff, nil)
	assert.Equal(t, 1.0, a.CostForStart(1, 3, 0))
	assert.Equal(t, 0.33, a.CostForStart(1, 1, 5))
}

func TestOptimizeShape(t *testing.T) {
	a := defaultAdvisor()
	recs := a.Optimize([]int{1, 2, 3, 4, 5}, nil)
	require.Len(t, recs, 5)
	for _, r := range recs {
		require.Len(t, r.AllSlots, HoursPerDay, r.ApplianceName)
		assert.True(t, sort.SliceIsSorted(r.AllSlots, func(i, j int) bool {
			return r.AllSlots[i].Cost < r.AllSlots[j].Cost
		}))
		starts := map[string]bool{}
		for _, s := range r.AllSlots {
			starts[s.StartTime] = true
		}
		assert.Len(t, starts, HoursPerDay)
		assert.Equal(t, r.AllSlots[:3], r.BestSlots)
		assert.Equal(t, r.AllSlots[21:], r.WorstSlots)
		assert.LessOrEqual(t, r.WorstSlots[0].Cost, r.WorstSlots[2].Cost)

		last := r.AllSlots[len(r.AllSlots)-1]
		first := r.AllSlots[0]
		assert.Zero(t, last.SavingsVsPeak)
		assert.InDelta(t, last.Cost-first.Cost, first.SavingsVsPeak, 1e-9)
	}
}

func TestOptimizeWashingMachine(t *testing.T) {
	recs := defaultAdvisor().Optimize([]int{1}, model.Constraints{"max_hour": 3})
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "Washing Machine", r.ApplianceName)
	assert.Equal(t, 2.0, r.PowerKW)
	// Cheapest is 00:00 to 04:00 at 13.5; ties keep hour order.
	assert.Equal(t, []string{"00:00", "01:00", "02:00"}, []string{
		r.BestSlots[0].StartTime, r.BestSlots[1].StartTime, r.BestSlots[2].StartTime,
	})
	assert.Equal(t, 13.5, r.BestSlots[0].Cost)
	assert.Equal(t, "off-peak", r.BestSlots[0].RateType)
	// 1.5h truncates to one hour in the end label.
	assert.Equal(t, "01:00", r.BestSlots[0].EndTime)
	// 17:00-20:00 are the most expensive at 27.0.
	worst := r.WorstSlots[len(r.WorstSlots)-1]
	assert.Equal(t, 27.0, worst.Cost)
	assert.Equal(t, 13.5, r.BestSlots[0].SavingsVsPeak)
}

func TestOptimizeEndTimeWraps(t *testing.T) {
	recs := defaultAdvisor().Optimize([]int{3}, nil)
	require.Len(t, recs, 1)
	for _, s := range recs[0].AllSlots {
		if s.StartTime == "22:00" {
			assert.Equal(t, "02:00", s.EndTime)
			return
		}
	}
	t.Fatal("22:00 slot missing")
}

func TestOptimizeSkipsUnknownIDs(t *testing.T) {
	a := defaultAdvisor()
	recs := a.Optimize([]int{42, 2}, nil)
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].ApplianceID)
	assert.Empty(t, a.Optimize([]int{99}, nil))
	assert.Empty(t, a.Optimize(nil, nil))
}

func TestOptimizeKeepsSnapshotOrder(t *testing.T) {
	recs := defaultAdvisor().Optimize([]int{5, 1, 3}, nil)
	require.Len(t, recs, 3)
	assert.Equal(t, []int{1, 3, 5}, []int{recs[0].ApplianceID, recs[1].ApplianceID, recs[2].ApplianceID})
}

func TestNewCopiesSnapshot(t *testing.T) {
	tariff := model.DefaultTariff()
	apps := model.DefaultAppliances()
	a := New(tariff, apps)
	tariff.Slots[0].Rate = 100
	apps[0].PowerKW = 100
	rate, _ := a.RateFor(0, 0)
	assert.Equal(t, 4.5, rate)
	assert.Equal(t, 2.0, a.Optimize([]int{1}, nil)[0].PowerKW)
}

func TestCalculateSavings(t *testing.T) {
	rep := defaultAdvisor().CalculateSavings(model.ScheduleComparison{
		Current:   []model.CostItem{{Cost: 50}},
		Optimized: []model.CostItem{{Cost: 40}},
	})
	assert.Equal(t, model.SavingsReport{
		CurrentCost:       50,
		OptimizedCost:     40,
		DailySavings:      10,
		MonthlySavings:    300,
		YearlySavings:     3650,
		CO2ReductionKg:    8.2,
		SavingsPercentage: 20,
	}, rep)
}

func TestCalculateSavingsEmpty(t *testing.T) {
	rep := CalculateSavings(model.ScheduleComparison{})
	assert.Zero(t, rep.CurrentCost)
	assert.Zero(t, rep.SavingsPercentage)
	assert.Zero(t, rep.DailySavings)
}

func TestCalculateSavingsNegative(t *testing.T) {
	rep := CalculateSavings(model.ScheduleComparison{
		Current:   []model.CostItem{{Cost: 10}, {Cost: 5}},
		Optimized: []model.CostItem{{Cost: 20}},
	})
	assert.Equal(t, -5.0, rep.DailySavings)
	assert.Equal(t, -150.0, rep.MonthlySavings)
	assert.Equal(t, -33.3, rep.SavingsPercentage)
}

func TestCostForStartTerminatesForAllDurations(t *testing.T) {
	a := defaultAdvisor()
	for d := 0.05; d <= 24; d += 0.35 {
		for h := 0; h < HoursPerDay; h++ {
			assert.GreaterOrEqual(t, a.CostForStart(1.2, d, h), 0.0)
		}
	}
}

func TestRoundHalfEvenOnBinaryValue(t *testing.T) {
	assert.Equal(t, 2.67, round(2.675, 2))
	assert.Equal(t, 0.12, round(0.125, 2))
	assert.Equal(t, 0.38, round(0.375, 2))
	assert.Equal(t, 0.2, round(0.25, 1))
	assert.Equal(t, -0.12, round(-0.125, 2))
	assert.Equal(t, 1.01, round(1.0051, 2))
}

func TestCostForStartHalfCent(t *testing.T) {
	tariff := model.TariffTable{Slots: []model.TimeSlot{{Start: "00:00", End: "24:00", Rate: 1, Category: "flat"}}}
	assert.Equal(t, 0.12, New(tariff, nil).CostForStart(0.125, 1, 0))
}

func TestCalculateSavingsHalfway(t *testing.T) {
	rep := CalculateSavings(model.ScheduleComparison{
		Current:   []model.CostItem{{Cost: 400}},
		Optimized: []model.CostItem{{Cost: 399}},
	})
	assert.Equal(t, 0.2, rep.SavingsPercentage)

	rep = CalculateSavings(model.ScheduleComparison{
		Current:   []model.CostItem{{Cost: 2.675}},
		Optimized: []model.CostItem{{Cost: 1}},
	})
	assert.Equal(t, 2.67, rep.CurrentCost)
}

type countingLogger struct {
	nopLogger
	debug int
}

func (c *countingLogger) Debugf(string, ...any) { c.debug++ }

func TestRateForFallbackLogsOnce(t *testing.T) {
	tariff := model.TariffTable{Slots: []model.TimeSlot{
		{Start: "06:00", End: "09:00", Rate: 8, Category: "peak"},
	}}
	log := &countingLogger{}
	a := New(tariff, model.DefaultAppliances(), WithLogger(log))
	recs := a.Optimize([]int{1, 2, 3}, nil)
	require.Len(t, recs, 3)
	assert.Equal(t, 1, log.debug)
}
