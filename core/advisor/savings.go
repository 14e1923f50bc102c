package advisor

import (
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/tariffopt/core/model"
)

const (
	// DaysPerMonth and DaysPerYear scale daily savings.
	DaysPerMonth = 30
	DaysPerYear  = 365
	// EmissionFactorKgPerUnit converts daily savings into avoided CO2.
	EmissionFactorKgPerUnit = 0.82
)

// CalculateSavings compares the total cost of two schedules. Negative savings
// are reported as is. The percentage is 0 when the current schedule is free.
func (a *Advisor) CalculateSavings(data model.ScheduleComparison) model.SavingsReport {
	return CalculateSavings(data)
}

// CalculateSavings is the tariff independent form of Advisor.CalculateSavings.
func CalculateSavings(data model.ScheduleComparison) model.SavingsReport {
	current := floats.Sum(costs(data.Current))
	optimized := floats.Sum(costs(data.Optimized))
	daily := current - optimized

	pct := 0.0
	if current > 0 {
		pct = daily / current * 100
	}
	return model.SavingsReport{
		CurrentCost:       round(current, 2),
		OptimizedCost:     round(optimized, 2),
		DailySavings:      round(daily, 2),
		MonthlySavings:    round(daily*DaysPerMonth, 2),
		YearlySavings:     round(daily*DaysPerYear, 2),
		CO2ReductionKg:    round(daily*EmissionFactorKgPerUnit, 2),
		SavingsPercentage: round(pct, 1),
	}
}

func costs(items []model.CostItem) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = it.Cost
	}
	return out
}
