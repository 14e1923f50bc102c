package model

// Constraints is accepted by the optimizer for forward compatibility. It has
// no effect on the computation.
type Constraints map[string]any

// ScheduleSlot is the cost of starting an appliance at a given hour.
type ScheduleSlot struct {
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Cost          float64 `json:"cost"`
	RateType      string  `json:"rate_type"`
	SavingsVsPeak float64 `json:"savings_vs_peak"`
}

// Recommendation ranks the 24 start hours of one appliance.
type Recommendation struct {
	ApplianceID   int            `json:"appliance_id"`
	ApplianceName string         `json:"appliance_name"`
	PowerKW       float64        `json:"power_kw"`
	DurationHours float64        `json:"duration_hours"`
	BestSlots     []ScheduleSlot `json:"best_slots"`
	WorstSlots    []ScheduleSlot `json:"worst_slots"`
	AllSlots      []ScheduleSlot `json:"all_slots"`
}

// CostItem is one priced entry of a schedule supplied for comparison.
type CostItem struct {
	Cost float64 `json:"cost"`
}

// ScheduleComparison pairs a baseline schedule with an optimized one.
type ScheduleComparison struct {
	Current   []CostItem `json:"current"`
	Optimized []CostItem `json:"optimized"`
}

// SavingsReport summarizes the difference between two schedules.
type SavingsReport struct {
	CurrentCost       float64 `json:"current_cost"`
	OptimizedCost     float64 `json:"optimized_cost"`
	DailySavings      float64 `json:"daily_savings"`
	MonthlySavings    float64 `json:"monthly_savings"`
	YearlySavings     float64 `json:"yearly_savings"`
	CO2ReductionKg    float64 `json:"co2_reduction_kg"`
	SavingsPercentage float64 `json:"savings_percentage"`
}
