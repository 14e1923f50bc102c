package advisor

import (
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/tariffopt/core/logger"
	"github.com/kilianp07/tariffopt/core/model"
)

// HoursPerDay is the number of candidate start hours evaluated per appliance.
const HoursPerDay = 24

// Advisor evaluates appliance schedules against one tariff snapshot.
type Advisor struct {
	tariff     model.TariffTable
	appliances []model.Appliance
	log        logger.Logger

	fallbackOnce sync.Once
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(a *Advisor) {
		if l != nil {
			a.log = l
		}
	}
}

// New returns an Advisor working on copies of the given tariff and appliances.
func New(tariff model.TariffTable, appliances []model.Appliance, opts ...Option) *Advisor {
	t := tariff
	t.Slots = append([]model.TimeSlot(nil), tariff.Slots...)
	a := &Advisor{
		tariff:     t,
		appliances: append([]model.Appliance(nil), appliances...),
		log:        nopLogger{},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Tariff returns the tariff snapshot.
func (a *Advisor) Tariff() model.TariffTable { return a.tariff }

// exactExp is small enough that NewFromFloatWithExponent keeps every binary
// digit of a float64.
const exactExp = -1074

// round rounds the exact binary value of v half to even, so 2.675 (stored as
// 2.67499...) gives 2.67 and 0.125 gives 0.12.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloatWithExponent(v, exactExp).RoundBank(places).InexactFloat64()
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
