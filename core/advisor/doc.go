// Package advisor ranks the start hours of household appliances against a
// time-of-use tariff.
//
// An Advisor is built from an immutable snapshot of the tariff table and the
// appliance list. It performs no I/O and keeps no state between calls, so a
// fresh Advisor can be constructed for every request and shared freely
// between goroutines.
package advisor
