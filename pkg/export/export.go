package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/tariffopt/core/model"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Header is the CSV header row.
var Header = []string{"appliance_id", "appliance_name", "start_time", "end_time", "cost", "rate_type", "savings_vs_peak"}

// Write encodes recs in the given format.
func Write(w io.Writer, f Format, recs []model.Recommendation) error {
	switch f {
	case FormatJSON, "":
		return WriteJSON(w, recs)
	case FormatCSV:
		return WriteCSV(w, recs)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteJSON writes the recommendations to w as an indented JSON array.
func WriteJSON(w io.Writer, recs []model.Recommendation) error {
	if recs == nil {
		recs = []model.Recommendation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// WriteCSV writes one row per ranked start hour, cheapest first within each
// appliance.
func WriteCSV(w io.Writer, recs []model.Recommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range recs {
		id := strconv.Itoa(r.ApplianceID)
		for _, s := range r.AllSlots {
			rec := []string{
				id,
				r.ApplianceName,
				s.StartTime,
				s.EndTime,
				strconv.FormatFloat(s.Cost, 'f', -1, 64),
				s.RateType,
				strconv.FormatFloat(s.SavingsVsPeak, 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
