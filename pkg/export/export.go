// Package export renders solve results for external consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/healthflow/roster/core/model"
)

// WriteJSON writes the full result to w in JSON format.
func WriteJSON(w io.Writer, res model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes one row per assigned shift, ordered by nurse then day.
func WriteCSV(w io.Writer, res model.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"nurse_id", "day", "date", "shift", "hours"}); err != nil {
		return err
	}
	for _, r := range res.Schedule.Rotations {
		for _, a := range r.Days {
			date, _ := dateFor(res, a.Day, a.Type)
			rec := []string{
				r.NurseID,
				strconv.Itoa(a.Day),
				date,
				a.Type.String(),
				strconv.FormatFloat(a.Type.Hours(), 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCoverageCSV writes one row per shift slot with demand and staffing.
func WriteCoverageCSV(w io.Writer, res model.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "shift", "demand", "assigned", "shortage"}); err != nil {
		return err
	}
	entries := append([]model.CoverageEntry(nil), res.Coverage...)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return entries[i].Type < entries[j].Type
	})
	for _, e := range entries {
		rec := []string{
			e.Date,
			e.Type,
			strconv.Itoa(e.Demand),
			strconv.Itoa(e.Assigned),
			strconv.Itoa(e.Shortage),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func dateFor(res model.Result, day int, t model.ShiftType) (string, bool) {
	for _, e := range res.Coverage {
		if e.Day == day && e.Type == t.String() {
			return e.Date, true
		}
	}
	return "", false
}
