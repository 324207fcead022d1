package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/sphfluid/internal/metrics"
	"github.com/san-kum/sphfluid/internal/particles"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteFramesCSV writes one row per particle per frame.
func WriteFramesCSV(w io.Writer, frames []particles.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(frameHeader); err != nil {
		return err
	}

	row := make([]string, len(frameHeader))
	for _, f := range frames {
		for i, st := range f.States {
			row[0] = strconv.Itoa(f.Step)
			row[1] = strconv.Itoa(i)
			row[2] = formatFloat(st.Position.X)
			row[3] = formatFloat(st.Position.Y)
			row[4] = formatFloat(st.Position.Z)
			row[5] = formatFloat(st.Velocity.X)
			row[6] = formatFloat(st.Velocity.Y)
			row[7] = formatFloat(st.Velocity.Z)
			row[8] = formatFloat(st.Density)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteSeriesCSV(w io.Writer, s *metrics.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"step"}, metrics.SeriesColumns...)); err != nil {
		return err
	}
	for i, values := range s.Rows {
		row := []string{strconv.Itoa(s.Steps[i])}
		for _, v := range values {
			row = append(row, formatFloat(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Run     *RunMetadata         `json:"run"`
	Columns []string             `json:"columns"`
	Steps   []int                `json:"steps"`
	Series  [][]float64          `json:"series"`
	Frames  []particles.Snapshot `json:"frames,omitempty"`
}

// ExportJSON writes a run's metadata and series, plus frames when given, as
// one indented JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, series *metrics.Series, frames []particles.Snapshot) error {
	data := ExportData{
		Run:     meta,
		Columns: metrics.SeriesColumns,
		Frames:  frames,
	}
	if series != nil {
		data.Steps = series.Steps
		data.Series = series.Rows
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
