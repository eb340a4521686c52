package storage

import (
	"os"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/pkoval/fluidlab/internal/analysis"
)

// SummaryRow is one metric's statistics in summary.csv.
type SummaryRow struct {
	Metric string  `csv:"metric"`
	Final  float64 `csv:"final"`
	Mean   float64 `csv:"mean"`
	StdDev float64 `csv:"stddev"`
	Min    float64 `csv:"min"`
	Max    float64 `csv:"max"`
	Median float64 `csv:"median"`
}

// SummarizeSeries builds summary rows for every metric, sorted by name.
func SummarizeSeries(series map[string][]float64) []SummaryRow {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]SummaryRow, 0, len(names))
	for _, name := range names {
		s := analysis.Summarize(series[name])
		rows = append(rows, SummaryRow{
			Metric: name,
			Final:  s.Final,
			Mean:   s.Mean,
			StdDev: s.StdDev,
			Min:    s.Min,
			Max:    s.Max,
			Median: s.Median,
		})
	}
	return rows
}

func writeSummary(path string, series map[string][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.Marshal(SummarizeSeries(series), file)
}
