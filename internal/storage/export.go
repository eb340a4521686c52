package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkoval/fluidlab/internal/fluid"
	"github.com/pkoval/fluidlab/internal/sim"
)

// ExportData is the self-contained JSON form of a run.
type ExportData struct {
	Params    fluid.Params         `json:"params"`
	Seed      int64                `json:"seed"`
	Width     float64              `json:"width"`
	Height    float64              `json:"height"`
	Steps     int                  `json:"steps"`
	Series    map[string][]float64 `json:"series"`
	Values    map[string]float64   `json:"values"`
	Particles []fluid.Particle     `json:"particles"`
	Anomalies int                  `json:"anomalies"`
}

// ExportJSON writes a run as indented JSON to path.
func ExportJSON(path string, info RunInfo, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, info, result)
}

// WriteJSON writes a run as indented JSON to w, stdout included.
func WriteJSON(w io.Writer, info RunInfo, result *sim.Result) error {
	data := ExportData{
		Params:    info.Params,
		Seed:      info.Seed,
		Width:     info.Width,
		Height:    info.Height,
		Steps:     result.Steps,
		Series:    result.Series,
		Values:    result.Values,
		Particles: result.Final,
		Anomalies: result.Anomalies,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
