package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/pkoval/fluidlab/internal/fluid"
	"github.com/pkoval/fluidlab/internal/sim"
)

// ErrNotFound reports a run id with no directory under the store.
var ErrNotFound = errors.New("storage: run not found")

// Store persists runs under a base directory, one subdirectory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo is the metadata written alongside each run.
type RunInfo struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Steps     int                `json:"steps"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Params    fluid.Params       `json:"params"`
	Values    map[string]float64 `json:"values"`
	Anomalies int                `json:"anomalies"`
	ElapsedMS float64            `json:"elapsed_ms"`
}

// Save writes a completed run: metadata.json, series.csv with one column
// per metric, particles.csv with the final frame, and summary.csv with
// per-metric statistics. It stamps the run id and timestamp and returns
// the id.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("fluid-%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	info.ID = runID
	info.Timestamp = time.Now()
	info.Steps = result.Steps
	info.Values = result.Values
	info.Anomalies = result.Anomalies
	info.ElapsedMS = float64(result.Elapsed.Microseconds()) / 1000.0

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		return "", err
	}

	if err := writeSeries(filepath.Join(runDir, "series.csv"), result.Series); err != nil {
		return "", err
	}
	if err := writeParticles(filepath.Join(runDir, "particles.csv"), result.Final); err != nil {
		return "", err
	}
	if err := writeSummary(filepath.Join(runDir, "summary.csv"), result.Series); err != nil {
		return "", err
	}

	return runID, nil
}

func writeSeries(path string, series map[string][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	header := append([]string{"step"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	length := 0
	for _, vals := range series {
		if len(vals) > length {
			length = len(vals)
		}
	}

	for i := 0; i < length; i++ {
		row := []string{strconv.Itoa(i + 1)}
		for _, name := range names {
			vals := series[name]
			if i < len(vals) {
				row = append(row, strconv.FormatFloat(vals[i], 'f', 6, 64))
			} else {
				row = append(row, "0")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func writeParticles(path string, particles []fluid.Particle) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"id", "x", "y", "vx", "vy", "density", "pressure", "temperature"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range particles {
		row := []string{
			strconv.Itoa(p.ID),
			strconv.FormatFloat(p.X, 'f', 6, 64),
			strconv.FormatFloat(p.Y, 'f', 6, 64),
			strconv.FormatFloat(p.VX, 'f', 6, 64),
			strconv.FormatFloat(p.VY, 'f', 6, 64),
			strconv.FormatFloat(p.Density, 'f', 6, 64),
			strconv.FormatFloat(p.Pressure, 'f', 6, 64),
			strconv.FormatFloat(p.Temperature, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// List returns metadata for every readable run, newest first.
// Unreadable or foreign directories are skipped.
func (s *Store) List() ([]RunInfo, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunInfo{}, nil
		}
		return nil, err
	}

	runs := make([]RunInfo, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var info RunInfo
		if err := json.Unmarshal(data, &info); err != nil {
			continue
		}

		runs = append(runs, info)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunInfo, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var info RunInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

// LoadSeries reads series.csv back into step indices and per-metric
// columns. Malformed rows are skipped.
func (s *Store) LoadSeries(runID string) ([]int, map[string][]float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "series.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []int{}, map[string][]float64{}, nil
	}

	names := records[0][1:]
	steps := make([]int, 0, len(records)-1)
	series := make(map[string][]float64, len(names))

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != len(names)+1 {
			continue
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		steps = append(steps, step)

		for j, name := range names {
			val, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				val = 0
			}
			series[name] = append(series[name], val)
		}
	}

	return steps, series, nil
}

// LoadParticles reads the final frame back from particles.csv.
func (s *Store) LoadParticles(runID string) ([]fluid.Particle, error) {
	csvPath := filepath.Join(s.baseDir, runID, "particles.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 8

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	particles := make([]fluid.Particle, 0, len(records))
	for i := 1; i < len(records); i++ {
		record := records[i]

		id, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}

		vals := make([]float64, 7)
		ok := true
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		particles = append(particles, fluid.Particle{
			ID: id,
			X:  vals[0], Y: vals[1],
			VX: vals[2], VY: vals[3],
			Density:     vals[4],
			Pressure:    vals[5],
			Temperature: vals[6],
		})
	}

	return particles, nil
}
