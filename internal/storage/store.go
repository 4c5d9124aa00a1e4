// Package storage persists finished solve results under a data directory,
// one subdirectory per run with JSON metadata and a CSV time series.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Turbines  int                `json:"turbines"`
	Steps     int                `json:"steps"`
	Dt        float64            `json:"dt"`
	Method    string             `json:"method"`
	Cost      float64            `json:"cost"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Series is the per-step solve output written to series.csv.
type Series struct {
	Times  []float64
	Ref    []float64
	Power  []float64
	Pitch  [][]float64 // [turbine][step]
	Torque [][]float64
}

func (s *Store) runDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// Save writes the metadata and series for a finished solve and returns
// the run ID.
func (s *Store) Save(meta RunMetadata, series *Series) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Scenario, time.Now().Unix())
	meta.ID = runID
	meta.Timestamp = time.Now()

	dir := s.runDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(dir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	n := len(series.Pitch)
	header := []string{"t", "ref", "power"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("pitch%d", i), fmt.Sprintf("torque%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for k := range series.Times {
		row := []string{
			strconv.FormatFloat(series.Times[k], 'g', -1, 64),
			strconv.FormatFloat(series.Ref[k], 'g', -1, 64),
			strconv.FormatFloat(series.Power[k], 'g', -1, 64),
		}
		for i := 0; i < n; i++ {
			row = append(row,
				strconv.FormatFloat(series.Pitch[i][k], 'g', -1, 64),
				strconv.FormatFloat(series.Torque[i][k], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	return runID, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// List returns the metadata of all stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

// LoadSeries reads one run's time series back from series.csv.
func (s *Store) LoadSeries(runID string) (*Series, error) {
	f, err := os.Open(filepath.Join(s.runDir(runID), "series.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("storage: run %s has no samples", runID)
	}
	n := (len(rows[0]) - 3) / 2
	out := &Series{
		Pitch:  make([][]float64, n),
		Torque: make([][]float64, n),
	}
	parse := func(s string) float64 {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	for _, row := range rows[1:] {
		out.Times = append(out.Times, parse(row[0]))
		out.Ref = append(out.Ref, parse(row[1]))
		out.Power = append(out.Power, parse(row[2]))
		for i := 0; i < n; i++ {
			out.Pitch[i] = append(out.Pitch[i], parse(row[3+2*i]))
			out.Torque[i] = append(out.Torque[i], parse(row[4+2*i]))
		}
	}
	return out, nil
}
