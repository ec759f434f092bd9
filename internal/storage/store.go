package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/poolsim/internal/dynamo"
	"github.com/san-kum/poolsim/internal/physics"
)

// Fields are the per-ball columns of states.csv, in order.
var Fields = []string{"x", "z", "vx", "vz", "qw", "qx", "qy", "qz"}

var (
	ErrUnknownField = errors.New("storage: unknown field")
	ErrBallRange    = errors.New("storage: ball index out of range")
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

type TableMeta struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Layout    string             `json:"layout"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Balls     int                `json:"balls"`
	Table     TableMeta          `json:"table"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes meta and the recorded states of result under a new run
// directory and returns its id. Non-finite metric values are dropped since
// JSON cannot carry them.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Metrics = make(map[string]float64, len(result.Metrics))
	for name, v := range result.Metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			meta.Metrics[name] = v
		}
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	if err := writeStates(filepath.Join(runDir, "states.csv"), result); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if len(result.States) == 0 {
		w.Flush()
		return w.Error()
	}

	n := len(result.States[0].Balls)
	header := make([]string, 0, 1+n*len(Fields))
	header = append(header, "time")
	for i := 0; i < n; i++ {
		for _, field := range Fields {
			header = append(header, fmt.Sprintf("b%d_%s", i, field))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, st := range result.States {
		row[0] = strconv.FormatFloat(result.Times[i], 'g', -1, 64)
		for j, b := range st.Balls {
			vals := ballFields(b)
			for k, v := range vals {
				row[1+j*len(Fields)+k] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func ballFields(b physics.Ball) [8]float64 {
	q := b.Orientation
	return [8]float64{
		b.Position.X(), b.Position.Z(),
		b.Velocity.X(), b.Velocity.Z(),
		q.W, q.V.X(), q.V.Y(), q.V.Z(),
	}
}

// List returns the metadata of every stored run, oldest first. A missing
// base directory holds no runs.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates returns the recorded rows without the time column, and the
// times separately.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "states.csv")
	file, err := os.Open(csvPath)
	if err != nil {
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
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}

		state := make([]float64, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			state[j-1] = val
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}

// Column extracts one field of one ball from every row.
func Column(states [][]float64, ball int, field string) ([]float64, error) {
	k := -1
	for i, f := range Fields {
		if f == field {
			k = i
			break
		}
	}
	if k < 0 {
		return nil, fmt.Errorf("%q: %w", field, ErrUnknownField)
	}

	col := ball*len(Fields) + k
	out := make([]float64, len(states))
	for i, row := range states {
		if ball < 0 || col >= len(row) {
			return nil, fmt.Errorf("ball %d: %w", ball, ErrBallRange)
		}
		out[i] = row[col]
	}
	return out, nil
}

// StateFromRow rebuilds a state from one row of LoadStates.
func StateFromRow(row []float64, table physics.Table, t float64) (*physics.State, error) {
	if len(row)%len(Fields) != 0 {
		return nil, fmt.Errorf("row of %d values is not a whole number of balls", len(row))
	}
	s := physics.NewState(len(row)/len(Fields), table)
	s.Time = t
	for i := range s.Balls {
		v := row[i*len(Fields) : (i+1)*len(Fields)]
		s.Balls[i] = physics.Ball{
			Position:    mgl64.Vec3{v[0], physics.RestHeight, v[1]},
			Velocity:    mgl64.Vec3{v[2], 0, v[3]},
			Orientation: mgl64.Quat{W: v[4], V: mgl64.Vec3{v[5], v[6], v[7]}},
		}
	}
	return s, nil
}
