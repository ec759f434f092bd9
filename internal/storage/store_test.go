package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/poolsim/internal/dynamo"
	"github.com/san-kum/poolsim/internal/physics"
)

func testResult() *dynamo.Result {
	table := physics.Table{Width: 10, Height: 20}
	s0 := physics.NewState(2, table)
	s0.Balls[0].Position = mgl64.Vec3{1, physics.RestHeight, 2}
	s0.Balls[0].Velocity = mgl64.Vec3{3, 0, -4}
	s0.Balls[1].Position = mgl64.Vec3{-5, physics.RestHeight, 6}

	s1 := s0.Clone()
	s1.Time = 0.5
	s1.Balls[0].Position = mgl64.Vec3{2.5, physics.RestHeight, 0}
	s1.Balls[0].Orientation = mgl64.Quat{W: 0.5, V: mgl64.Vec3{0.5, 0.5, -0.5}}

	return &dynamo.Result{
		States:     []*physics.State{s0, s1},
		Times:      []float64{0, 0.5},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"kinetic_energy": 12.5,
			"bad":            math.Inf(1),
		},
	}
}

func testMeta() RunMetadata {
	return RunMetadata{
		Name:     "test",
		Layout:   "random",
		Seed:     42,
		Dt:       0.5,
		Duration: 0.5,
		Balls:    2,
		Table:    TableMeta{Width: 10, Height: 20},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "test_") {
		t.Errorf("run id %q should start with the run name", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.Seed != 42 || meta.Steps != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["kinetic_energy"] != 12.5 {
		t.Errorf("expected energy 12.5, got %f", meta.Metrics["kinetic_energy"])
	}
	if _, ok := meta.Metrics["bad"]; ok {
		t.Error("non-finite metric should be dropped")
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d states %d times", len(states), len(times))
	}
	if len(states[0]) != 2*len(Fields) {
		t.Errorf("row width = %d, want %d", len(states[0]), 2*len(Fields))
	}
	want := []float64{2.5, 0, 3, -4, 0.5, 0.5, 0.5, -0.5}
	for i, v := range want {
		if states[1][i] != v {
			t.Errorf("row 1 column %s = %v, want %v", Fields[i], states[1][i], v)
		}
	}
}

func TestStatesHeader(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runID, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, runID, "states.csv"))
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	want := "time,b0_x,b0_z,b0_vx,b0_vz,b0_qw,b0_qx,b0_qy,b0_qz,b1_x,b1_z,b1_vx,b1_vz,b1_qw,b1_qx,b1_qy,b1_qz"
	if header != want {
		t.Errorf("header = %s\nwant     %s", header, want)
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list of missing dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(testMeta(), testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	meta := testMeta()
	meta.Name = "other"
	if _, err := st.Save(meta, testResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "test" || runs[1].Name != "other" {
		t.Errorf("runs not in save order: %s, %s", runs[0].Name, runs[1].Name)
	}
}

func TestLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, _, err := st.LoadStates("nope"); err == nil {
		t.Error("expected error for missing states")
	}
}

func TestColumn(t *testing.T) {
	states := [][]float64{
		{1, 2, 3, 4, 1, 0, 0, 0, 10, 20, 30, 40, 1, 0, 0, 0},
		{5, 6, 7, 8, 1, 0, 0, 0, 50, 60, 70, 80, 1, 0, 0, 0},
	}

	xs, err := Column(states, 1, "z")
	if err != nil {
		t.Fatal(err)
	}
	if xs[0] != 20 || xs[1] != 60 {
		t.Errorf("column = %v, want [20 60]", xs)
	}

	if _, err := Column(states, 0, "speed"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", err)
	}
	if _, err := Column(states, 2, "x"); !errors.Is(err, ErrBallRange) {
		t.Errorf("err = %v, want ErrBallRange", err)
	}
}

func TestStateFromRow(t *testing.T) {
	row := []float64{1, 2, 3, 4, 0.5, 0.5, 0.5, -0.5}
	s, err := StateFromRow(row, physics.Table{Width: 10, Height: 20}, 2)
	if err != nil {
		t.Fatal(err)
	}
	b := s.Balls[0]
	if b.Position != (mgl64.Vec3{1, physics.RestHeight, 2}) || b.Velocity != (mgl64.Vec3{3, 0, 4}) {
		t.Errorf("ball = %+v", b)
	}
	if b.Orientation.W != 0.5 || b.Orientation.V.Z() != -0.5 {
		t.Errorf("orientation = %v", b.Orientation)
	}
	if s.Time != 2 {
		t.Errorf("time = %v", s.Time)
	}

	if _, err := StateFromRow(row[:5], physics.Table{}, 0); err == nil {
		t.Error("expected error for a partial row")
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.Export(&buf, runID); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Meta.ID != runID || len(data.States) != 2 || len(data.Header) != 16 {
		t.Errorf("unexpected export: id=%s states=%d columns=%d", data.Meta.ID, len(data.States), len(data.Header))
	}
}

func TestStoreStatesExact(t *testing.T) {
	res := testResult()
	s1 := res.States[1]
	s1.Time = 0.1 + 0.2
	s1.Balls[0].Position = mgl64.Vec3{1.0 / 3, physics.RestHeight, -2e-9}
	s1.Balls[0].Velocity = mgl64.Vec3{math.Pi, 0, 1234567.891011}
	s1.Balls[0].Orientation = mgl64.QuatRotate(0.3, mgl64.Vec3{1, 2, 3}.Normalize())
	res.Times[1] = s1.Time

	st := New(t.TempDir())
	runID, err := st.Save(testMeta(), res)
	if err != nil {
		t.Fatal(err)
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatal(err)
	}

	got, err := StateFromRow(states[1], physics.Table{Width: 10, Height: 20}, times[1])
	if err != nil {
		t.Fatal(err)
	}
	if got.Time != s1.Time {
		t.Errorf("time = %v, want %v", got.Time, s1.Time)
	}
	b, want := got.Balls[0], s1.Balls[0]
	if b.Position != want.Position || b.Velocity != want.Velocity {
		t.Errorf("ball = %v %v, want %v %v", b.Position, b.Velocity, want.Position, want.Velocity)
	}
	if b.Orientation != want.Orientation {
		t.Errorf("orientation = %v, want %v", b.Orientation, want.Orientation)
	}
}
