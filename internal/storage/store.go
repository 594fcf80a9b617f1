package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/chladni/internal/dynamo"
	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
	"github.com/san-kum/chladni/internal/sim"
)

// ErrCorruptRun indicates stored run files that do not fit together.
var ErrCorruptRun = errors.New("storage: corrupt run data")

const (
	metadataFile  = "metadata.json"
	snapshotsFile = "snapshots.csv"
	seriesFile    = "series.csv"
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
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Shape      plate.Shape        `json:"shape"`
	Aspect     plate.Aspect       `json:"aspect"`
	Particles  int                `json:"particles"`
	Mode       physics.Mode       `json:"mode"`
	Dt         float64            `json:"dt"`
	KForce     float64            `json:"k_force"`
	Jitter     float64            `json:"jitter"`
	Steps      int                `json:"steps"`
	Seed       uint64             `json:"seed"`
	StepsTaken int                `json:"steps_taken"`
	Rejected   int                `json:"rejected"`
	Metrics    map[string]float64 `json:"metrics"`

	// SnapshotSteps lists every recorded step, including those of an empty
	// collection that leave no rows in snapshots.csv.
	SnapshotSteps []int `json:"snapshot_steps"`
}

// SnapshotRecord is one particle at one recorded step.
type SnapshotRecord struct {
	Step  int     `csv:"step"`
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
}

// SeriesRecord is one metric value after one step.
type SeriesRecord struct {
	Step   int     `csv:"step"`
	Metric string  `csv:"metric"`
	Value  float64 `csv:"value"`
}

func (s *Store) Save(cfg sim.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d_s%d", cfg.Shape, now.UnixNano(), cfg.Seed)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  now,
		Shape:      cfg.Shape,
		Aspect:     cfg.Aspect,
		Particles:  cfg.Particles,
		Mode:       cfg.Mode,
		Dt:         cfg.Params.Dt,
		KForce:     cfg.Params.KForce,
		Jitter:     cfg.Params.Jitter,
		Steps:      cfg.Steps,
		Seed:       cfg.Seed,
		StepsTaken: result.StepsTaken,
		Rejected:   result.Rejected,
		Metrics:    result.Metrics,

		SnapshotSteps: make([]int, 0, len(result.Snapshots)),
	}
	for _, snap := range result.Snapshots {
		meta.SnapshotSteps = append(meta.SnapshotSteps, snap.Step)
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	snaps := snapshotRecords(result.Snapshots)
	if err := writeCSV(filepath.Join(runDir, snapshotsFile), &snaps); err != nil {
		return "", fmt.Errorf("writing snapshots: %w", err)
	}

	names := make([]string, 0, len(result.Series))
	for name := range result.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]*SeriesRecord, 0)
	for _, name := range names {
		for i, v := range result.Series[name] {
			series = append(series, &SeriesRecord{Step: i + 1, Metric: name, Value: v})
		}
	}
	if err := writeCSV(filepath.Join(runDir, seriesFile), &series); err != nil {
		return "", fmt.Errorf("writing series: %w", err)
	}

	return runID, nil
}

func snapshotRecords(snaps []sim.Snapshot) []*SnapshotRecord {
	records := make([]*SnapshotRecord, 0)
	for _, snap := range snaps {
		for i, p := range snap.Particles {
			records = append(records, &SnapshotRecord{Step: snap.Step, Index: i, X: p.X, Y: p.Y})
		}
	}
	return records
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

func writeCSV(path string, records any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(records, f)
}

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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSnapshots returns the recorded collections in step order.
func (s *Store) LoadSnapshots(runID string) ([]sim.Snapshot, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	var records []*SnapshotRecord
	if err := readCSV(filepath.Join(s.baseDir, runID, snapshotsFile), &records); err != nil {
		return nil, err
	}

	snaps := make([]sim.Snapshot, 0, len(meta.SnapshotSteps))
	for _, step := range meta.SnapshotSteps {
		snaps = append(snaps, sim.Snapshot{Step: step, Particles: dynamo.Particles{}})
	}

	pos := make(map[int]int, len(snaps))
	for i, snap := range snaps {
		pos[snap.Step] = i
	}
	for _, r := range records {
		i, ok := pos[r.Step]
		if !ok {
			if len(meta.SnapshotSteps) > 0 {
				return nil, fmt.Errorf("%w: step %d is not a recorded snapshot", ErrCorruptRun, r.Step)
			}
			snaps = append(snaps, sim.Snapshot{Step: r.Step})
			i = len(snaps) - 1
			pos[r.Step] = i
		}
		last := &snaps[i]
		if r.Index != len(last.Particles) {
			return nil, fmt.Errorf("%w: snapshot %d index %d out of order", ErrCorruptRun, r.Step, r.Index)
		}
		last.Particles = append(last.Particles, dynamo.Particle{X: r.X, Y: r.Y})
	}
	return snaps, nil
}

// LoadSeries returns per-step metric values keyed by metric name.
func (s *Store) LoadSeries(runID string) (map[string][]float64, error) {
	var records []*SeriesRecord
	if err := readCSV(filepath.Join(s.baseDir, runID, seriesFile), &records); err != nil {
		return nil, err
	}

	series := make(map[string][]float64)
	for _, r := range records {
		series[r.Metric] = append(series[r.Metric], r.Value)
	}
	return series, nil
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil
		}
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
