package storage

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/chladni/internal/sim"
)

type ExportData struct {
	Run       RunMetadata          `json:"run"`
	Series    map[string][]float64 `json:"series,omitempty"`
	Snapshots []sim.Snapshot       `json:"snapshots"`
}

// ExportJSON writes a stored run as a single JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	snaps, err := s.LoadSnapshots(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: *meta, Series: series, Snapshots: snaps})
}

// WriteSnapshotsCSV writes snapshots as step,index,x,y rows.
func WriteSnapshotsCSV(w io.Writer, snaps []sim.Snapshot) error {
	return gocsv.Marshal(snapshotRecords(snaps), w)
}
