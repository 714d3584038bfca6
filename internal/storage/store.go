package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/dotportrait/internal/field"
	"github.com/san-kum/dotportrait/internal/telemetry"
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

type SessionMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Image     string             `json:"image"`
	Script    string             `json:"script,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Frames    int                `json:"frames"`
	Particles int                `json:"particles"`
	Params    field.Params       `json:"params"`
	Summary   map[string]float64 `json:"summary"`
}

// Save writes meta and its per-frame stats under a new session directory
// and returns the session id.
func (s *Store) Save(meta SessionMetadata, stats []telemetry.FrameStats) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.Name == "" {
		meta.Name = "session"
	}

	id := fmt.Sprintf("%s_%d", meta.Name, meta.Timestamp.Unix())
	dir := filepath.Join(s.baseDir, id)
	for n := 2; ; n++ {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			break
		}
		id = fmt.Sprintf("%s_%d_%d", meta.Name, meta.Timestamp.Unix(), n)
		dir = filepath.Join(s.baseDir, id)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	meta.ID = id

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

	csvFile, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if len(stats) == 0 {
		return id, nil
	}
	if err := telemetry.WriteCSV(csvFile, stats); err != nil {
		return "", err
	}
	return id, nil
}

// List returns every readable session, oldest first.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMetadata{}, nil
		}
		return nil, err
	}

	sessions := make([]SessionMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		sessions = append(sessions, *meta)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.Before(sessions[j].Timestamp)
	})
	return sessions, nil
}

func (s *Store) Load(id string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadStats(id string) ([]telemetry.FrameStats, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, "stats.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []telemetry.FrameStats{}, nil
	}
	return telemetry.ReadCSV(f)
}

// Summarize reduces per-frame stats to the values kept in metadata.json.
func Summarize(stats []telemetry.FrameStats) map[string]float64 {
	out := map[string]float64{}
	if len(stats) == 0 {
		return out
	}
	var peakMean, peakMax, peakEnergy float64
	for _, st := range stats {
		peakMean = max(peakMean, st.MeanDisplacement)
		peakMax = max(peakMax, st.MaxDisplacement)
		peakEnergy = max(peakEnergy, st.KineticEnergy)
	}
	last := stats[len(stats)-1]
	out["peak_mean_displacement"] = peakMean
	out["peak_max_displacement"] = peakMax
	out["peak_kinetic_energy"] = peakEnergy
	out["final_mean_displacement"] = last.MeanDisplacement
	out["final_disturbed"] = float64(last.Disturbed)
	return out
}
