package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/dotportrait/internal/telemetry"
)

type ExportData struct {
	Session SessionMetadata        `json:"session"`
	Stats   []telemetry.FrameStats `json:"stats,omitempty"`
}

// ExportJSON writes session id as indented JSON, with its per-frame stats
// when withStats is set.
func (s *Store) ExportJSON(w io.Writer, id string, withStats bool) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	data := ExportData{Session: *meta}
	if withStats {
		if data.Stats, err = s.LoadStats(id); err != nil {
			return err
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
