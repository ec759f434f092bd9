package storage

import (
	"encoding/json"
	"fmt"
	"io"
)

type ExportData struct {
	Meta   RunMetadata `json:"meta"`
	Header []string    `json:"columns"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// Export writes a stored run as one JSON document.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	header := make([]string, 0, meta.Balls*len(Fields))
	for i := 0; i < meta.Balls; i++ {
		for _, f := range Fields {
			header = append(header, fmt.Sprintf("b%d_%s", i, f))
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: *meta, Header: header, Times: times, States: states})
}
