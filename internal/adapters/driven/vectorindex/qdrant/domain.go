package qdrant

import (
	"encoding/json"
	"strings"
)

// envelope is the standard qdrant response wrapper.
type envelope[T any] struct {
	Status status `json:"status"`
	Result T      `json:"result"`
}

// status is either the string "ok" or an object carrying an error.
type status struct {
	State string `json:"status"`
	Error string `json:"error,omitempty"`
}

func (s *status) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.State = strings.ToLower(v)
		return nil
	}

	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Error != "" {
		s.State = "error"
		s.Error = obj.Error
	}
	return nil
}

func (s status) ok() bool {
	return strings.EqualFold(s.State, "ok")
}

// chunkPayload is the stored payload for each indexed chunk.
type chunkPayload struct {
	ID         string `json:"id"`
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
	Metadata   string `json:"metadata,omitempty"`
}

// scoredPoint is a single search hit.
type scoredPoint struct {
	ID      string       `json:"id"`
	Score   float64      `json:"score"`
	Payload chunkPayload `json:"payload"`
}
