package model

import "math"

// ChunkType identifies a line in an NDJSON progress stream.
type ChunkType string

const (
	ChunkEnrichResult ChunkType = "enrich_result"
	ChunkLeads        ChunkType = "leads_chunk"
	ChunkProgress     ChunkType = "progress"
	ChunkLog          ChunkType = "log"
	ChunkStrategy     ChunkType = "strategy"
	ChunkError        ChunkType = "error"
	ChunkDone         ChunkType = "done"
)

// Chunk is one newline-delimited JSON envelope sent to streaming callers.
type Chunk struct {
	Type     ChunkType `json:"type"`
	Data     any       `json:"data,omitempty"`
	Progress *int      `json:"progress,omitempty"`
	Value    *int      `json:"value,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// Percent returns round(done/total*100), or 100 when total is zero.
func Percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// DoneChunk is the stream terminator.
func DoneChunk() Chunk { return Chunk{Type: ChunkDone} }

// LogChunk carries a human-readable status line.
func LogChunk(msg string) Chunk { return Chunk{Type: ChunkLog, Message: msg} }

// ProgressChunk reports progress with no payload.
func ProgressChunk(pct int) Chunk { return Chunk{Type: ChunkProgress, Value: &pct} }

// DataChunk carries a payload together with running progress.
func DataChunk(t ChunkType, data any, pct int) Chunk {
	return Chunk{Type: t, Data: data, Progress: &pct}
}
