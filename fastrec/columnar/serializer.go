package columnar

import (
	"time"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
	"github.com/ZanzyTHEbar/fast-record/fastrec/encoder"

	"github.com/rs/zerolog"
)

// ChunkSize is the number of records materialized per batch
const ChunkSize = 100

// WriteStats describes one serialized records file
type WriteStats struct {
	Path     string
	Rows     int
	Batches  int
	Duration time.Duration
}

// Serializer writes encoded records into containers in fixed-size chunks.
// Writes are strictly sequential; each chunk becomes one batch in input order.
type Serializer struct {
	format Format
	logger zerolog.Logger
}

// NewSerializer creates a serializer for the given container format
func NewSerializer(format Format, logger zerolog.Logger) *Serializer {
	return &Serializer{format: format, logger: logger}
}

// Format returns the container format
func (s *Serializer) Format() Format {
	return s.format
}

// Write serializes records under schema to path and finalizes the container.
// On any failure the partial container is removed.
func (s *Serializer) Write(path string, schema *Schema, records []encoder.Record) (*WriteStats, error) {
	start := time.Now()

	c, err := Create(s.format, path, schema)
	if err != nil {
		return nil, err
	}

	stats := &WriteStats{Path: path}
	if err := writeChunks(c, schema, records, stats); err != nil {
		if abortErr := c.Abort(); abortErr != nil {
			s.logger.Warn().Err(abortErr).Str("path", path).Msg("Failed to remove partial records file")
		}
		return nil, common.WrapError(err, "write records %s", path)
	}
	if err := c.Finish(); err != nil {
		return nil, common.WrapError(err, "finalize records %s", path)
	}

	stats.Duration = time.Since(start)
	s.logger.Debug().
		Str("path", path).
		Int("rows", stats.Rows).
		Int("batches", stats.Batches).
		Dur("duration", stats.Duration).
		Msg("Records written")
	return stats, nil
}

func writeChunks(c Container, schema *Schema, records []encoder.Record, stats *WriteStats) error {
	for start := 0; start < len(records); start += ChunkSize {
		end := min(start+ChunkSize, len(records))
		b, err := NewBatch(schema, records[start:end])
		if err != nil {
			return common.WrapError(err, "chunk at row %d", start)
		}
		if err := c.Write(b); err != nil {
			return common.WrapError(err, "chunk at row %d", start)
		}
		stats.Rows += b.Rows
		stats.Batches++
	}
	return nil
}
