package columnar

import (
	"fmt"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetContainer writes a Parquet file with one row group per Write.
// Unsigned ids are stored as INT32 with UINT_32 / UINT_8 converted types.
type parquetContainer struct {
	file   *pendingFile
	schema *Schema
	pw     *writer.CSVWriter
}

// ParquetMetadata returns the parquet-go column definitions for s
func ParquetMetadata(s *Schema) []string {
	md := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		converted := "UINT_32"
		if f.Type == Uint8 {
			converted = "UINT_8"
		}
		md[i] = fmt.Sprintf("name=%s, type=INT32, convertedtype=%s, repetitiontype=REQUIRED", f.Name, converted)
	}
	return md
}

func newParquetContainer(path string, s *Schema) (*parquetContainer, error) {
	file, err := createPending(path)
	if err != nil {
		return nil, err
	}

	pw, err := writer.NewCSVWriter(ParquetMetadata(s), writerfile.NewWriterFile(file.w), 1)
	if err != nil {
		file.discard()
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	return &parquetContainer{file: file, schema: s, pw: pw}, nil
}

func (c *parquetContainer) Write(b *Batch) error {
	if c.file.done {
		return common.ErrContainerClosed
	}
	if b.Schema != c.schema || len(b.Columns) != len(c.schema.Fields) {
		return common.ErrSchemaMismatch
	}

	for r := 0; r < b.Rows; r++ {
		// the writer keeps a reference to each row until the row group is flushed
		row := make([]interface{}, len(b.Columns))
		for i, f := range c.schema.Fields {
			if f.Type == Uint32 {
				row[i] = int32(b.Columns[i].U32[r])
			} else {
				row[i] = int32(b.Columns[i].U8[r])
			}
		}
		if err := c.pw.Write(row); err != nil {
			return fmt.Errorf("write parquet row %d: %w", r, err)
		}
	}
	if err := c.pw.Flush(true); err != nil {
		return fmt.Errorf("flush parquet row group: %w", err)
	}
	return nil
}

func (c *parquetContainer) Finish() error {
	if c.file.done {
		return common.ErrContainerClosed
	}
	if err := c.pw.WriteStop(); err != nil {
		c.file.discard()
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return c.file.commit()
}

func (c *parquetContainer) Abort() error {
	return c.file.discard()
}
