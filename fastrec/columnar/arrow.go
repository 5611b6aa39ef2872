package columnar

import (
	"fmt"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// arrowContainer writes an Arrow IPC file, one record batch per Write
type arrowContainer struct {
	file   *pendingFile
	schema *Schema
	arrow  *arrow.Schema
	mem    memory.Allocator
	w      *ipc.FileWriter
}

// ArrowSchema converts s to the equivalent Arrow schema
func ArrowSchema(s *Schema) *arrow.Schema {
	fields := make([]arrow.Field, len(s.Fields))
	for i, f := range s.Fields {
		var dt arrow.DataType = arrow.PrimitiveTypes.Uint32
		if f.Type == Uint8 {
			dt = arrow.PrimitiveTypes.Uint8
		}
		fields[i] = arrow.Field{Name: f.Name, Type: dt, Nullable: false}
	}
	return arrow.NewSchema(fields, nil)
}

func newArrowContainer(path string, s *Schema) (*arrowContainer, error) {
	file, err := createPending(path)
	if err != nil {
		return nil, err
	}

	mem := memory.NewGoAllocator()
	as := ArrowSchema(s)
	w, err := ipc.NewFileWriter(file.w, ipc.WithSchema(as), ipc.WithAllocator(mem))
	if err != nil {
		file.discard()
		return nil, fmt.Errorf("create file writer: %w", err)
	}
	return &arrowContainer{file: file, schema: s, arrow: as, mem: mem, w: w}, nil
}

func (c *arrowContainer) Write(b *Batch) error {
	if c.file.done {
		return common.ErrContainerClosed
	}
	if b.Schema != c.schema || len(b.Columns) != len(c.schema.Fields) {
		return common.ErrSchemaMismatch
	}

	cols := make([]arrow.Array, len(b.Columns))
	defer func() {
		for _, col := range cols {
			if col != nil {
				col.Release()
			}
		}
	}()

	for i, f := range c.schema.Fields {
		switch f.Type {
		case Uint32:
			bld := array.NewUint32Builder(c.mem)
			bld.AppendValues(b.Columns[i].U32, nil)
			cols[i] = bld.NewArray()
			bld.Release()
		case Uint8:
			bld := array.NewUint8Builder(c.mem)
			bld.AppendValues(b.Columns[i].U8, nil)
			cols[i] = bld.NewArray()
			bld.Release()
		}
	}

	rec := array.NewRecord(c.arrow, cols, int64(b.Rows))
	defer rec.Release()
	if err := c.w.Write(rec); err != nil {
		return fmt.Errorf("write record batch: %w", err)
	}
	return nil
}

func (c *arrowContainer) Finish() error {
	if c.file.done {
		return common.ErrContainerClosed
	}
	if err := c.w.Close(); err != nil {
		c.file.discard()
		return fmt.Errorf("finish write records: %w", err)
	}
	return c.file.commit()
}

func (c *arrowContainer) Abort() error {
	return c.file.discard()
}
