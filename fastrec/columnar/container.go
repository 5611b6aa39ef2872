package columnar

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
)

// Format selects the container encoding of a records file
type Format string

const (
	FormatIPC     Format = "ipc"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a configured format name
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatIPC, FormatParquet:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown record format %q: %w", name, common.ErrInvalidConfig)
	}
}

// Ext is the file extension used in <split>.records.<ext>
func (f Format) Ext() string {
	return string(f)
}

// Container is a sequential sink of typed batches under one schema. Batches
// are appended in call order. The file only becomes visible under its final
// name once Finish succeeds; Abort discards everything written so far.
type Container interface {
	Write(b *Batch) error
	Finish() error
	Abort() error
}

// Create opens a container of the given format at path
func Create(format Format, path string, s *Schema) (Container, error) {
	switch format {
	case FormatIPC:
		return newArrowContainer(path, s)
	case FormatParquet:
		return newParquetContainer(path, s)
	default:
		return nil, fmt.Errorf("unknown record format %q: %w", format, common.ErrInvalidConfig)
	}
}

// pendingFile buffers writes into <path>.tmp and renames it into place on commit
type pendingFile struct {
	final string
	tmp   string
	f     *os.File
	w     *bufio.Writer
	done  bool
}

func createPending(path string) (*pendingFile, error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("create record file %s: %w", tmp, err)
	}
	return &pendingFile{final: path, tmp: tmp, f: f, w: bufio.NewWriterSize(f, 1<<20)}, nil
}

func (p *pendingFile) commit() error {
	if p.done {
		return common.ErrContainerClosed
	}
	p.done = true
	if err := p.w.Flush(); err != nil {
		p.f.Close()
		os.Remove(p.tmp)
		return fmt.Errorf("flush %s: %w", p.tmp, err)
	}
	if err := p.f.Sync(); err != nil {
		p.f.Close()
		os.Remove(p.tmp)
		return fmt.Errorf("sync %s: %w", p.tmp, err)
	}
	if err := p.f.Close(); err != nil {
		os.Remove(p.tmp)
		return fmt.Errorf("close %s: %w", p.tmp, err)
	}
	if err := os.Rename(p.tmp, p.final); err != nil {
		os.Remove(p.tmp)
		return fmt.Errorf("rename %s: %w", p.tmp, err)
	}
	return nil
}

func (p *pendingFile) discard() error {
	if p.done {
		return nil
	}
	p.done = true
	p.f.Close()
	if err := os.Remove(p.tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", p.tmp, err)
	}
	return nil
}
