package columnar

import (
	"fmt"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
	"github.com/ZanzyTHEbar/fast-record/fastrec/encoder"
)

// DataType is the physical type of a column
type DataType int

const (
	Uint32 DataType = iota
	Uint8
)

func (d DataType) String() string {
	switch d {
	case Uint32:
		return "uint32"
	case Uint8:
		return "uint8"
	default:
		return fmt.Sprintf("datatype(%d)", int(d))
	}
}

// Source says which part of a Record a field is read from
type Source int

const (
	SourceToken Source = iota // Record.Tokens[Seq][Pos]
	SourceLabel               // Record.Label
	SourceTag                 // Record.Tags[Pos]
)

// Field is one non-nullable column of the output schema
type Field struct {
	Name   string
	Type   DataType
	Source Source
	Seq    int
	Pos    int
}

// Schema is the ordered field list for one task variant
type Schema struct {
	Fields    []Field
	MaxLength int
}

// ClassifierSchema is word_0..word_{L-1} (uint32) followed by class (uint8)
func ClassifierSchema(maxLen int) *Schema {
	s := &Schema{MaxLength: maxLen}
	s.addTokens("word_%d", 0)
	s.Fields = append(s.Fields, Field{Name: "class", Type: Uint8, Source: SourceLabel})
	return s
}

// SimilaritySchema is word_a_*, word_b_* (uint32) followed by label (uint8)
func SimilaritySchema(maxLen int) *Schema {
	s := &Schema{MaxLength: maxLen}
	s.addTokens("word_a_%d", 0)
	s.addTokens("word_b_%d", 1)
	s.Fields = append(s.Fields, Field{Name: "label", Type: Uint8, Source: SourceLabel})
	return s
}

// TaggingSchema is word_0..word_{L-1} (uint32) followed by tag_0..tag_{L-1} (uint8)
func TaggingSchema(maxLen int) *Schema {
	s := &Schema{MaxLength: maxLen}
	s.addTokens("word_%d", 0)
	for k := 0; k < maxLen; k++ {
		s.Fields = append(s.Fields, Field{Name: fmt.Sprintf("tag_%d", k), Type: Uint8, Source: SourceTag, Pos: k})
	}
	return s
}

func (s *Schema) addTokens(format string, seq int) {
	for k := 0; k < s.MaxLength; k++ {
		s.Fields = append(s.Fields, Field{Name: fmt.Sprintf(format, k), Type: Uint32, Source: SourceToken, Seq: seq, Pos: k})
	}
}

// Names returns field names in schema order
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Column holds the values of one field across the rows of a batch.
// Exactly one of U32 and U8 is set, matching the field type.
type Column struct {
	U32 []uint32
	U8  []uint8
}

// Len returns the number of rows in the column
func (c Column) Len() int {
	if c.U32 != nil {
		return len(c.U32)
	}
	return len(c.U8)
}

// Batch is a group of records materialized as one column per schema field
type Batch struct {
	Schema  *Schema
	Columns []Column
	Rows    int
}

// NewBatch transposes records into columns. Every record must carry
// sequences of exactly MaxLength ids for the fields the schema reads.
func NewBatch(s *Schema, records []encoder.Record) (*Batch, error) {
	b := &Batch{Schema: s, Columns: make([]Column, len(s.Fields)), Rows: len(records)}
	for fi, f := range s.Fields {
		switch f.Type {
		case Uint32:
			b.Columns[fi].U32 = make([]uint32, len(records))
		case Uint8:
			b.Columns[fi].U8 = make([]uint8, len(records))
		}
	}

	for ri := range records {
		r := &records[ri]
		if err := s.check(r); err != nil {
			return nil, common.WrapError(err, "row %d", ri)
		}
		for fi, f := range s.Fields {
			switch f.Source {
			case SourceToken:
				b.Columns[fi].U32[ri] = r.Tokens[f.Seq][f.Pos]
			case SourceLabel:
				b.Columns[fi].U8[ri] = r.Label
			case SourceTag:
				b.Columns[fi].U8[ri] = r.Tags[f.Pos]
			}
		}
	}
	return b, nil
}

func (s *Schema) check(r *encoder.Record) error {
	for _, f := range s.Fields {
		switch f.Source {
		case SourceToken:
			if f.Seq >= len(r.Tokens) || len(r.Tokens[f.Seq]) != s.MaxLength {
				return fmt.Errorf("token sequence %d is not %d ids: %w", f.Seq, s.MaxLength, common.ErrSchemaMismatch)
			}
		case SourceTag:
			if len(r.Tags) != s.MaxLength {
				return fmt.Errorf("tag sequence is not %d ids: %w", s.MaxLength, common.ErrSchemaMismatch)
			}
		}
	}
	return nil
}
