package labels

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"

	"github.com/armon/go-radix"
)

// Resolver maps a label or tag string to its unsigned 8-bit id
type Resolver interface {
	Resolve(label string) (uint8, error)
}

// ClassList assigns ids by line index of an ordered class file
type ClassList struct {
	ids   map[string]uint8
	names []string
}

// LoadClassList reads class names, one per line. Line i is class id i.
func LoadClassList(path string) (*ClassList, error) {
	if err := common.RequireFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open class list %s: %w", path, err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		names = append(names, common.TrimLineEnding(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read class list %s: %w", path, err)
	}

	cl, err := NewClassList(names)
	if err != nil {
		return nil, common.WrapError(err, "class list %s", path)
	}
	return cl, nil
}

// NewClassList builds a class list from ordered names
func NewClassList(names []string) (*ClassList, error) {
	if len(names) > common.MaxLabelCardinality {
		return nil, fmt.Errorf("%d classes: %w", len(names), common.ErrLabelOverflow)
	}
	cl := &ClassList{ids: make(map[string]uint8, len(names)), names: names}
	for i, name := range names {
		if _, dup := cl.ids[name]; dup {
			return nil, fmt.Errorf("class %q on line %d: %w", name, i+1, common.ErrDuplicateClass)
		}
		cl.ids[name] = uint8(i)
	}
	return cl, nil
}

// Resolve looks label up in the class list. Absent labels are fatal.
func (cl *ClassList) Resolve(label string) (uint8, error) {
	id, ok := cl.ids[label]
	if !ok {
		return 0, fmt.Errorf("label %q: %w", label, common.ErrUnknownLabel)
	}
	return id, nil
}

// Len returns the number of classes
func (cl *ClassList) Len() int {
	return len(cl.names)
}

// DirectID parses the label field itself as the id
type DirectID struct{}

func (DirectID) Resolve(label string) (uint8, error) {
	return parseID(label)
}

// SimilarityLabel parses pair labels either as true/false or as integers
type SimilarityLabel struct {
	Bool bool
}

func (s SimilarityLabel) Resolve(label string) (uint8, error) {
	if !s.Bool {
		return parseID(label)
	}
	switch v := strings.TrimSpace(label); {
	case strings.EqualFold(v, "true"):
		return 1, nil
	case strings.EqualFold(v, "false"):
		return 0, nil
	default:
		return 0, fmt.Errorf("label %q is not true or false: %w", label, common.ErrInvalidLabel)
	}
}

func parseID(label string) (uint8, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(label), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("label %q must be an integer in [0,255]: %w", label, common.ErrInvalidLabel)
	}
	return uint8(id), nil
}

// TagMap resolves tags to ids with id 0 reserved for the padding tag.
// Tags never seen in training resolve to 0 rather than failing.
type TagMap struct {
	ids    map[string]uint8
	tags   []string
	padTag string
}

// Resolve never fails: a missing tag is treated as padding
func (tm *TagMap) Resolve(tag string) (uint8, error) {
	return tm.ids[tag], nil
}

// Len returns the number of tag ids including the padding tag
func (tm *TagMap) Len() int {
	return len(tm.tags)
}

// Tags returns tags ordered by id
func (tm *TagMap) Tags() []string {
	return append([]string(nil), tm.tags...)
}

// TagMapBuilder collects distinct training tags in lexicographic order
type TagMapBuilder struct {
	padTag string
	tags   *radix.Tree
}

// NewTagMapBuilder creates a builder reserving id 0 for padTag
func NewTagMapBuilder(padTag string) *TagMapBuilder {
	return &TagMapBuilder{padTag: padTag, tags: radix.New()}
}

// Add records the tags of one training sample
func (b *TagMapBuilder) Add(tags []string) {
	for _, tag := range tags {
		if tag == b.padTag {
			continue
		}
		b.tags.Insert(tag, struct{}{})
	}
}

// Build assigns ids 1..N to the collected tags
func (b *TagMapBuilder) Build() (*TagMap, error) {
	if b.tags.Len()+1 > common.MaxLabelCardinality {
		return nil, fmt.Errorf("%d tags plus padding: %w", b.tags.Len(), common.ErrLabelOverflow)
	}
	tm := &TagMap{
		ids:    map[string]uint8{b.padTag: 0},
		tags:   []string{b.padTag},
		padTag: b.padTag,
	}
	b.tags.Walk(func(tag string, _ interface{}) bool {
		tm.ids[tag] = uint8(len(tm.tags))
		tm.tags = append(tm.tags, tag)
		return false
	})
	return tm, nil
}
