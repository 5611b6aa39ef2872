package dataset

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/fast-record/fastrec/batch"
	"github.com/ZanzyTHEbar/fast-record/fastrec/common"

	roaring "github.com/RoaringBitmap/roaring"
)

// maxLineSize bounds a single input line
const maxLineSize = 16 << 20

// Line is one raw input line with its 1-based position in the file
type Line struct {
	Number int
	Text   string
}

// ReadLines reads every line of path, stripping line endings.
func ReadLines(path string) ([]Line, error) {
	if err := common.RequireFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for n := 1; scanner.Scan(); n++ {
		lines = append(lines, Line{Number: n, Text: common.TrimLineEnding(scanner.Text())})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// ClassifierSample is one `text<SEP>label` line
type ClassifierSample struct {
	Line  int
	Text  string
	Label string
}

// SimilaritySample is one `text_a<SEP1>text_b<SEP2>label` line
type SimilaritySample struct {
	Line  int
	TextA string
	TextB string
	Label string
}

// TaggingSample is one blank-line-delimited group of `token<SEP>tag` lines.
// Line is the number of the group's first line.
type TaggingSample struct {
	Line   int
	Tokens []string
	Tags   []string
}

// ParseClassifierLine splits line at the first sep
func ParseClassifierLine(line, sep string) (text, label string, ok bool) {
	return strings.Cut(line, sep)
}

// ParseSimilarityLine splits line at the first sentSep, then splits the
// remainder at its last labelSep.
func ParseSimilarityLine(line, sentSep, labelSep string) (a, b, label string, ok bool) {
	a, rest, ok := strings.Cut(line, sentSep)
	if !ok {
		return "", "", "", false
	}
	i := strings.LastIndex(rest, labelSep)
	if i < 0 {
		return "", "", "", false
	}
	return a, rest[:i], rest[i+len(labelSep):], true
}

type parsed[S any] struct {
	sample S
	ok     bool
}

// parseLines runs parse over every line on the processor's workers and
// collects the accepted samples in file order. Rejected lines are recorded
// by line number in the returned bitmap.
func parseLines[S any](ctx context.Context, p *batch.Processor, phase string, lines []Line, progress batch.Progress, parse func(Line) (S, bool)) ([]S, *roaring.Bitmap, error) {
	results, _, err := batch.Map(ctx, p, phase, lines, progress, func(_ int, l *Line) (parsed[S], error) {
		s, ok := parse(*l)
		return parsed[S]{sample: s, ok: ok}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	dropped := roaring.New()
	samples := make([]S, 0, len(results))
	for i, r := range results {
		if !r.ok {
			dropped.Add(uint32(lines[i].Number))
			continue
		}
		samples = append(samples, r.sample)
	}
	return samples, dropped, nil
}

// GroupTagging folds lines into tagging samples. A blank line ends a group;
// a line without sep is dropped on its own without affecting its group.
func GroupTagging(lines []Line, sep string) ([]TaggingSample, *roaring.Bitmap) {
	dropped := roaring.New()
	var samples []TaggingSample
	var cur TaggingSample

	flush := func() {
		if len(cur.Tokens) > 0 {
			samples = append(samples, cur)
		}
		cur = TaggingSample{}
	}

	for _, l := range lines {
		if strings.TrimSpace(l.Text) == "" {
			flush()
			continue
		}
		tok, tag, ok := strings.Cut(l.Text, sep)
		if !ok {
			dropped.Add(uint32(l.Number))
			continue
		}
		if len(cur.Tokens) == 0 {
			cur.Line = l.Number
		}
		cur.Tokens = append(cur.Tokens, tok)
		cur.Tags = append(cur.Tags, tag)
	}
	flush()
	return samples, dropped
}
