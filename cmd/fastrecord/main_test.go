package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"class.txt": "pos\nneg\n",
		"train.txt": "good day\tpos\nbad day\tneg\n",
		"dev.txt":   "good\tpos\n",
		"test.txt":  "bad\tneg\nno separator\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestRunUsage(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), nil, &out))
	assert.Contains(t, out.String(), "Usage: fastrecord")

	out.Reset()
	assert.Equal(t, 0, run(context.Background(), []string{"help"}, &out))
	assert.Contains(t, out.String(), "classifier")

	out.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"translate"}, &out))
	assert.Contains(t, out.String(), "unknown task")

	out.Reset()
	assert.Equal(t, 0, run(context.Background(), []string{"tagging", "--help"}, &out))
	assert.Contains(t, out.String(), "pad-tag")
}

func TestRunRejectsBadConfig(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), []string{"classifier"}, &out), "input is required")

	out.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"classifier", "--bogus"}, &out))
}

func TestRunClassifier(t *testing.T) {
	dir := writeDataset(t)
	out := filepath.Join(dir, "out")

	var stderr bytes.Buffer
	code := run(context.Background(), []string{
		"classifier", "--input", dir, "--output", out, "--with-lang-en", "--log-level", "error",
	}, &stderr)
	require.Equal(t, 0, code, stderr.String())

	for _, name := range []string{"vocab.txt", "train.records.ipc", "dev.records.ipc", "test.records.ipc"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.Contains(t, stderr.String(), "1 dropped")

	vocab, err := os.ReadFile(filepath.Join(out, "vocab.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0\t<PAD>\n1\tbad\n2\tday\n3\tgood\n4\t<UNK>\n", string(vocab))
}

func TestRunFailure(t *testing.T) {
	dir := writeDataset(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "class.txt")))

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"classifier", "-i", dir, "--no-progress", "--log-level", "disabled"}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "class.txt")
}
