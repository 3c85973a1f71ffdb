package logger

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Format(t *testing.T) {
	r := Record{
		Level:   slog.LevelWarn,
		Message: "queue almost full",
		Time:    time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Source:  "pipeline",
		Attrs:   []slog.Attr{slog.Int("depth", 950)},
	}

	got := r.Format()
	assert.Equal(t, "2024-03-15 10:30:00.000 - pipeline - WARN - queue almost full depth=950", got)
}

func TestRecord_FormatDefaultsSource(t *testing.T) {
	r := Record{Level: slog.LevelInfo, Message: "hello", Time: time.Now()}
	assert.Contains(t, r.Format(), " - app - INFO - hello")
}

func TestConsoleSink_WritesFormattedLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf)

	require.NoError(t, s.Write(record("first")))
	require.NoError(t, s.Write(record("second")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}

func TestFileSink_AppendsToDayStampedFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFileSink(dir)
	require.NoError(t, err)
	require.NoError(t, s.Write(record("persisted")))
	require.NoError(t, s.Close())

	name := fmt.Sprintf("app_%s.log", time.Now().Format("20060102"))
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "persisted")
}

func TestFileSink_CreatesLogDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	s, err := NewFileSink(dir)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSinkFunc_Adapter(t *testing.T) {
	var got []string
	s := SinkFunc(func(r Record) error {
		got = append(got, r.Message)
		return nil
	})

	require.NoError(t, s.Write(record("via func")))
	assert.Equal(t, []string{"via func"}, got)
}
