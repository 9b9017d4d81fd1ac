package logger

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// stripANSI removes ANSI color codes from a string for testing
func stripANSI(str string) string {
	return regexp.MustCompile(`\x1b\[[0-9;]*m`).ReplaceAllString(str, "")
}

// The encoder must never silently discard fields.
func TestMinimalEncoderNeverDiscardsFields(t *testing.T) {
	encoder := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Date(2024, 1, 1, 13, 4, 35, 0, time.UTC),
		LoggerName: "engine",
		Message:    "Program compiled",
	}

	tests := []struct {
		field    zapcore.Field
		mustFind string
	}{
		{zap.String(FieldKey, "main"), "key=main"},
		{zap.String(FieldEngine, "SampleEngine"), "engine=SampleEngine"},
		{zap.Int(FieldCount, 3), "count=3"},
		{zap.Bool("typescript", true), "typescript=true"},
		{zap.Float64("ratio", 0.5), "ratio=0.5"},
		{zap.String("random_field_xyz", "important"), "random_field_xyz=important"},
		{zap.String("field.with.dots", "v"), "field.with.dots=v"},
	}

	fields := make([]zapcore.Field, 0, len(tests))
	for _, tt := range tests {
		fields = append(fields, tt.field)
	}

	buf, err := encoder.EncodeEntry(entry, fields)
	require.NoError(t, err)
	out := stripANSI(buf.String())

	assert.Contains(t, out, "13:04:35")
	assert.Contains(t, out, "engine")
	assert.Contains(t, out, "Program compiled")
	for _, tt := range tests {
		assert.Contains(t, out, tt.mustFind)
	}
}

func TestMinimalEncoderLevels(t *testing.T) {
	encoder := newMinimalEncoder()

	info, err := encoder.EncodeEntry(zapcore.Entry{Level: zapcore.InfoLevel, Message: "ok"}, nil)
	require.NoError(t, err)
	assert.NotContains(t, stripANSI(info.String()), "INFO")

	warn, err := encoder.EncodeEntry(zapcore.Entry{Level: zapcore.WarnLevel, Message: "dup"}, nil)
	require.NoError(t, err)
	assert.Contains(t, stripANSI(warn.String()), "WARN")
}

func TestAbbreviateName(t *testing.T) {
	assert.Equal(t, "t.writer", abbreviateName("typegen.writer"))
	assert.Equal(t, "engine", abbreviateName("engine"))
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { currentTheme = "everforest" })

	SetTheme("gruvbox")
	assert.Equal(t, gruvbox, colors())
	SetTheme("neon")
	assert.Equal(t, gruvbox, colors())
}
