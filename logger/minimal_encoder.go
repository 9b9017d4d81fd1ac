package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette is one console colour theme
type palette struct {
	fg        string
	time      string
	accent    string
	secondary string
	ident     string
	number    string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

// Gruvbox Dark (warm, muted)
var gruvbox = palette{
	fg:        "\x1b[38;5;223m",
	time:      "\x1b[38;5;108m",
	accent:    "\x1b[38;5;208m",
	secondary: "\x1b[38;5;214m",
	ident:     "\x1b[38;5;109m",
	number:    "\x1b[38;5;175m",
	warn:      "\x1b[38;5;214m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;88m",
}

// Everforest Dark (forest greens)
var everforest = palette{
	fg:        "\x1b[38;5;223m",
	time:      "\x1b[38;5;107m",
	accent:    "\x1b[38;5;108m",
	secondary: "\x1b[38;5;208m",
	ident:     "\x1b[38;5;109m",
	number:    "\x1b[38;5;108m",
	warn:      "\x1b[38;5;179m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;52m",
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for log output.
// Unknown names are ignored.
func SetTheme(theme string) {
	if theme == "everforest" || theme == "gruvbox" {
		currentTheme = theme
	}
}

func colors() palette {
	if currentTheme == "gruvbox" {
		return gruvbox
	}
	return everforest
}

func colorComponent(name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	if hash%2 == 0 {
		return colors().accent
	}
	return colors().secondary
}

// colorMessage picks a message colour from its verb
func colorMessage(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "generated"), strings.Contains(lower, "compiled"),
		strings.Contains(lower, "bound"), strings.Contains(lower, "resolved"):
		return colors().accent
	case strings.Contains(lower, "mask"), strings.Contains(lower, "bundler"),
		strings.Contains(lower, "watch"), strings.Contains(lower, "config"):
		return colors().secondary
	}
	return colors().fg
}

// minimalEncoder implements a calm, compact console encoder with theme support
// Format: "13:04:35  engine  Program compiled  key=main"
type minimalEncoder struct {
	zapcore.Encoder
	buf *buffer.Buffer
}

func newMinimalEncoder() *minimalEncoder {
	baseEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	return &minimalEncoder{
		Encoder: baseEncoder,
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	final.AppendString(colors().time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level only shown for non-info entries
	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(colorMessage(ent.Message))
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if len(fields) > 0 {
		if rendered := renderFields(fields); rendered != "" {
			final.AppendString("  ")
			final.AppendString(rendered)
		}
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for non-info levels
func levelColorString(level zapcore.Level) string {
	p := colors()
	switch level {
	case zapcore.DebugLevel:
		return p.ident + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + p.warnBg + p.warn + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + p.errBg + p.err + "ERROR" + colorReset
	default:
		return colorBold + p.errBg + p.err + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens dotted component names: typegen.writer -> t.writer
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// renderFields encodes every field as key=value. Nothing is dropped; identifier
// and numeric fields get their own colour.
func renderFields(fields []zapcore.Field) string {
	m := zapcore.NewMapObjectEncoder()
	order := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, seen := m.Fields[f.Key]; !seen {
			order = append(order, f.Key)
		}
		f.AddTo(m)
	}
	// Namespaced or nested fields can add keys we did not see directly
	if len(m.Fields) != len(order) {
		order = order[:0]
		for k := range m.Fields {
			order = append(order, k)
		}
		sort.Strings(order)
	}

	p := colors()
	parts := make([]string, 0, len(order))
	for _, key := range order {
		val, ok := m.Fields[key]
		if !ok {
			continue
		}
		text := fmt.Sprintf("%v", val)
		switch key {
		case FieldEngine, FieldType, FieldKey, FieldHandle, FieldRunID:
			text = p.ident + text + colorReset
		case FieldCount, FieldDurationMS, FieldPID:
			text = p.number + text + colorReset
		case FieldError:
			text = p.err + text + colorReset
		}
		parts = append(parts, key+"="+text)
	}
	return strings.Join(parts, " ")
}
