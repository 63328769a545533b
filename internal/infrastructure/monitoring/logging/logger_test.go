package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

// newTestLogger returns a logger writing JSON into a buffer.
func newTestLogger(t *testing.T, level zapcore.Level) (*zapLogger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	atomic := zap.NewAtomicLevelAt(level)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, atomic)
	return &zapLogger{z: zap.New(core), level: atomic}, buf
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		t.Run(format, func(t *testing.T) {
			l, err := NewLogger(LogConfig{Level: "debug", Format: format, OutputPaths: []string{"stderr"}})
			require.NoError(t, err)
			assert.NotNil(t, l)
			_, ok := l.(LevelSetter)
			assert.True(t, ok, "zap logger should support runtime level changes")
		})
	}
}

func TestNewLogger_UnopenablePath(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir/chemsem/log.json"}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"DEBUG": zapcore.DebugLevel,
		"Warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"info":  zapcore.InfoLevel,
		"bogus": zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
	assert.NoError(t, l.Sync())
}

func TestOrNop(t *testing.T) {
	assert.Equal(t, NewNopLogger(), OrNop(nil))
	l, _ := newTestLogger(t, zapcore.DebugLevel)
	assert.Same(t, l, OrNop(l))
}

func TestZapLogger_LevelsAndFields(t *testing.T) {
	l, buf := newTestLogger(t, zapcore.DebugLevel)

	l.Debug("stereo element dropped", Atom(4), Reason("neighbor_count"))
	l.Warn("unrecognised stereo variant", String("kind", "other"))
	l.With(String("run_id", "r-1")).Named("adapter").Info("adapted", Int("atoms", 6))

	out := buf.String()
	assert.Contains(t, out, `"level":"debug"`)
	assert.Contains(t, out, `"atom":4`)
	assert.Contains(t, out, `"reason":"neighbor_count"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"run_id":"r-1"`)
	assert.Contains(t, out, `"logger":"adapter"`)
}

func TestZapLogger_TypedFields(t *testing.T) {
	l, buf := newTestLogger(t, zapcore.DebugLevel)

	l.Info("fields",
		Err(errors.New("boom")),
		Duration("took", 2*time.Millisecond),
		Any("ring", []int{0, 1, 2}),
		Any("kind", molecule.Clockwise),
		Bool("ok", true),
		Float64("threshold", 5.0),
	)

	out := buf.String()
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"ring":[0,1,2]`)
	assert.Contains(t, out, `"kind":"clockwise"`)
	assert.Contains(t, out, `"ok":true`)
}

func TestZapLogger_SetLevelAffectsChildren(t *testing.T) {
	l, buf := newTestLogger(t, zapcore.InfoLevel)
	child := l.Named("partition")

	child.Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	l.SetLevel("debug")
	child.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newTestLogger(t, zapcore.InfoLevel)
	SetDefault(l)
	assert.Same(t, l, Default())

	SetDefault(nil)
	assert.Same(t, l, Default(), "nil must not replace the default")
}
