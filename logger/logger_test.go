package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
	}{
		{name: "JSON output mode", jsonOutput: true, verbosity: 0},
		{name: "Console output mode", jsonOutput: false, verbosity: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := Replace(nil)
			defer restore()

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
			assert.Equal(t, tt.verbosity, Verbosity)
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityAll, zapcore.DebugLevel},
		{9, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Debug (-vv)", LevelName(2))
	assert.Equal(t, "All (-vvvv+)", LevelName(7))
	assert.Equal(t, "Unknown", LevelName(-3))
}

func TestShouldOutput(t *testing.T) {
	assert.True(t, ShouldOutput(VerbosityUser, OutputResults))
	assert.False(t, ShouldOutput(VerbosityUser, OutputSkipped))
	assert.True(t, ShouldOutput(VerbosityInfo, OutputSkipped))
	assert.False(t, ShouldOutput(VerbosityInfo, OutputPlan))
	assert.True(t, ShouldOutput(VerbosityDebug, OutputPlan))
	assert.False(t, ShouldOutput(VerbosityTrace, OutputSourceDump))
	assert.True(t, ShouldOutput(VerbosityAll, OutputSourceDump))
	assert.False(t, ShouldOutput(VerbosityTrace, OutputCategory(99)))
	assert.Equal(t, "skipped", CategoryName(OutputSkipped))
	assert.Equal(t, "unknown", CategoryName(OutputCategory(99)))
}

func TestFieldsFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, FieldsFromContext(ctx))

	ctx = WithRunID(ctx, "run-1")
	ctx = WithTarget(ctx, "models")
	ctx = WithComponent(ctx, "generator")

	fields := FieldsFromContext(ctx)
	assert.Equal(t, []interface{}{
		FieldRunID, "run-1",
		FieldTarget, "models",
		FieldComponent, "generator",
	}, fields)
	assert.Equal(t, "run-1", RunIDFromContext(ctx))
	assert.Equal(t, "", RunIDFromContext(context.Background()))
}

func TestLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core).Sugar())
	defer restore()

	ctx := WithRunID(context.Background(), "abc")
	LoggerFromContext(ctx).Infow("generated", FieldRecord, "User")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields[FieldRunID])
	assert.Equal(t, "User", fields[FieldRecord])

	// No context fields returns the global logger unchanged
	assert.Same(t, Logger, LoggerFromContext(context.Background()))
}

func TestComponentLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core).Sugar())
	defer restore()

	ChildLogger(ComponentLogger("synth"), FieldField, "age").Warnw("skipped")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "synth", entries[0].LoggerName)
	assert.Equal(t, "age", entries[0].ContextMap()[FieldField])
}

func TestWrappers(t *testing.T) {
	restore := Replace(zaptest.NewLogger(t).Sugar())
	defer restore()

	Info("info")
	Infow("infow", FieldCount, 1)
	Debugw("debugw")
	Warnw("warnw")
	Errorw("errorw", FieldError, "boom")
	Cleanup()
}
