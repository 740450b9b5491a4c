package xlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/sigflow/pkg/context/xcorr"
	"github.com/omeyang/sigflow/pkg/observability/xlog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    xlog.Level
		wantErr bool
	}{
		{"debug", xlog.LevelDebug, false},
		{"INFO", xlog.LevelInfo, false},
		{" warn ", xlog.LevelWarn, false},
		{"warning", xlog.LevelWarn, false},
		{"Error", xlog.LevelError, false},
		{"trace", xlog.LevelInfo, true},
		{"", xlog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := xlog.ParseLevel(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", xlog.LevelDebug.String())
	assert.Equal(t, "INFO", xlog.LevelInfo.String())
	assert.Equal(t, "WARN", xlog.LevelWarn.String())
	assert.Equal(t, "ERROR", xlog.LevelError.String())
}

func TestBuilder_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetFormat("json").
		Build()
	require.NoError(t, err)
	defer cleanup()

	logger.Info(context.Background(), "hello",
		xlog.Component("test"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "test", entry["component"])
}

func TestBuilder_UnknownFormat(t *testing.T) {
	_, _, err := xlog.New().SetFormat("xml").Build()
	assert.Error(t, err)
}

func TestBuilder_EmptyFormatDefaultsToText(t *testing.T) {
	var buf bytes.Buffer

	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetFormat("").
		Build()
	require.NoError(t, err)
	defer cleanup()

	logger.Info(context.Background(), "plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestBuilder_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetLevelString("warn").
		Build()
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	logger.Info(ctx, "filtered")
	logger.Warn(ctx, "visible")

	out := buf.String()
	assert.NotContains(t, out, "filtered")
	assert.Contains(t, out, "visible")
}

func TestBuilder_DynamicLevel(t *testing.T) {
	var buf bytes.Buffer

	logger, cleanup, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	logger.Debug(ctx, "before")
	assert.Empty(t, buf.String())

	logger.SetLevel(xlog.LevelDebug)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())

	logger.Debug(ctx, "after")
	assert.Contains(t, buf.String(), "after")
}

func TestEnrich_InjectsCorrelationID(t *testing.T) {
	var buf bytes.Buffer

	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetFormat("json").
		Build()
	require.NoError(t, err)
	defer cleanup()

	ctx, err := xcorr.WithID(context.Background(), "abc-123")
	require.NoError(t, err)

	logger.Info(ctx, "with correlation")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc-123", entry[xcorr.KeyCorrelationID])
}

func TestEnrich_NoIDNoAttr(t *testing.T) {
	var buf bytes.Buffer

	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetFormat("json").
		Build()
	require.NoError(t, err)
	defer cleanup()

	logger.Info(context.Background(), "bare")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry[xcorr.KeyCorrelationID]
	assert.False(t, ok)
}

func TestEnrich_Disabled(t *testing.T) {
	var buf bytes.Buffer

	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetFormat("json").
		SetEnrich(false).
		Build()
	require.NoError(t, err)
	defer cleanup()

	ctx, err := xcorr.WithID(context.Background(), "abc-123")
	require.NoError(t, err)

	logger.Info(ctx, "no enrich")
	assert.NotContains(t, buf.String(), "abc-123")
}

func TestWith_DerivedLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer

	logger, cleanup, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)
	defer cleanup()

	derived := logger.With(xlog.Component("sub"))
	logger.SetLevel(xlog.LevelError)

	derived.Info(context.Background(), "suppressed")
	assert.Empty(t, buf.String())
}

func TestErr(t *testing.T) {
	attr := xlog.Err(nil)
	assert.True(t, attr.Equal(xlog.Err(nil)))
	assert.Empty(t, attr.Key)

	attr = xlog.Err(assert.AnError)
	assert.Equal(t, xlog.KeyError, attr.Key)
	assert.Equal(t, assert.AnError.Error(), attr.Value.String())
}

func TestGlobalDefault(t *testing.T) {
	t.Cleanup(xlog.ResetDefault)

	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)
	defer cleanup()

	xlog.SetDefault(logger)
	xlog.Info(context.Background(), "global message")

	assert.True(t, strings.Contains(buf.String(), "global message"))
}
