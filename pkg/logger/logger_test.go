package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	entry := GetLogger(context.Background())
	require.NotNil(t, entry)
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	custom := logrus.NewEntry(logrus.New()).WithField("component", "compiler")
	ctx := WithLogger(context.Background(), custom)

	got := GetLogger(ctx)
	assert.Equal(t, "compiler", got.Data["component"])
}

func TestSetLogLevel(t *testing.T) {
	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("loud"))

	require.NoError(t, SetLogLevel("info"))
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	applyFormat(l, "json")

	l.Info("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
