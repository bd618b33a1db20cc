package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.Info("hello")
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])

	assert.Equal(t, logrus.InfoLevel, New("loud", "text", &buf).GetLevel())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New("info", "json", &buf)

	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))

	FromContext(ctx, base).With("project_id", "p1").LogError("save_project", errors.New("boom"))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "save_project", line["operation"])
	assert.Equal(t, "p1", line["project_id"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "error", line["level"])
}

func TestFromContext_UnknownRequest(t *testing.T) {
	var buf bytes.Buffer
	FromContext(context.Background(), New("info", "json", &buf)).LogInfo("load", "ok")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "unknown", line["request_id"])
}
