package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), false, nil, "revitgen", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, span := Tracer("").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInit_Enabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), true, &buf, "revitgen", "test")
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Init(context.Background(), false, nil, "", "") })

	_, span := Tracer("").Start(context.Background(), "revitgen.test")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "revitgen.test")
	assert.Contains(t, buf.String(), "service.name")
}
