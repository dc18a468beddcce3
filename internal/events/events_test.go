package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_KeepsOrder(t *testing.T) {
	t.Parallel()
	c := NewCollector()
	ctx := context.Background()

	c.Emit(ctx, Event{StepText: "first"})
	c.Emit(ctx, Event{StepText: "second"})

	got := c.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].StepText)
	assert.Equal(t, "second", got[1].StepText)
}

func TestCollector_EventsReturnsCopy(t *testing.T) {
	t.Parallel()
	c := NewCollector()
	c.Emit(context.Background(), Event{StepText: "only"})

	got := c.Events()
	got[0].StepText = "mutated"

	assert.Equal(t, "only", c.Events()[0].StepText)
}

func TestNopSink(t *testing.T) {
	t.Parallel()
	var s Sink = NopSink{}
	s.Emit(context.Background(), Event{StepText: "dropped"})
	assert.NoError(t, s.Close())
}
