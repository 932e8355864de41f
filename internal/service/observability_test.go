package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogUseCaseObserver_Levels(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx := context.Background()

	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "submit_goal", Key: "k", Duration: 1500 * time.Millisecond, Success: true,
		Fields: map[string]any{"archetype": "GROWTH"}})
	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "start_interview", Key: "k", Err: context.Canceled})
	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "auto_generate", Key: "k", Err: errors.New("boom")})

	lines := logLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "wizard_use_case", lines[0]["msg"])
	assert.Equal(t, "GROWTH", lines[0]["archetype"])
	assert.EqualValues(t, 1500, lines[0]["duration_ms"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "ERROR", lines[2]["level"])
	assert.Equal(t, "boom", lines[2]["error"])
}

func TestLogUseCaseObserver_NilLogger(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}

type countingObserver struct{ n int }

func (c *countingObserver) ObserveUseCase(context.Context, UseCaseEvent) { c.n++ }

func TestUseCaseObserverOrNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))

	a, b := &countingObserver{}, &countingObserver{}
	assert.Same(t, a, useCaseObserverOrNoop([]UseCaseObserver{nil, a}))

	obs := useCaseObserverOrNoop([]UseCaseObserver{a, nil, b})
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "reset"})
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}
