package router

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	answer string
	err    error
	delay  time.Duration
	calls  int
}

func (f *fakeGenerator) GenerateAnswer(ctx context.Context, _, _ string) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.answer, f.err
}

type routeRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (r *routeRecorder) ObserveGeneration(route string, ok bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		route += ":ok"
	} else {
		route += ":fail"
	}
	r.routes = append(r.routes, route)
}

func TestLocalAnswerWins(t *testing.T) {
	local := &fakeGenerator{answer: "local answer"}
	cloud := &fakeGenerator{answer: "cloud answer"}
	obs := &routeRecorder{}

	answer, err := New(local, cloud, Options{Observer: obs}).GenerateAnswer(context.Background(), "clause", "q")
	require.NoError(t, err)
	assert.Equal(t, "local answer", answer)
	assert.Equal(t, 0, cloud.calls)
	assert.Equal(t, []string{"local:ok"}, obs.routes)
}

func TestLocalErrorFallsBackToCloud(t *testing.T) {
	local := &fakeGenerator{err: errors.New("connection refused")}
	cloud := &fakeGenerator{answer: "cloud answer"}
	obs := &routeRecorder{}

	answer, err := New(local, cloud, Options{Observer: obs}).GenerateAnswer(context.Background(), "clause", "q")
	require.NoError(t, err)
	assert.Equal(t, "cloud answer", answer)
	assert.Equal(t, []string{"local:fail", "cloud:ok"}, obs.routes)
}

func TestSlowLocalFallsBackToCloud(t *testing.T) {
	local := &fakeGenerator{answer: "late", delay: time.Second}
	cloud := &fakeGenerator{answer: "cloud answer"}

	started := time.Now()
	answer, err := New(local, cloud, Options{LocalBudget: 20 * time.Millisecond}).GenerateAnswer(context.Background(), "clause", "q")
	require.NoError(t, err)
	assert.Equal(t, "cloud answer", answer)
	assert.Less(t, time.Since(started), 500*time.Millisecond)
}

func TestBlankLocalAnswerFallsBackToCloud(t *testing.T) {
	local := &fakeGenerator{answer: "  "}
	cloud := &fakeGenerator{answer: "cloud answer"}

	answer, err := New(local, cloud, Options{}).GenerateAnswer(context.Background(), "clause", "q")
	require.NoError(t, err)
	assert.Equal(t, "cloud answer", answer)
}

func TestBothFailing(t *testing.T) {
	local := &fakeGenerator{err: errors.New("down")}
	cloud := &fakeGenerator{err: errors.New("quota")}

	_, err := New(local, cloud, Options{}).GenerateAnswer(context.Background(), "clause", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestCloudOnly(t *testing.T) {
	cloud := &fakeGenerator{answer: "cloud answer"}

	answer, err := New(nil, cloud, Options{}).GenerateAnswer(context.Background(), "clause", "q")
	require.NoError(t, err)
	assert.Equal(t, "cloud answer", answer)
}

func TestCanceledCallerDoesNotReachCloud(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	local := &fakeGenerator{answer: "late", delay: time.Second}
	cloud := &fakeGenerator{answer: "cloud answer"}

	_, err := New(local, cloud, Options{}).GenerateAnswer(ctx, "clause", "q")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, cloud.calls)
}
