package async

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCollectsAllResults(t *testing.T) {
	tasks := []Task{
		{Name: "a", Execute: func() (interface{}, error) { return 1, nil }},
		{Name: "b", Execute: func() (interface{}, error) { return 2, nil }},
		{Name: "c", Execute: func() (interface{}, error) { return nil, errors.New("boom") }},
	}

	pool := NewPool(len(tasks))
	results := pool.Execute(context.Background(), tasks)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results["a"].Data)
	assert.Equal(t, 2, results["b"].Data)
	assert.Error(t, results["c"].Err)
}

func TestExecutePartialResultsOnExpiredContext(t *testing.T) {
	release := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	tasks := []Task{
		{Name: "fast", Execute: func() (interface{}, error) { return 1, nil }},
		{Name: "slow", Execute: func() (interface{}, error) {
			<-release
			return 2, nil
		}},
	}

	pool := NewPool(2)
	results := pool.Execute(ctx, tasks)
	close(release)

	_, hasSlow := results["slow"]
	assert.False(t, hasSlow, "a task still running at the deadline must not appear")
}

func TestExecuteReleasesWorkersAfterTimeout(t *testing.T) {
	before := runtime.NumGoroutine()

	release := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	tasks := make([]Task, 4)
	for i := range tasks {
		tasks[i] = Task{
			Name: string(rune('a' + i)),
			Execute: func() (interface{}, error) {
				<-release
				return nil, nil
			},
		}
	}

	pool := NewPool(len(tasks))
	pool.Execute(ctx, tasks)

	// Unblock the stragglers; their pending result sends must observe the
	// expired context and exit instead of blocking forever.
	close(release)

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond, "workers still alive after the context expired")
}
