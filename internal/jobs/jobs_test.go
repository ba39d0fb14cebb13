package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/histpath/readingorder/format"
	"github.com/histpath/readingorder/layout"
)

const sampleGeneric = `[
  {"text":"天","confidence":0.9,"polygon":[495,5,505,5,505,15,495,15]},
  {"text":"下","confidence":0.8,"polygon":[500,45,510,45,510,55,500,55]},
  {"text":"太","confidence":0.7,"polygon":[5,25,15,25,15,35,5,35]}
]`

func defaultProcessor() ProcessFunc {
	return OrderProcessor(layout.StrategyConfig{
		Name:       layout.StrategyDensityBased,
		Eps:        layout.DefaultEps,
		MinSamples: layout.DefaultMinSamples,
	}, false, zerolog.Nop())
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateQueued, StateProcessing, true},
		{StateQueued, StateFailed, true},
		{StateQueued, StateCompleted, false},
		{StateProcessing, StateCompleted, true},
		{StateProcessing, StateFailed, true},
		{StateProcessing, StateQueued, false},
		{StateCompleted, StateFailed, false},
		{StateFailed, StateProcessing, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateQueued.Terminal())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	job, err := store.Create(ctx, "page.json")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, StateQueued, job.State)
	assert.Equal(t, "page.json", job.Source)

	got, err := store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	got.State = StateProcessing
	require.NoError(t, store.Update(ctx, got))

	got, err = store.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StateProcessing, got.State)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, Job{ID: "missing"}), ErrNotFound)
}

func TestMemoryStore_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		job, err := store.Create(ctx, "")
		require.NoError(t, err)
		assert.False(t, seen[job.ID], "duplicate id %s", job.ID)
		seen[job.ID] = true
	}
}

func TestRunner_Run(t *testing.T) {
	store := NewMemoryStore()
	runner := NewRunner(store, defaultProcessor(), RunnerConfig{Workers: 2, Logger: zerolog.Nop()})

	tasks := []Task{
		{Source: "a.json", Data: []byte(sampleGeneric)},
		{Source: "b.json", Data: []byte("not a detection file")},
		{Source: "c.json", Data: []byte(sampleGeneric), Format: format.Generic},
	}

	jobs, err := runner.Run(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.Equal(t, "a.json", jobs[0].Source)
	assert.Equal(t, StateCompleted, jobs[0].State)
	require.Len(t, jobs[0].Results, 1)
	assert.Equal(t, "天下太", jobs[0].Results[0].FullText)

	assert.Equal(t, StateFailed, jobs[1].State)
	assert.NotEmpty(t, jobs[1].Error)
	assert.Empty(t, jobs[1].Results)

	assert.Equal(t, StateCompleted, jobs[2].State)

	for _, job := range jobs {
		stored, err := store.Get(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.State, stored.State)
	}
}

func TestRunner_BoundedConcurrency(t *testing.T) {
	var running, peak int32
	process := func(ctx context.Context, task Task) (Outcome, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return Outcome{}, nil
	}

	runner := NewRunner(NewMemoryStore(), process, RunnerConfig{Workers: 2})
	tasks := make([]Task, 8)
	jobs, err := runner.Run(context.Background(), tasks)
	require.NoError(t, err)
	assert.Len(t, jobs, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))

	for _, job := range jobs {
		assert.Equal(t, StateCompleted, job.State)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	runner := NewRunner(store, defaultProcessor(), RunnerConfig{Workers: 1})
	jobs, err := runner.Run(ctx, []Task{{Source: "a.json", Data: []byte(sampleGeneric)}})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, StateFailed, jobs[0].State)
	assert.Contains(t, jobs[0].Error, "canceled")
}

type failingStore struct {
	*MemoryStore
}

func (s failingStore) Update(ctx context.Context, job Job) error {
	return errors.New("store unavailable")
}

func TestRunner_StoreError(t *testing.T) {
	runner := NewRunner(failingStore{NewMemoryStore()}, defaultProcessor(), RunnerConfig{})
	assert.Equal(t, DefaultWorkers, runner.Workers())

	jobs, err := runner.Run(context.Background(), []Task{{Source: "a.json", Data: []byte(sampleGeneric)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
	require.Len(t, jobs, 1)
	assert.Equal(t, StateQueued, jobs[0].State, "unwritten state must not be reported")
}

func TestRunner_Submit(t *testing.T) {
	store := NewMemoryStore()
	runner := NewRunner(store, defaultProcessor(), RunnerConfig{Workers: 1})

	job, err := runner.Submit(context.Background(), Task{Source: "a.json", Data: []byte(sampleGeneric)})
	require.NoError(t, err)
	assert.Equal(t, StateQueued, job.State)

	runner.Wait()

	got, err := store.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, got.State)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "天下太", got.Results[0].FullText)
}

func TestTransition_Invalid(t *testing.T) {
	runner := NewRunner(NewMemoryStore(), defaultProcessor(), RunnerConfig{})
	_, err := runner.transition(context.Background(), Job{ID: "x", State: StateCompleted}, StateProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderProcessor_Warnings(t *testing.T) {
	data := `[{"text":"天","confidence":0.1,"polygon":[0,0,10,0,10,10,0,10]},{"text":"x","confidence":0.9}]`
	outcome, err := defaultProcessor()(context.Background(), Task{Data: []byte(data)})
	require.NoError(t, err)
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, 1, outcome.Results[0].Dropped)
	assert.NotEmpty(t, outcome.Warnings)
}
