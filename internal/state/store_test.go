package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)

	run, err := store.CreateRun()
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	require.NoError(t, store.CompleteRun(run.ID, nil))

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Empty(t, got.Error)
}

func TestRunFailure(t *testing.T) {
	store := openTestStore(t)

	run, err := store.CreateRun()
	require.NoError(t, err)
	require.NoError(t, store.CompleteRun(run.ID, fmt.Errorf("sectors step failed")))

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Contains(t, got.Error, "sectors")
}

func TestRecordSteps(t *testing.T) {
	store := openTestStore(t)

	run, err := store.CreateRun()
	require.NoError(t, err)

	for _, step := range []string{"ag", "emissions", "sectors"} {
		status := RunStatusCompleted
		errMsg := ""
		if step == "sectors" {
			status = RunStatusFailed
			errMsg = "unmapped sector"
		}
		require.NoError(t, store.RecordStep(StepResult{
			RunID:      run.ID,
			Step:       step,
			Status:     status,
			StartedAt:  run.StartedAt,
			DurationMs: 12,
			Error:      errMsg,
		}))
	}

	steps, err := store.StepsForRun(run.ID)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "ag", steps[0].Step)
	assert.Equal(t, RunStatusFailed, steps[2].Status)
	assert.Equal(t, "unmapped sector", steps[2].Error)
}
