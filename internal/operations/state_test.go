package operations

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustMonth(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestStepState_Lifecycle(t *testing.T) {
	s := NewStepState("load", "Raw Table Load")
	assert.Equal(t, StepStatusPending, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.GetStatus())
	s.Report(12, "12 rows")
	s.SetMetadata("columns", 4)
	s.Complete()

	assert.Equal(t, StepStatusCompleted, s.GetStatus())
	assert.Equal(t, 12, s.Rows)
	assert.Equal(t, 4, s.Metadata["columns"])
	assert.GreaterOrEqual(t, s.Duration(), time.Duration(0))

	f := NewStepState("x", "X")
	f.Fail(errors.New("bad"))
	assert.Equal(t, StepStatusFailed, f.GetStatus())
	assert.EqualError(t, f.Error, "bad")

	k := NewStepState("y", "Y")
	k.Skip("previous step failed")
	assert.Equal(t, StepStatusSkipped, k.GetStatus())
	assert.Equal(t, "previous step failed", k.Message)
}

func TestRunState(t *testing.T) {
	r := NewRunState("run-1")
	r.SetStep("b", NewStepState("b", "B"))
	r.SetStep("a", NewStepState("a", "A"))
	r.SetStep("b", NewStepState("b", "B again"))

	steps := r.OrderedSteps()
	assert.Equal(t, "b", steps[0].ID)
	assert.Equal(t, "B again", steps[0].Name)
	assert.Equal(t, "a", steps[1].ID)
	assert.Nil(t, r.GetStep("missing"))

	r.AddWarning("snapshot", WarningSnapshotFallback, "fallback used")
	r.AddTable(TableClean, "/tmp/clean.csv", 3)
	assert.Len(t, r.Warnings, 1)
	assert.Equal(t, 3, r.Tables[0].Rows)

	r.Start()
	assert.Equal(t, RunStatusRunning, r.Status)
	r.Fail(errors.New("stop"))
	assert.Equal(t, RunStatusFailed, r.Status)
	assert.NotNil(t, r.EndTime)
	assert.False(t, r.HasFailures())
}

func TestOperationError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewExecutionError("publish", cause)
	assert.Equal(t, "[execution] publish: step execution failed: disk full", err.Error())
	assert.True(t, errors.Is(err, cause))

	v := NewValidationError("load", "no input file selected")
	assert.Equal(t, "[validation] load: no input file selected", v.Error())
	assert.Nil(t, v.Unwrap())

	var nilErr *OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
}
