package operations

import (
	"sync"
	"time"

	"housingcli/internal/charts"
	"housingcli/internal/dataprocessing"
	"housingcli/internal/exporter"
	"housingcli/pkg/contracts/domain"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Warning is a non-fatal anomaly raised by a step
type Warning struct {
	Step    string `json:"step"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RunState carries the data passed between steps of one pipeline run
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Error     error      `json:"-"`

	// Step states keyed by step id, in execution order
	Steps     map[string]*StepState `json:"steps"`
	StepOrder []string              `json:"step_order"`

	// Input is the raw file the run reads; a caller may preset it.
	Input         string                      `json:"input"`
	Raw           *dataprocessing.RawTable    `json:"-"`
	Table         *domain.CanonicalTable      `json:"-"`
	Monthly       []domain.MonthlySummary     `json:"-"`
	Deltas        []domain.MonthlySummary     `json:"-"`
	Snapshot      *dataprocessing.Snapshot    `json:"-"`
	Affordability []domain.AffordabilityRow   `json:"-"`
	Charts        *charts.Report              `json:"-"`
	Tables        []exporter.TableFile        `json:"tables"`
	Manifest      *exporter.Manifest          `json:"-"`
	Warnings      []Warning                   `json:"warnings"`
	Assumptions   domain.FinancialAssumptions `json:"assumptions"`
}

// NewRunState creates a new run state
func NewRunState(id string) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (r *RunState) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Error = err
}

// GetStep returns the state of a step, nil if it never registered
func (r *RunState) GetStep(stepID string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Steps[stepID]
}

// SetStep registers the state of a step, keeping first-registration order
func (r *RunState) SetStep(stepID string, state *StepState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.Steps[stepID]; !exists {
		r.StepOrder = append(r.StepOrder, stepID)
	}
	r.Steps[stepID] = state
}

// OrderedSteps returns step states in execution order
func (r *RunState) OrderedSteps() []*StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*StepState, 0, len(r.StepOrder))
	for _, id := range r.StepOrder {
		out = append(out, r.Steps[id])
	}
	return out
}

// AddWarning records a non-fatal anomaly
func (r *RunState) AddWarning(step, kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Warnings = append(r.Warnings, Warning{Step: step, Kind: kind, Message: message})
}

// AddTable records a written table for the manifest
func (r *RunState) AddTable(name, path string, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Tables = append(r.Tables, exporter.TableFile{Name: name, Path: path, Rows: rows})
}

// Duration returns how long the run took, or has taken so far
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

// HasFailures reports whether any step failed
func (r *RunState) HasFailures() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.Steps {
		if s.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}
