package operations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"housingcli/internal/config"
	apperrors "housingcli/internal/errors"
)

// Pipeline executes steps strictly in sequence
type Pipeline struct {
	steps  []Step
	tracer *OperationTracer
	logger *slog.Logger
}

// NewPipeline creates a pipeline over the given steps. A nil tracer falls
// back to no-op telemetry.
func NewPipeline(steps []Step, tracer *OperationTracer, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		var err error
		if tracer, err = NewOperationTracer(nil); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool, len(steps))
	for _, step := range steps {
		if step == nil {
			return nil, fmt.Errorf("pipeline step is nil")
		}
		if seen[step.ID()] {
			return nil, fmt.Errorf("duplicate pipeline step %q", step.ID())
		}
		seen[step.ID()] = true
	}

	return &Pipeline{steps: steps, tracer: tracer, logger: logger}, nil
}

// Steps returns the steps in execution order
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Run executes every step against state. The first failing step stops the
// run; the steps after it are marked skipped and its error is returned.
func (p *Pipeline) Run(ctx context.Context, state *RunState) error {
	for _, step := range p.steps {
		if state.GetStep(step.ID()) == nil {
			state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
		}
	}

	state.Start()
	ctx, span := p.tracer.TraceRun(ctx, state.ID, state.Input)
	defer span.End()

	p.logger.InfoContext(ctx, "sequential_execution_start",
		slog.String("run_id", state.ID),
		slog.Int("step_count", len(p.steps)))

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			cerr := NewCancellationError(step.ID(), err)
			p.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()))
			p.skipRemaining(state, i, "run cancelled")
			return p.finish(ctx, span, state, cerr)
		}

		p.logger.InfoContext(ctx, "executing_step",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(p.steps)))

		if err := p.executeStep(ctx, state, step); err != nil {
			p.skipRemaining(state, i+1, fmt.Sprintf("previous step %s failed", step.ID()))
			return p.finish(ctx, span, state, err)
		}
	}

	p.logger.InfoContext(ctx, "all_steps_completed",
		slog.String("run_id", state.ID),
		slog.Int("warnings", len(state.Warnings)))
	return p.finish(ctx, span, state, nil)
}

func (p *Pipeline) executeStep(ctx context.Context, state *RunState, step Step) error {
	stepState := state.GetStep(step.ID())

	if err := step.Validate(state); err != nil {
		p.logger.ErrorContext(ctx, "validation_failed",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		stepState.Fail(err)
		return err
	}

	stepCtx, span := p.tracer.TraceStep(ctx, state.ID, step.ID())
	defer span.End()

	warningsBefore := len(state.Warnings)
	tablesBefore := len(state.Tables)
	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)

	for _, w := range state.Warnings[warningsBefore:] {
		p.tracer.RecordWarning(stepCtx, w.Step, w.Kind, w.Message)
		p.logger.WarnContext(stepCtx, w.Message,
			slog.String("run_id", state.ID),
			slog.String("step", w.Step),
			slog.String("kind", w.Kind))
	}

	if err != nil {
		stepState.Fail(err)
		p.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, stepState.Rows, err)
		p.logger.ErrorContext(stepCtx, "step_execution_failed",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		if len(stepState.Metadata) > 0 {
			if metaJSON, jerr := json.Marshal(stepState.Metadata); jerr == nil {
				p.logger.ErrorContext(stepCtx, "step_metadata",
					slog.String("step", step.ID()),
					slog.String("metadata", string(metaJSON)))
			}
		}
		return NewExecutionError(step.ID(), err)
	}

	stepState.Complete()
	p.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, stepState.Rows, nil)
	p.recordArtifacts(stepCtx, state, step, tablesBefore)
	p.logger.InfoContext(stepCtx, "step_completed",
		slog.String("run_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration),
		slog.Int("rows", stepState.Rows),
		slog.String("message", stepState.Message))
	return nil
}

func (p *Pipeline) skipRemaining(state *RunState, from int, reason string) {
	for _, step := range p.steps[from:] {
		if s := state.GetStep(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

func (p *Pipeline) finish(ctx context.Context, span trace.Span, state *RunState, err error) error {
	if err != nil {
		state.Fail(err)
	} else {
		state.Complete()
	}
	code := ExitCode(err)
	p.tracer.RecordRunCompletion(ctx, span, code, state.Duration())
	if err != nil {
		p.logger.ErrorContext(ctx, "run_failed",
			slog.String("run_id", state.ID),
			slog.Int("exit_code", code),
			slog.String("error", err.Error()))
	}
	return err
}

// recordArtifacts counts the files a successful step left behind
func (p *Pipeline) recordArtifacts(ctx context.Context, state *RunState, step Step, tablesBefore int) {
	for range state.Tables[tablesBefore:] {
		p.tracer.RecordArtifact(ctx, "csv")
	}
	switch step.ID() {
	case StepIDCharts:
		if state.Charts != nil {
			for _, f := range state.Charts.Files {
				p.tracer.RecordArtifact(ctx, strings.TrimPrefix(filepath.Ext(f.Name), "."))
			}
		}
	case StepIDPublish:
		p.tracer.RecordArtifact(ctx, "xlsx")
		p.tracer.RecordArtifact(ctx, "json")
	}
}

// ExitCode maps a run error to the pipeline command's exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return config.ExitOK
	case errors.Is(err, apperrors.ErrNoInputFile):
		return config.ExitNoInput
	case errors.Is(err, apperrors.ErrNoDates):
		return config.ExitNoDates
	default:
		return config.ExitFailure
	}
}
