// Package operations runs the housing pipeline as an ordered list of steps.
//
// Each Step reads what earlier steps left on the shared RunState and adds
// its own results: discover finds the raw file, load reads it, normalize
// writes the clean table, aggregate and deltas build the monthly series,
// snapshot and affordability produce the ranked table, charts renders the
// reports and publish writes the workbook and manifest.
//
// Pipeline executes the steps strictly in sequence. Every step gets its own
// span and metrics; the first failure stops the run and the remaining steps
// are marked skipped. ExitCode maps the returned error to the process exit
// status of the pipeline command.
//
// Example usage:
//
//	pipeline, err := operations.NewPipeline(operations.DefaultSteps(env), tracer, logger)
//	if err != nil {
//		return err
//	}
//	state := operations.NewRunState(runID)
//	err := pipeline.Run(ctx, state)
//	os.Exit(operations.ExitCode(err))
package operations
