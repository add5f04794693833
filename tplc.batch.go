package tplc

import (
	"context"
	"runtime"

	"github.com/itsatony/go-cuserr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of compiling one template in a batch.
type BatchResult struct {
	Identifier string
	Compiled   *CompiledSource
	Err        error
}

// CompileAll compiles identifiers in parallel with at most jobs goroutines
// (GOMAXPROCS when jobs <= 0). Results keep the input order; a template
// that fails to compile records its error and does not stop the others.
// The returned error is non-nil only when ctx is cancelled.
func (e *Engine) CompileAll(ctx context.Context, identifiers []string, jobs int) ([]BatchResult, error) {
	results := make([]BatchResult, len(identifiers))
	if len(identifiers) == 0 {
		return results, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	e.logger.Debug(LogMsgBatchStart,
		zap.Int(LogFieldCount, len(identifiers)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(identifiers)))
	for i, id := range identifiers {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			compiled, err := e.Compile(id)
			results[i] = BatchResult{Identifier: id, Compiled: compiled, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, cuserr.WrapStdError(err, ErrCodeCompile, ErrMsgBatchCancelled)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	e.logger.Debug(LogMsgBatchDone,
		zap.Int(LogFieldCount, len(identifiers)),
		zap.Int(LogFieldFailed, failed))
	return results, nil
}
