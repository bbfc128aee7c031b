package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"goodcheck/internal/source"
)

type Scheduler struct {
	concurrency int

	// search is a test seam; nil means searchRule.
	search func(ctx context.Context, rp *RulePlan, files []source.File) RuleExecutionResult
}

func NewScheduler(concurrency int) (*Scheduler, error) {
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be >= 1, got %d", concurrency)
	}
	return &Scheduler{concurrency: concurrency}, nil
}

// Execute searches every planned rule and streams the results.
//
// Channel semantics:
//   - Results arrive in rule order, one per rule, whatever order the rules
//     finish in. With concurrency 1 rules also run one at a time, in order.
//   - A rule's problems are part of its result; they never stop other rules.
//   - On context cancellation, the scheduler stops promptly; it may emit
//     fewer results than rules.
//   - The results channel and error channel are both closed reliably.
//   - The error channel is used for fatal errors / cancellation signals.
func (s *Scheduler) Execute(ctx context.Context, plan *ScanPlan) (<-chan RuleExecutionResult, <-chan error) {
	resultsCh := make(chan RuleExecutionResult)
	errCh := make(chan error, 1)

	go func() {
		defer close(resultsCh)
		defer close(errCh)

		trySendErr := func(err error) {
			if err == nil {
				return
			}
			select {
			case errCh <- err:
			default:
			}
		}

		if ctx == nil {
			trySendErr(errors.New("context is nil"))
			return
		}
		if plan == nil {
			trySendErr(errors.New("scan plan is nil"))
			return
		}
		if s == nil {
			trySendErr(errors.New("scheduler is nil"))
			return
		}
		if s.concurrency <= 0 {
			trySendErr(fmt.Errorf("scheduler concurrency must be >= 1, got %d", s.concurrency))
			return
		}
		for i, rp := range plan.RulePlans {
			if rp == nil {
				trySendErr(fmt.Errorf("nil rule plan at index %d", i))
				return
			}
		}

		search := s.search
		if search == nil {
			search = searchRule
		}

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		// One buffered slot per rule; the emitter drains them in order.
		slots := make([]chan RuleExecutionResult, len(plan.RulePlans))
		for i := range slots {
			slots[i] = make(chan RuleExecutionResult, 1)
		}

		var g errgroup.Group
		g.SetLimit(s.concurrency)

		dispatched := make(chan struct{})
		go func() {
			defer close(dispatched)
			for i, rp := range plan.RulePlans {
				if runCtx.Err() != nil {
					return
				}
				g.Go(func() error {
					slots[i] <- search(runCtx, rp, plan.Files)
					return nil
				})
			}
		}()

	emitLoop:
		for i := range slots {
			select {
			case res := <-slots[i]:
				select {
				case resultsCh <- res:
				case <-runCtx.Done():
					break emitLoop
				}
			case <-runCtx.Done():
				break emitLoop
			}
		}

		cancel()
		<-dispatched
		_ = g.Wait()
		trySendErr(ctx.Err())
	}()

	return resultsCh, errCh
}
