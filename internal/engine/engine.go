package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"goodcheck/internal/config"
	"goodcheck/internal/logging"
	"goodcheck/internal/output"
	"goodcheck/internal/rules"
	"goodcheck/internal/source"
	"goodcheck/internal/termstyle"
)

func exitCodeForRun(fatal, partial, matches bool) int {
	// Exit code contract:
	// 0 = clean run, no matches
	// 1 = matches found
	// 2 = partial failure (some rules/files errored)
	// 3 = fatal error (scan did not run)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if matches {
		return 1
	}
	return 0
}

// Summary describes a finished check run.
type Summary struct {
	Rules      int
	Files      int
	Matches    int
	Problems   int
	Suppressed int
	ExitCode   int
}

type Engine struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Painter termstyle.Painter

	log zerolog.Logger

	// schedulerExecute is a test seam for streaming execution.
	// If nil, Engine uses the real scheduler.
	schedulerExecute func(ctx context.Context, cfg *config.Config, plan *ScanPlan) (<-chan RuleExecutionResult, <-chan error)
}

// NewEngine writes console output to stdout and stderr. Nil writers fall
// back to the process streams; a nil painter disables color.
func NewEngine(stdout, stderr io.Writer, painter termstyle.Painter) *Engine {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if painter == nil {
		painter = termstyle.Plain{}
	}
	return &Engine{
		Stdout:  stdout,
		Stderr:  stderr,
		Painter: painter,
		log:     logging.GetLogger("engine"),
	}
}

func (e *Engine) setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(e.Stdout, e.Stderr, cfg.Output.Format, e.Painter)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Emit Sinks (additional structured streams)
	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(e.Stdout, emit)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

func (e *Engine) executePlanStream(ctx context.Context, cfg *config.Config, plan *ScanPlan) (<-chan RuleExecutionResult, <-chan error) {
	if e.schedulerExecute != nil {
		return e.schedulerExecute(ctx, cfg, plan)
	}

	scheduler, err := NewScheduler(cfg.Runtime.Concurrency)
	if err != nil {
		resCh := make(chan RuleExecutionResult)
		errCh := make(chan error, 1)
		close(resCh)
		errCh <- err
		close(errCh)
		return resCh, errCh
	}
	return scheduler.Execute(ctx, plan)
}

// evaluateStreamingResults forwards each rule's records to the reporter as
// the scheduler releases them, in rule order.
func evaluateStreamingResults(resCh <-chan RuleExecutionResult, reporter *output.Reporter) {
	for res := range resCh {
		reporter.Event(output.RuleStartedEvent(res.Rule))

		written := 0
		for _, m := range res.Matches {
			if reporter.Match(m) {
				written++
			}
		}
		for _, p := range res.Problems {
			reporter.Problem(p)
		}

		reporter.Event(output.Event{
			Type:     output.EventRuleFinished,
			RuleID:   res.Rule.ID,
			Files:    res.FilesSearched,
			Matches:  written,
			Problems: len(res.Problems),
		})
	}
}

// selfPath is the rule file relative to the scan root, as the reporter sees
// match paths.
func selfPath(cfg *config.Config) string {
	if !filepath.IsAbs(cfg.Rules.File) {
		return cfg.Rules.File
	}
	root, err := filepath.Abs(cfg.Runtime.Root)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(root, cfg.Rules.File)
	if err != nil {
		return ""
	}
	return rel
}

func (e *Engine) fatal(format string, args ...any) Summary {
	fmt.Fprintf(e.Stderr, "%s: %s\n", e.Painter.Fail("error"), fmt.Sprintf(format, args...))
	return Summary{ExitCode: exitCodeForRun(true, false, false)}
}

// Run executes a check: load the rule file, enumerate the scan root, search
// every selected rule and report through the configured sinks.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) Summary {
	done := logging.LogOperationStart(e.log, "check")
	defer done()

	ruleCfg, err := rules.Load(cfg.ConfigPath())
	if err != nil {
		return e.fatal("%v", err)
	}

	selected, err := ruleCfg.Resolve(cfg.Rules.Selector)
	if err != nil {
		return e.fatal("resolving rules: %v", err)
	}
	e.log.Debug().Int("rules", len(selected)).Msg("Selected rules")

	var walkProblems []rules.Problem
	src := source.New(cfg.Runtime.Root, source.WithErrorHandler(func(path string, err error) {
		walkProblems = append(walkProblems, rules.Problem{Kind: rules.ProblemFile, Path: path, Message: describeIOError(err)})
	}))
	files, err := src.Files(ctx)
	if err != nil {
		return e.fatal("%v", err)
	}
	e.log.Debug().Str("root", src.Root()).Int("files", len(files)).Msg("Scan root enumerated")

	plan := NewScanPlan(files)
	for _, r := range selected {
		if _, err := plan.AddRule(r); err != nil {
			return e.fatal("planning rule %s: %v", r.ID, err)
		}
	}

	outMgr, err := e.setupOutputManager(cfg)
	if err != nil {
		return e.fatal("creating output sinks: %v", err)
	}
	defer func() {
		if err := outMgr.Close(); err != nil {
			e.log.Error().Err(err).Msg("Failed to close output sinks")
		}
	}()

	e.log.Debug().Int("sinks", outMgr.Len()).Msg("Output sinks ready")

	reporter := output.NewReporter(outMgr, selfPath(cfg))
	reporter.Event(output.Event{Type: output.EventRunStarted, Rules: len(selected), Files: len(files)})
	for _, p := range walkProblems {
		reporter.Problem(p)
	}

	resCh, errCh := e.executePlanStream(ctx, cfg, plan)
	evaluateStreamingResults(resCh, reporter)

	var schedErr error
	// Drain scheduler errors; keep one non-nil error.
	for err := range errCh {
		if err != nil {
			schedErr = err
		}
	}
	if schedErr != nil {
		e.log.Error().Err(schedErr).Msg("Scan aborted")
	}

	matches, problems, suppressed := reporter.Counts()
	code := exitCodeForRun(schedErr != nil, problems > 0, matches > 0)

	finished := output.RunFinishedEvent(code)
	finished.Rules = len(selected)
	finished.Files = len(files)
	finished.Matches = matches
	finished.Problems = problems
	finished.Suppressed = suppressed
	reporter.Event(finished)

	return Summary{
		Rules:      len(selected),
		Files:      len(files),
		Matches:    matches,
		Problems:   problems,
		Suppressed: suppressed,
		ExitCode:   code,
	}
}
