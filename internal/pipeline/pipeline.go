// Package pipeline sequences the four stages (fetch, clean, generate
// questions, answer) and exports the result as a CSV artifact. Execution is
// a single forward pass: only a fetch failure halts the run; every later
// stage degrades to its fallback value and the run continues.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satriadi/qaforge/internal/export"
	"github.com/satriadi/qaforge/internal/store"
)

// Question count bounds for one run.
const (
	MinQuestions     = 1
	MaxQuestions     = 20
	DefaultQuestions = 5
)

// Fetcher retrieves extracted page text for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Cleaner restructures raw text. The returned text is always usable; the
// error only reports a degraded result.
type Cleaner interface {
	Clean(ctx context.Context, text string) (string, error)
}

// Generator produces up to n questions about a document. The returned list
// is always usable; the error only reports a degraded result.
type Generator interface {
	Generate(ctx context.Context, document string, n int) ([]string, error)
}

// Answerer answers one question against a document. The returned answer is
// always usable; the error only reports a degraded result.
type Answerer interface {
	Answer(ctx context.Context, question, document string) (string, error)
}

// Input is one pipeline invocation.
type Input struct {
	URL       string
	Questions int    // bounded [MinQuestions, MaxQuestions]
	OutDir    string // artifact directory; empty means current directory
	Header    bool   // include the CSV label row
}

// Result is the outcome of a completed run.
type Result struct {
	RunID     string
	Artifact  string
	Pairs     []export.Pair
	StartedAt time.Time
	Duration  time.Duration
}

// Pipeline owns the stage collaborators for one or more runs. It keeps no
// mutable state between runs; every invocation mints its own run ID,
// timestamp key, and document state.
type Pipeline struct {
	fetcher   Fetcher
	cleaner   Cleaner
	generator Generator
	answerer  Answerer
	runs      store.RunRepo
	reporter  Reporter
	progress  ProgressFunc
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithRunRepo records every run in the given repo.
func WithRunRepo(runs store.RunRepo) Option {
	return func(p *Pipeline) { p.runs = runs }
}

// WithReporter routes stage messages to the given reporter.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) { p.reporter = r }
}

// WithProgress reports stage transitions through fn.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// New creates a Pipeline from its four stage collaborators.
func New(f Fetcher, c Cleaner, g Generator, a Answerer, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:   f,
		cleaner:   c,
		generator: g,
		answerer:  a,
		reporter:  NopReporter{},
		progress:  func(Stage, int, int) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one forward pass. It returns an error only for a rejected
// input or a halting failure (fetch, export); degraded stages are reported
// through the Reporter and the run still produces an artifact.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	if err := validate(in); err != nil {
		p.reporter.Error(err.Error())
		return nil, err
	}

	started := time.Now()
	run := store.Run{
		ID:        uuid.NewString(),
		URL:       in.URL,
		Questions: in.Questions,
		StartedAt: started,
	}
	artifact := filepath.Join(in.OutDir, export.FilenameKey(started))

	p.progress(StageFetching, 0, 1)
	document, err := p.fetcher.Fetch(ctx, in.URL)
	if err != nil || strings.TrimSpace(document) == "" {
		if err == nil {
			err = fmt.Errorf("extraction service returned no text")
		}
		err = fmt.Errorf("scraping the website failed: %w", err)
		p.reporter.Error(err.Error())
		p.record(ctx, run, "", store.RunStatusFailed, err, started)
		return nil, err
	}

	p.progress(StageCleaning, 0, 1)
	document, err = p.cleaner.Clean(ctx, document)
	if err != nil {
		p.reporter.Warn(fmt.Sprintf("cleaning failed, keeping raw text: %v", err))
	}

	p.progress(StageGenerating, 0, 1)
	questions, err := p.generator.Generate(ctx, document, in.Questions)
	if err != nil {
		p.reporter.Warn(fmt.Sprintf("question generation failed, using defaults: %v", err))
	}

	// One model call per question, strictly in order. Later answers do not
	// depend on earlier ones, but sequential calls keep progress granular.
	pairs := make([]export.Pair, 0, len(questions))
	for i, q := range questions {
		p.progress(StageAnswering, i+1, len(questions))
		answer, err := p.answerer.Answer(ctx, q, document)
		if err != nil {
			p.reporter.Warn(fmt.Sprintf("answering question %d failed, using fallback: %v", i+1, err))
		}
		pairs = append(pairs, export.Pair{Question: q, Answer: answer})
	}

	p.progress(StageExporting, 0, 1)
	if err := export.Write(artifact, pairs, in.Header); err != nil {
		err = fmt.Errorf("writing artifact failed: %w", err)
		p.reporter.Error(err.Error())
		p.record(ctx, run, "", store.RunStatusFailed, err, started)
		return nil, err
	}

	p.record(ctx, run, artifact, store.RunStatusCompleted, nil, started)

	return &Result{
		RunID:     run.ID,
		Artifact:  artifact,
		Pairs:     pairs,
		StartedAt: started,
		Duration:  time.Since(started),
	}, nil
}

// validate rejects bad input before any stage starts.
func validate(in Input) error {
	if strings.TrimSpace(in.URL) == "" {
		return fmt.Errorf("a website URL is required")
	}
	if in.Questions < MinQuestions || in.Questions > MaxQuestions {
		return fmt.Errorf("question count must be between %d and %d", MinQuestions, MaxQuestions)
	}
	return nil
}

// record saves the run outcome; a storage failure is reported, not fatal.
func (p *Pipeline) record(ctx context.Context, run store.Run, artifact, status string, runErr error, started time.Time) {
	if p.runs == nil {
		return
	}
	run.Artifact = artifact
	run.Status = status
	run.DurationMs = time.Since(started).Milliseconds()
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := p.runs.Save(ctx, &run); err != nil {
		p.reporter.Warn(fmt.Sprintf("recording run history failed: %v", err))
	}
}
