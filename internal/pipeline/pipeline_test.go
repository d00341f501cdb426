package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/satriadi/qaforge/internal/export"
	"github.com/satriadi/qaforge/internal/questiongen"
	"github.com/satriadi/qaforge/internal/store"
)

type stubFetcher struct {
	text  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.text, s.err
}

type stubCleaner struct {
	out   string
	err   error
	calls int
}

func (s *stubCleaner) Clean(_ context.Context, text string) (string, error) {
	s.calls++
	if s.err != nil {
		return text, s.err
	}
	if s.out != "" {
		return s.out, nil
	}
	return text, nil
}

type stubGenerator struct {
	questions []string
	err       error
	calls     int
}

func (s *stubGenerator) Generate(_ context.Context, _ string, n int) ([]string, error) {
	s.calls++
	if s.err != nil {
		return questiongen.Placeholders(n), s.err
	}
	return s.questions, nil
}

type stubAnswerer struct {
	err   error
	calls int
}

func (s *stubAnswerer) Answer(_ context.Context, question, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "no answer generated", s.err
	}
	return "answer to " + question, nil
}

type memRuns struct {
	saved []store.Run
}

func (m *memRuns) Save(_ context.Context, run *store.Run) error {
	m.saved = append(m.saved, *run)
	return nil
}

func (m *memRuns) List(_ context.Context, _ int) ([]store.Run, error) {
	return m.saved, nil
}

type recordingReporter struct {
	warnings []string
	errs     []string
}

func (r *recordingReporter) Info(string)      {}
func (r *recordingReporter) Warn(msg string)  { r.warnings = append(r.warnings, msg) }
func (r *recordingReporter) Error(msg string) { r.errs = append(r.errs, msg) }

func healthyPipeline(t *testing.T, opts ...Option) (*Pipeline, *stubFetcher, *stubGenerator, *stubAnswerer) {
	t.Helper()
	f := &stubFetcher{text: "page text"}
	g := &stubGenerator{questions: []string{"q1", "q2", "q3"}}
	a := &stubAnswerer{}
	return New(f, &stubCleaner{}, g, a, opts...), f, g, a
}

func TestRun_HealthyPass(t *testing.T) {
	runs := &memRuns{}
	p, _, _, a := healthyPipeline(t, WithRunRepo(runs))

	res, err := p.Run(context.Background(), Input{
		URL:       "https://example.com",
		Questions: 3,
		OutDir:    t.TempDir(),
		Header:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(res.Pairs))
	}
	if res.Pairs[0].Question != "q1" || res.Pairs[0].Answer != "answer to q1" {
		t.Fatalf("unexpected first pair: %+v", res.Pairs[0])
	}
	if a.calls != 3 {
		t.Fatalf("expected one answer call per question, got %d", a.calls)
	}

	data, readErr := os.ReadFile(res.Artifact)
	if readErr != nil {
		t.Fatalf("artifact not written: %v", readErr)
	}
	if !strings.HasPrefix(string(data), "question,answer\n") {
		t.Fatalf("expected header row, got %q", string(data))
	}

	if len(runs.saved) != 1 || runs.saved[0].Status != store.RunStatusCompleted {
		t.Fatalf("expected one completed run record, got %+v", runs.saved)
	}
	if runs.saved[0].Artifact != res.Artifact {
		t.Fatalf("recorded artifact %q, want %q", runs.saved[0].Artifact, res.Artifact)
	}
	if res.RunID == "" || runs.saved[0].ID != res.RunID {
		t.Fatalf("run ID mismatch: result %q, record %q", res.RunID, runs.saved[0].ID)
	}
}

func TestRun_ArtifactNameFormat(t *testing.T) {
	p, _, _, _ := healthyPipeline(t)

	res, err := p.Run(context.Background(), Input{
		URL:       "https://example.com",
		Questions: 3,
		OutDir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name := filepath.Base(res.Artifact)
	if !strings.HasPrefix(name, "scraped_data_") || !strings.HasSuffix(name, ".csv") {
		t.Fatalf("unexpected artifact name %q", name)
	}
	if got := export.FilenameKey(res.StartedAt); got != name {
		t.Fatalf("artifact name %q does not match start timestamp key %q", name, got)
	}
}

func TestRun_FetchErrorHalts(t *testing.T) {
	runs := &memRuns{}
	rep := &recordingReporter{}
	f := &stubFetcher{err: errors.New("status 500")}
	c := &stubCleaner{}
	g := &stubGenerator{questions: []string{"q1"}}
	a := &stubAnswerer{}
	p := New(f, c, g, a, WithRunRepo(runs), WithReporter(rep))

	outDir := t.TempDir()
	_, err := p.Run(context.Background(), Input{URL: "https://example.com", Questions: 5, OutDir: outDir})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "scraping the website failed") {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.calls != 0 || g.calls != 0 || a.calls != 0 {
		t.Fatalf("expected no downstream calls, got clean=%d gen=%d ans=%d", c.calls, g.calls, a.calls)
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("expected no artifact, found %d files", len(entries))
	}

	if len(runs.saved) != 1 || runs.saved[0].Status != store.RunStatusFailed {
		t.Fatalf("expected one failed run record, got %+v", runs.saved)
	}
	if runs.saved[0].Artifact != "" {
		t.Fatalf("failed run must not record an artifact, got %q", runs.saved[0].Artifact)
	}
}

func TestRun_BlankDocumentHalts(t *testing.T) {
	f := &stubFetcher{text: "   \n  "}
	g := &stubGenerator{questions: []string{"q1"}}
	p := New(f, &stubCleaner{}, g, &stubAnswerer{})

	_, err := p.Run(context.Background(), Input{URL: "https://example.com", Questions: 5, OutDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for blank extraction")
	}
	if g.calls != 0 {
		t.Fatal("expected no generation for blank document")
	}
}

func TestRun_CleanerFailureDegrades(t *testing.T) {
	rep := &recordingReporter{}
	f := &stubFetcher{text: "raw page text"}
	c := &stubCleaner{err: errors.New("model down")}
	g := &stubGenerator{questions: []string{"q1"}}
	p := New(f, c, g, &stubAnswerer{}, WithReporter(rep))

	res, err := p.Run(context.Background(), Input{URL: "https://example.com", Questions: 1, OutDir: t.TempDir()})
	if err != nil {
		t.Fatalf("cleaner failure must not halt the run: %v", err)
	}
	if len(res.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(res.Pairs))
	}
	if len(rep.warnings) != 1 || !strings.Contains(rep.warnings[0], "cleaning failed") {
		t.Fatalf("expected one cleaning warning, got %v", rep.warnings)
	}
}

func TestRun_GeneratorFailureUsesPlaceholders(t *testing.T) {
	rep := &recordingReporter{}
	f := &stubFetcher{text: "page text"}
	g := &stubGenerator{err: errors.New("provider unavailable")}
	p := New(f, &stubCleaner{}, g, &stubAnswerer{}, WithReporter(rep))

	res, err := p.Run(context.Background(), Input{URL: "https://example.com", Questions: 5, OutDir: t.TempDir()})
	if err != nil {
		t.Fatalf("generator failure must not halt the run: %v", err)
	}

	if len(res.Pairs) != 5 {
		t.Fatalf("expected 5 placeholder pairs, got %d", len(res.Pairs))
	}
	for i, pair := range res.Pairs {
		if want := fmt.Sprintf("default question %d", i+1); pair.Question != want {
			t.Fatalf("pair %d question = %q, want %q", i, pair.Question, want)
		}
	}
	if len(rep.warnings) != 1 || !strings.Contains(rep.warnings[0], "question generation failed") {
		t.Fatalf("expected one generation warning, got %v", rep.warnings)
	}
}

func TestRun_AnswererFailureUsesFallback(t *testing.T) {
	rep := &recordingReporter{}
	f := &stubFetcher{text: "page text"}
	g := &stubGenerator{questions: []string{"q1", "q2"}}
	a := &stubAnswerer{err: errors.New("rate limited")}
	p := New(f, &stubCleaner{}, g, a, WithReporter(rep))

	res, err := p.Run(context.Background(), Input{URL: "https://example.com", Questions: 2, OutDir: t.TempDir()})
	if err != nil {
		t.Fatalf("answerer failure must not halt the run: %v", err)
	}

	for _, pair := range res.Pairs {
		if pair.Answer != "no answer generated" {
			t.Fatalf("expected fallback answer, got %q", pair.Answer)
		}
	}
	if len(rep.warnings) != 2 {
		t.Fatalf("expected a warning per failed answer, got %v", rep.warnings)
	}
}

func TestRun_ProgressReportsAnswerOrdinals(t *testing.T) {
	var answering [][2]int
	progress := func(stage Stage, current, total int) {
		if stage == StageAnswering {
			answering = append(answering, [2]int{current, total})
		}
	}
	p, _, _, _ := healthyPipeline(t, WithProgress(progress))

	if _, err := p.Run(context.Background(), Input{URL: "https://example.com", Questions: 3, OutDir: t.TempDir()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][2]int{{1, 3}, {2, 3}, {3, 3}}
	if len(answering) != len(want) {
		t.Fatalf("expected %d progress calls, got %d", len(want), len(answering))
	}
	for i := range want {
		if answering[i] != want[i] {
			t.Fatalf("progress call %d = %v, want %v", i, answering[i], want[i])
		}
	}
}

func TestRun_ExportFailureHalts(t *testing.T) {
	runs := &memRuns{}
	p, _, _, _ := healthyPipeline(t, WithRunRepo(runs))

	_, err := p.Run(context.Background(), Input{
		URL:       "https://example.com",
		Questions: 3,
		OutDir:    filepath.Join(t.TempDir(), "does", "not", "exist"),
	})
	if err == nil {
		t.Fatal("expected error for unwritable artifact path")
	}
	if !strings.Contains(err.Error(), "writing artifact failed") {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs.saved) != 1 || runs.saved[0].Status != store.RunStatusFailed {
		t.Fatalf("expected a failed run record, got %+v", runs.saved)
	}
}

func TestRun_InputValidation(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{"empty URL", Input{URL: "  ", Questions: 5}},
		{"zero questions", Input{URL: "https://example.com", Questions: 0}},
		{"too many questions", Input{URL: "https://example.com", Questions: 21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFetcher{text: "page"}
			p := New(f, &stubCleaner{}, &stubGenerator{}, &stubAnswerer{})
			if _, err := p.Run(context.Background(), tt.input); err == nil {
				t.Fatal("expected validation error")
			}
			if f.calls != 0 {
				t.Fatal("expected no fetch for rejected input")
			}
		})
	}
}

// Two runs over the same inputs yield identical pair content; run identity
// is always distinct, and each artifact is named from its own start
// timestamp (second granularity, so names separate once the runs do not
// share a start second).
func TestRun_RepeatableContent(t *testing.T) {
	outDir := t.TempDir()
	in := Input{URL: "https://example.com", Questions: 2, OutDir: outDir, Header: true}

	p1, _, _, _ := healthyPipeline(t)
	res1, err := p1.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p2, _, _, _ := healthyPipeline(t)
	res2, err := p2.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res1.Pairs) != len(res2.Pairs) {
		t.Fatalf("pair counts differ: %d vs %d", len(res1.Pairs), len(res2.Pairs))
	}
	for i := range res1.Pairs {
		if res1.Pairs[i] != res2.Pairs[i] {
			t.Fatalf("pair %d differs: %+v vs %+v", i, res1.Pairs[i], res2.Pairs[i])
		}
	}
	if res1.RunID == res2.RunID {
		t.Fatal("expected distinct run IDs")
	}
	for _, res := range []*Result{res1, res2} {
		if got, want := filepath.Base(res.Artifact), export.FilenameKey(res.StartedAt); got != want {
			t.Fatalf("artifact %q not derived from its run's start time (want %q)", got, want)
		}
	}
}
