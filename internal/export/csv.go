// Package export writes question/answer pairs to a two-column CSV artifact.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

// Pair is one generated question with its generated answer.
type Pair struct {
	Question string
	Answer   string
}

// FilenameKey derives the artifact name from a timestamp, second
// granularity: scraped_data_YYYYMMDD-HHMMSS.csv. Minted once at pipeline
// start, so two runs in the same second would collide; in practice a run
// takes far longer than a second.
func FilenameKey(t time.Time) string {
	return fmt.Sprintf("scraped_data_%s.csv", t.Format("20060102-150405"))
}

// Write serializes pairs to path as CSV, one row per pair, in order.
// withHeader controls the "question,answer" label row; the file is written
// once and never appended to.
func Write(path string, pairs []Pair, withHeader bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if withHeader {
		if err := w.Write([]string{"question", "answer"}); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for _, p := range pairs {
		if err := w.Write([]string{p.Question, p.Answer}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush artifact: %w", err)
	}

	return f.Sync()
}
