package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/satriadi/qaforge/internal/answerer"
	"github.com/satriadi/qaforge/internal/cleaner"
	"github.com/satriadi/qaforge/internal/fetch"
	"github.com/satriadi/qaforge/internal/llm"
	"github.com/satriadi/qaforge/internal/pipeline"
	"github.com/satriadi/qaforge/internal/questiongen"
	"github.com/satriadi/qaforge/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run <url>",
	Short: "Scrape a URL and produce a question/answer CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		questions, _ := cmd.Flags().GetInt("questions")
		temperature, _ := cmd.Flags().GetFloat64("temperature")
		topP, _ := cmd.Flags().GetFloat64("top-p")
		profile, _ := cmd.Flags().GetString("profile")
		providerName, _ := cmd.Flags().GetString("provider")
		outDir, _ := cmd.Flags().GetString("out")
		noHeader, _ := cmd.Flags().GetBool("no-header")
		structured, _ := cmd.Flags().GetBool("structured")

		if temperature < 0 || temperature > 2 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0")
		}
		if topP < 0 || topP > 1 {
			return fmt.Errorf("top-p must be between 0.0 and 1.0")
		}
		prof := questiongen.Profile(profile)
		if prof != questiongen.ProfileGeneral && prof != questiongen.ProfileLegal {
			return fmt.Errorf("unknown profile %q (want general or legal)", profile)
		}

		// Credential checks happen before any stage starts.
		readerCfg := fetch.ConfigFromEnv()
		if err := readerCfg.Validate(); err != nil {
			return err
		}

		llmCfg := llm.ConfigFromEnv()
		if providerName != "" {
			llmCfg.Provider = providerName
		}
		if err := llmCfg.Validate(); err != nil {
			if discovered, ok := llm.DiscoverConfig(); ok && providerName == "" {
				llmCfg = discovered
			} else {
				return err
			}
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		defer st.Close()

		provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo())
		if err != nil {
			return err
		}

		cleanCfg := cleaner.DefaultConfig()
		cleanCfg.Temperature = temperature
		cleanCfg.TopP = topP

		genCfg := questiongen.DefaultConfig()
		genCfg.Profile = prof
		genCfg.Temperature = temperature
		genCfg.TopP = topP
		genCfg.Structured = structured

		ansCfg := answerer.DefaultConfig()
		ansCfg.Profile = prof
		ansCfg.Temperature = temperature
		ansCfg.TopP = topP

		p := pipeline.New(
			fetch.NewClient(readerCfg),
			cleaner.New(provider, cleanCfg),
			questiongen.New(provider, genCfg),
			answerer.New(provider, ansCfg),
			pipeline.WithRunRepo(st.RunRepo()),
			pipeline.WithReporter(consoleReporter{}),
			pipeline.WithProgress(printProgress),
		)

		result, err := p.Run(ctx, pipeline.Input{
			URL:       args[0],
			Questions: questions,
			OutDir:    outDir,
			Header:    !noHeader,
		})
		if err != nil {
			return err
		}

		fmt.Printf("\nDone in %s. %d pairs written to %s\n",
			result.Duration.Round(10*time.Millisecond), len(result.Pairs), result.Artifact)
		return nil
	},
}

func init() {
	runCmd.Flags().IntP("questions", "n", pipeline.DefaultQuestions,
		fmt.Sprintf("number of questions to generate (%d-%d)", pipeline.MinQuestions, pipeline.MaxQuestions))
	runCmd.Flags().Float64P("temperature", "t", 0.7, "model sampling temperature (0.0-2.0)")
	runCmd.Flags().Float64("top-p", 0.7, "nucleus sampling parameter (0.0-1.0), honored by completion-style providers")
	runCmd.Flags().String("profile", string(questiongen.ProfileGeneral), "prompt profile: general or legal")
	runCmd.Flags().String("provider", "", "model provider: openai, anthropic, gemini, openrouter, together")
	runCmd.Flags().StringP("out", "o", ".", "directory for the CSV artifact")
	runCmd.Flags().Bool("no-header", false, "omit the question,answer header row")
	runCmd.Flags().Bool("structured", false, "request schema-constrained JSON for question generation")
}

// consoleReporter prints stage messages inline as they happen.
type consoleReporter struct{}

func (consoleReporter) Info(msg string)  { fmt.Println(msg) }
func (consoleReporter) Warn(msg string)  { fmt.Fprintln(os.Stderr, "warning:", msg) }
func (consoleReporter) Error(msg string) { fmt.Fprintln(os.Stderr, "error:", msg) }

// printProgress writes one line per stage transition.
func printProgress(stage pipeline.Stage, current, total int) {
	if stage == pipeline.StageAnswering {
		fmt.Printf("answering question %d of %d...\n", current, total)
		return
	}
	fmt.Printf("%s...\n", stage)
}
