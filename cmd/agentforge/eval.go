package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/agentforge/agentforge/internal/config"
	"github.com/agentforge/agentforge/pkg/eval"
)

// passRateGate mirrors the report's per-category gate: a run below it exits
// non-zero so CI fails.
const passRateGate = 0.8

func handleEval(args []string) error {
	var (
		baseURL      string
		token        string
		category     string
		concurrency  int
		output       string
		baseline     string
		saveBaseline string
	)
	cfg, logger, _, err := loadConfig("eval", args, func(fs *flag.FlagSet) {
		fs.StringVar(&baseURL, "base-url", "http://localhost:8080", "agent API base URL")
		fs.StringVar(&token, "token", "", "Ghostfolio auth token")
		fs.StringVar(&category, "category", "", "only run cases in this category")
		fs.IntVar(&concurrency, "concurrency", 0, "max concurrent requests (overrides config)")
		fs.StringVar(&output, "output", "", "write JSON report to file")
		fs.StringVar(&baseline, "baseline", "", "compare against this saved baseline")
		fs.StringVar(&saveBaseline, "save-baseline", "", "save this run's summary under the given name")
	})
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("-token is required (Ghostfolio auth token)")
	}

	cases, err := eval.LoadDataset(cfg.Eval.DatasetDir)
	if err != nil {
		return err
	}
	if category != "" {
		var filtered []eval.Case
		for _, c := range cases {
			if c.Category == category {
				filtered = append(filtered, c)
			}
		}
		cases = filtered
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases to run")
	}

	opts := []eval.Option{}
	if concurrency == 0 {
		concurrency = cfg.Eval.Concurrency
	}
	opts = append(opts, eval.WithConcurrency(concurrency))
	if cfg.OpenAI.APIKey != "" {
		judge := eval.NewJudge(openai.NewClient(cfg.OpenAI.APIKey), cfg.OpenAI.Model)
		opts = append(opts, eval.WithJudge(judge))
	}

	runner := eval.NewRunner(baseURL, token, logger, opts...)
	report, err := runner.Run(context.Background(), cases)
	if err != nil {
		return err
	}

	report.Print(os.Stdout)
	summary := report.Summary()

	if output != "" {
		if err := report.SaveJSON(output); err != nil {
			return err
		}
		fmt.Printf("\nJSON report written to %s\n", output)
	}

	if baseline != "" || saveBaseline != "" {
		store, err := eval.NewBaselineStore(cfg.Eval.BaselineDir)
		if err != nil {
			return err
		}
		if baseline != "" {
			if err := compareBaseline(cfg, store, baseline, summary); err != nil {
				return err
			}
		}
		if saveBaseline != "" {
			if err := store.Save(saveBaseline, summary); err != nil {
				return err
			}
			fmt.Printf("Baseline saved as %q\n", saveBaseline)
		}
	}

	if summary.PassRate < passRateGate {
		return fmt.Errorf("pass rate %.1f%% below %.0f%% gate", summary.PassRate*100, passRateGate*100)
	}
	return nil
}

// compareBaseline diffs the run against a saved baseline, printing the
// changes and filing a regression issue when publishing is configured.
func compareBaseline(cfg config.Config, store *eval.BaselineStore, name string, summary eval.Summary) error {
	before, err := store.Load(name)
	if err != nil {
		return err
	}
	changes := eval.DiffSummaries(before, summary)
	if len(changes) == 0 {
		fmt.Printf("\nNo category changes vs baseline %q\n", name)
		return nil
	}

	fmt.Printf("\n--- Vs Baseline %q ---\n", name)
	for _, c := range changes {
		fmt.Printf("  [%s] %s: %.0f%% -> %.0f%%\n", c.Type, c.Category, c.Before*100, c.After*100)
	}

	regressed := eval.Regressions(changes)
	if len(regressed) == 0 || cfg.Eval.Report.Repo == "" || cfg.Eval.Report.GitHubToken == "" {
		return nil
	}

	publisher, err := eval.NewPublisher(cfg.Eval.Report.GitHubToken, cfg.Eval.Report.Repo)
	if err != nil {
		return err
	}
	url, err := publisher.PublishRegression(context.Background(), name, summary, changes)
	if err != nil {
		return err
	}
	fmt.Printf("Regression issue filed: %s\n", url)
	return nil
}
