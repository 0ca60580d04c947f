package main

import (
	"fmt"
	"sort"

	"github.com/agentforge/agentforge/pkg/eval"
)

// handleValidate dry-runs the dataset loader so fixture errors surface in CI
// without hitting a live agent.
func handleValidate(args []string) error {
	cfg, _, _, err := loadConfig("validate", args, nil)
	if err != nil {
		return err
	}

	cases, err := eval.LoadDataset(cfg.Eval.DatasetDir)
	if err != nil {
		return err
	}

	categories := make(map[string]int)
	for _, c := range cases {
		cat := c.Category
		if cat == "" {
			cat = "unknown"
		}
		categories[cat]++
	}

	fmt.Printf("Loaded %d test cases\n\nCategories:\n", len(cases))
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %d\n", name, categories[name])
	}
	fmt.Printf("\nAll %d cases valid.\n", len(cases))
	return nil
}
