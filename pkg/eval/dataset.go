package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Case is one eval case, loaded from a JSON or YAML dataset file.
type Case struct {
	ID               string   `json:"id" yaml:"id"`
	Category         string   `json:"category" yaml:"category"`
	Description      string   `json:"description" yaml:"description"`
	Input            string   `json:"input" yaml:"query"`
	ExpectedTools    []string `json:"expected_tools" yaml:"expected_tools"`
	Checks           []string `json:"checks" yaml:"checks"`
	MustContain      []string `json:"must_contain" yaml:"must_contain"`
	MustNotContain   []string `json:"must_not_contain" yaml:"must_not_contain"`
	ExpectedPatterns []string `json:"expected_patterns" yaml:"expected_patterns"`

	// Source is the dataset file the case came from, set by the loader.
	Source string `json:"-" yaml:"-"`
}

// LoadDataset reads every *.json and *.yaml file under dir and returns the
// merged, validated case list. JSON files hold arrays of cases; YAML files
// hold golden-set cases keyed by "query" instead of "input". Validation
// fails loud: datasets are developer-maintained fixtures, and a bad fixture
// should stop a run, not be skipped.
func LoadDataset(dir string) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var cases []Case
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", path, err)
		}

		var fileCases []Case
		if filepath.Ext(name) == ".json" {
			if err := json.Unmarshal(data, &fileCases); err != nil {
				return nil, fmt.Errorf("parse dataset %s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(data, &fileCases); err != nil {
				return nil, fmt.Errorf("parse dataset %s: %w", path, err)
			}
		}

		for i := range fileCases {
			fileCases[i].Source = name
		}
		cases = append(cases, fileCases...)
	}

	if err := ValidateCases(cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// ValidateCases checks the merged dataset for fixture errors: missing
// required fields, duplicate ids, and check names that don't resolve
// against the static check table.
func ValidateCases(cases []Case) error {
	var problems []string
	seen := make(map[string]string, len(cases))

	for _, c := range cases {
		if c.ID == "" {
			problems = append(problems, fmt.Sprintf("%s: case with empty id (input %q)", c.Source, head(c.Input, 40)))
			continue
		}
		if prev, dup := seen[c.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate case id %q (in %s and %s)", c.ID, prev, c.Source))
		}
		seen[c.ID] = c.Source

		if c.Input == "" && !hasCheck(c, CheckHandlesEmptyInput) {
			problems = append(problems, fmt.Sprintf("%s: empty input in case %q", c.Source, c.ID))
		}
		for _, name := range c.Checks {
			if !KnownCheck(name) {
				problems = append(problems, fmt.Sprintf("%s: unknown check %q in case %q", c.Source, name, c.ID))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("dataset validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

func hasCheck(c Case, name string) bool {
	for _, ch := range c.Checks {
		if ch == name {
			return true
		}
	}
	return false
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
