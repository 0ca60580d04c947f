package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// BaselineStore persists eval summaries as named snapshots so runs can be
// compared over time and regressions caught.
type BaselineStore struct {
	dir string
}

// BaselineInfo is metadata about a saved baseline.
type BaselineInfo struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// Change records a per-category pass-rate difference between two baselines.
type Change struct {
	Category string  `json:"category"`
	Before   float64 `json:"before"`
	After    float64 `json:"after"`
	Type     string  `json:"type"` // "improved", "regressed", "added", "removed"
}

// NewBaselineStore creates a store rooted at dir.
func NewBaselineStore(dir string) (*BaselineStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create baseline dir: %w", err)
	}
	return &BaselineStore{dir: dir}, nil
}

// Save writes a summary snapshot under name.
func (s *BaselineStore) Save(name string, summary Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}
	path := filepath.Join(s.dir, name+".json")
	return os.WriteFile(path, data, 0644)
}

// Load reads the summary snapshot saved under name.
func (s *BaselineStore) Load(name string) (Summary, error) {
	path := filepath.Join(s.dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read baseline %q: %w", name, err)
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return Summary{}, fmt.Errorf("parse baseline %q: %w", name, err)
	}
	return summary, nil
}

// List returns saved baselines, oldest first.
func (s *BaselineStore) List() ([]BaselineInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list baselines: %w", err)
	}

	var infos []BaselineInfo
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, BaselineInfo{
			Name:      e.Name()[:len(e.Name())-5],
			Timestamp: info.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.Before(infos[j].Timestamp)
	})
	return infos, nil
}

// Diff compares two saved baselines category by category.
func (s *BaselineStore) Diff(before, after string) ([]Change, error) {
	a, err := s.Load(before)
	if err != nil {
		return nil, err
	}
	b, err := s.Load(after)
	if err != nil {
		return nil, err
	}
	return DiffSummaries(a, b), nil
}

// DiffSummaries compares two summaries category by category. Categories with
// identical pass rates are omitted.
func DiffSummaries(before, after Summary) []Change {
	var changes []Change

	categories := make(map[string]bool)
	for cat := range before.ByCategory {
		categories[cat] = true
	}
	for cat := range after.ByCategory {
		categories[cat] = true
	}

	for cat := range categories {
		b, inBefore := before.ByCategory[cat]
		a, inAfter := after.ByCategory[cat]
		switch {
		case !inBefore:
			changes = append(changes, Change{Category: cat, After: a.PassRate(), Type: "added"})
		case !inAfter:
			changes = append(changes, Change{Category: cat, Before: b.PassRate(), Type: "removed"})
		case a.PassRate() > b.PassRate():
			changes = append(changes, Change{Category: cat, Before: b.PassRate(), After: a.PassRate(), Type: "improved"})
		case a.PassRate() < b.PassRate():
			changes = append(changes, Change{Category: cat, Before: b.PassRate(), After: a.PassRate(), Type: "regressed"})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Category < changes[j].Category })
	return changes
}

// Regressions filters a diff down to the categories that got worse.
func Regressions(changes []Change) []Change {
	var out []Change
	for _, c := range changes {
		if c.Type == "regressed" || c.Type == "removed" {
			out = append(out, c)
		}
	}
	return out
}
