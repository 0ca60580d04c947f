package eval

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"
)

// passRateGate is the pass rate below which a run (or category) is failing.
const passRateGate = 0.8

// Report holds the scored results of one eval run.
type Report struct {
	Results   []CaseResult `json:"results"`
	StartedAt time.Time    `json:"started_at"`
}

// CategoryStats aggregates pass/fail counts for one category or source.
type CategoryStats struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// PassRate returns the fraction of passing cases, 0 for an empty bucket.
func (s CategoryStats) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total)
}

// Summary is the aggregate view of a report, also the unit the baseline
// store snapshots for regression diffing.
type Summary struct {
	Total        int                      `json:"total"`
	Passed       int                      `json:"passed"`
	Failed       int                      `json:"failed"`
	Errors       int                      `json:"errors"`
	PassRate     float64                  `json:"pass_rate"`
	AvgLatencyMS float64                  `json:"avg_latency_ms"`
	ByCategory   map[string]CategoryStats `json:"by_category"`
	BySource     map[string]CategoryStats `json:"by_source"`
}

func (r *Report) Total() int { return len(r.Results) }

func (r *Report) Passed() int {
	n := 0
	for _, result := range r.Results {
		if result.Passed {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int { return r.Total() - r.Passed() }

func (r *Report) Errors() int {
	n := 0
	for _, result := range r.Results {
		if result.Error != "" {
			n++
		}
	}
	return n
}

// Summary computes the aggregate view.
func (r *Report) Summary() Summary {
	s := Summary{
		Total:      r.Total(),
		Passed:     r.Passed(),
		Failed:     r.Failed(),
		Errors:     r.Errors(),
		ByCategory: make(map[string]CategoryStats),
		BySource:   make(map[string]CategoryStats),
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total)
	}

	var latencySum float64
	var latencyCount int
	for _, result := range r.Results {
		if result.Error == "" {
			latencySum += result.LatencyMS
			latencyCount++
		}
		bump(s.ByCategory, orUnknown(result.Category), result.Passed)
		bump(s.BySource, orUnknown(result.Source), result.Passed)
	}
	if latencyCount > 0 {
		s.AvgLatencyMS = math.Round(latencySum / float64(latencyCount))
	}
	return s
}

func bump(m map[string]CategoryStats, key string, passed bool) {
	stats := m[key]
	stats.Total++
	if passed {
		stats.Passed++
	} else {
		stats.Failed++
	}
	m[key] = stats
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// Print writes a human-readable report.
func (r *Report) Print(w io.Writer) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintf(w, "\n%s\nEVAL REPORT\n%s\n", rule, rule)

	s := r.Summary()
	fmt.Fprintf(w, "\nTotal: %d  |  Passed: %d  |  Failed: %d  |  Errors: %d\n",
		s.Total, s.Passed, s.Failed, s.Errors)
	fmt.Fprintf(w, "Pass Rate: %.1f%%  |  Avg Latency: %.0fms\n", s.PassRate*100, s.AvgLatencyMS)

	fmt.Fprintln(w, "\n--- By Category ---")
	for _, cat := range sortedKeys(s.ByCategory) {
		stats := s.ByCategory[cat]
		status := "PASS"
		if stats.PassRate() < passRateGate {
			status = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %s: %d/%d (%.0f%%)\n", status, cat, stats.Passed, stats.Total, stats.PassRate()*100)
	}

	var failures []CaseResult
	for _, result := range r.Results {
		if !result.Passed {
			failures = append(failures, result)
		}
	}
	if len(failures) > 0 {
		fmt.Fprintf(w, "\n--- Failed Cases (%d) ---\n", len(failures))
		for _, result := range failures {
			fmt.Fprintf(w, "\n  %s: %s\n", result.CaseID, result.Description)
			if result.Error != "" {
				fmt.Fprintf(w, "    ERROR: %s\n", result.Error)
			}
			for _, check := range result.Checks {
				if !check.Passed {
					fmt.Fprintf(w, "    FAIL [%s]: %s\n", check.Name, check.Reason)
				}
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", rule)
}

// SaveJSON writes the full report, with its summary, to path.
func (r *Report) SaveJSON(path string) error {
	payload := struct {
		Summary Summary      `json:"summary"`
		Results []CaseResult `json:"results"`
	}{Summary: r.Summary(), Results: r.Results}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func sortedKeys(m map[string]CategoryStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
