package domain

import "time"

type SortRequest struct {
	Root     string `json:"root"`
	Required string `json:"required"`
	Desired  string `json:"desired"`
	Profile  string `json:"profile,omitempty"`
}

type RunReport struct {
	RunID      string           `json:"run_id"`
	Root       string           `json:"root"`
	Required   []string         `json:"required"`
	Desired    []string         `json:"desired"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Counts     map[Category]int `json:"counts"`
	Outcomes   []Outcome        `json:"outcomes"`
	Failures   []Failure        `json:"failures"`
}

func NewRunReport(runID, root string, required, desired KeywordSet, startedAt time.Time) *RunReport {
	counts := make(map[Category]int, len(AllCategories()))
	for _, c := range AllCategories() {
		counts[c] = 0
	}
	return &RunReport{
		RunID:     runID,
		Root:      root,
		Required:  required.Values(),
		Desired:   desired.Values(),
		StartedAt: startedAt,
		Counts:    counts,
		Outcomes:  []Outcome{},
		Failures:  []Failure{},
	}
}

// Add records a finished outcome. Only documents that reached their folder
// are counted; failures are appended in order of occurrence.
func (r *RunReport) Add(outcome Outcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	if outcome.Moved {
		r.Counts[outcome.Category]++
	}
	r.Failures = append(r.Failures, outcome.Failures...)
}

func (r *RunReport) Total() int {
	return len(r.Outcomes)
}

// Completed reports whether the run walked the whole document list.
func (r *RunReport) Completed() bool {
	return !r.FinishedAt.IsZero()
}

func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// KeywordProfile is a named pair of keyword lists selectable by SortRequest.Profile.
type KeywordProfile struct {
	Required string `json:"required" yaml:"required"`
	Desired  string `json:"desired" yaml:"desired"`
}
