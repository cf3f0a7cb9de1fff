package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/toejough/imprun/internal/core"
)

// Document is the JSON form of a run report.
type Document struct {
	Meta     Meta      `json:"meta"`
	Outcomes []Outcome `json:"outcomes"`
}

// Meta summarises a run.
type Meta struct {
	ID              string    `json:"id"`
	Started         time.Time `json:"started"`
	Duration        string    `json:"duration"`
	DurationSeconds float64   `json:"duration_seconds"`
	Total           int       `json:"total"`
	Passed          int       `json:"passed"`
	Failed          int       `json:"failed"`
}

// Outcome is the JSON form of one case's result.
type Outcome struct {
	Name            string           `json:"name"`
	Status          core.Status      `json:"status"`
	Kind            core.FailureKind `json:"kind,omitempty"`
	Failure         string           `json:"failure,omitempty"`
	Actual          string           `json:"actual,omitempty"`
	Expected        string           `json:"expected,omitempty"`
	Diff            string           `json:"diff,omitempty"`
	DurationSeconds float64          `json:"duration_seconds"`
}

// Store keeps the most recent report in a JSON file.
type Store struct {
	path string
}

// NewDocument converts a report to its JSON form.
func NewDocument(report *core.Report) *Document {
	doc := &Document{
		Meta: Meta{
			ID:              report.ID,
			Started:         report.Started,
			Duration:        report.Duration.String(),
			DurationSeconds: report.Duration.Seconds(),
			Total:           len(report.Outcomes),
			Passed:          report.Passed(),
			Failed:          report.Failed(),
		},
		Outcomes: make([]Outcome, 0, len(report.Outcomes)),
	}

	for _, outcome := range report.Outcomes {
		doc.Outcomes = append(doc.Outcomes, newOutcome(outcome))
	}

	return doc
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, report *core.Report) error {
	data, err := json.MarshalIndent(NewDocument(report), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// Load reads the last saved report.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}

	return &doc, nil
}

// Path returns the file the store writes to.
func (s *Store) Path() string {
	return s.path
}

// Save writes report to the store's file, creating its directory if needed.
func (s *Store) Save(report *core.Report) error {
	data, err := json.MarshalIndent(NewDocument(report), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	if err := os.WriteFile(s.path, data, filePerm); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

func newOutcome(outcome core.Outcome) Outcome {
	out := Outcome{
		Name:            outcome.Name,
		Status:          outcome.Status,
		Kind:            outcome.Kind,
		DurationSeconds: outcome.Duration.Seconds(),
	}

	if outcome.Failure == nil {
		return out
	}

	out.Failure = outcome.Failure.Error()

	var failure *core.AssertionFailure
	if errors.As(outcome.Failure, &failure) {
		if failure.Actual != nil {
			out.Actual = core.Describe(failure.Actual)
		}

		if failure.Expected != nil {
			out.Expected = core.Describe(failure.Expected)
		}

		out.Diff = failure.Diff
	}

	return out
}
