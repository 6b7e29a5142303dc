package models

import "time"

// CategoryStatus is the state of one category during an auto-fill run.
type CategoryStatus string

const (
	CategoryPending   CategoryStatus = "pending"
	CategoryScanning  CategoryStatus = "scanning"
	CategoryImporting CategoryStatus = "importing"
	CategoryDone      CategoryStatus = "done"
	CategoryError     CategoryStatus = "error"
)

// CategoryTarget is a source category with its stock target.
type CategoryTarget struct {
	Name          string         `json:"name" yaml:"name"`
	Slug          string         `json:"slug" yaml:"slug"`
	URL           string         `json:"url" yaml:"url"`
	Target        int            `json:"target" yaml:"target"`
	ExistingCount int            `json:"existing_count" yaml:"-"`
	NeededCount   int            `json:"needed_count" yaml:"-"`
	ImportedCount int            `json:"imported_count" yaml:"-"`
	SkippedCount  int            `json:"skipped_count" yaml:"-"`
	ErrorCount    int            `json:"error_count" yaml:"-"`
	Status        CategoryStatus `json:"status" yaml:"-"`
	Error         string         `json:"error,omitempty" yaml:"-"`
}

// AutoFillResult is the outcome of one auto-fill run.
type AutoFillResult struct {
	TotalNeeded   int              `json:"total_needed"`
	TotalImported int              `json:"total_imported"`
	TotalSkipped  int              `json:"total_skipped"`
	TotalErrors   int              `json:"total_errors"`
	Progress      int              `json:"progress"`
	Aborted       bool             `json:"aborted"`
	Categories    []CategoryTarget `json:"categories"`
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at,omitempty"`
}
