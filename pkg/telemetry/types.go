package telemetry

import "time"

// Run is one recorded template execution.
type Run struct {
	ID                  string
	StartedAt           time.Time
	TemplateID          string
	TemplateName        string
	TargetDir           string
	Success             bool
	Stage               string
	FailedStep          int
	Error               string
	Duration            time.Duration
	StepsTotal          int
	StepsCompleted      int
	PostInstallFailures int
}

// Stats summarizes runs over a time window.
type Stats struct {
	TotalRuns      int
	SuccessfulRuns int
	SuccessRate    float64
	AvgDuration    time.Duration
	Templates      []TemplateStat
	CommonFailures []FailureStat
}

type TemplateStat struct {
	TemplateID string
	Runs       int
	Failures   int
}

// FailureStat counts aborted runs by the stage they stopped in.
type FailureStat struct {
	Stage string
	Count int
}
