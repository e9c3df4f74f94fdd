// internal/models/application.go
package models

import (
	"fmt"
)

// Stage identifies one of the four fixed pipeline steps.
type Stage int

const (
	StageApplicationReview Stage = 1
	StageWrittenTest       Stage = 2
	StageVideoTest         Stage = 3
	StageInterview         Stage = 4
)

const (
	MinStage = StageApplicationReview
	MaxStage = StageInterview
)

// StageStatus values mirror the enum strings in the managed backend schema.
type StageStatus string

const (
	StageNotStarted StageStatus = "NOT_STARTED"
	StagePending    StageStatus = "PENDING"
	StageScheduled  StageStatus = "SCHEDULED"
	StageInProgress StageStatus = "IN_PROGRESS"
	StageCompleted  StageStatus = "COMPLETED"
	StageFailed     StageStatus = "FAILED"
)

// OverallStatus is the whole-lifecycle status of an application.
type OverallStatus string

const (
	StatusActive    OverallStatus = "ACTIVE"
	StatusHired     OverallStatus = "HIRED"
	StatusRejected  OverallStatus = "REJECTED"
	StatusWithdrawn OverallStatus = "WITHDRAWN"
)

// Terminal reports whether no further stage transitions are permitted.
func (s OverallStatus) Terminal() bool {
	return s == StatusHired || s == StatusRejected || s == StatusWithdrawn
}

// ParseStageStatus converts a raw string to a StageStatus, rejecting unknown values.
func ParseStageStatus(s string) (StageStatus, error) {
	st := StageStatus(s)
	switch st {
	case StageNotStarted, StagePending, StageScheduled, StageInProgress, StageCompleted, StageFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown stage status %q", s)
}

// ParseOverallStatus converts a raw string to an OverallStatus, rejecting unknown values.
func ParseOverallStatus(s string) (OverallStatus, error) {
	st := OverallStatus(s)
	switch st {
	case StatusActive, StatusHired, StatusRejected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown overall status %q", s)
}

// Name returns the human-readable name of a stage.
func (s Stage) Name() string {
	switch s {
	case StageApplicationReview:
		return "Application Review"
	case StageWrittenTest:
		return "Written Test"
	case StageVideoTest:
		return "Video Test"
	case StageInterview:
		return "Interview"
	}
	return fmt.Sprintf("Stage %d", int(s))
}

// Application is the central entity of the hiring pipeline. Field names and enum
// values round-trip exactly against the managed backend schema.
type Application struct {
	ID            string        `json:"id"`
	CandidateID   string        `json:"candidateId"`
	JobID         string        `json:"jobId"`
	AppliedAt     string        `json:"appliedAt"` // ISO 8601
	CurrentStage  Stage         `json:"currentStage"`
	OverallStatus OverallStatus `json:"overallStatus"`

	ApplicationStatus StageStatus `json:"applicationStatus"`
	WrittenTestStatus StageStatus `json:"writtenTestStatus"`
	VideoTestStatus   StageStatus `json:"videoTestStatus"`
	InterviewStatus   StageStatus `json:"interviewStatus"`

	Feedback      string `json:"feedback,omitempty"`
	InternalNotes string `json:"internalNotes,omitempty"`

	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// StageStatusOf returns the status field for the given stage.
func (a Application) StageStatusOf(stage Stage) StageStatus {
	switch stage {
	case StageApplicationReview:
		return a.ApplicationStatus
	case StageWrittenTest:
		return a.WrittenTestStatus
	case StageVideoTest:
		return a.VideoTestStatus
	case StageInterview:
		return a.InterviewStatus
	}
	return ""
}

// SetStageStatus sets the status field for the given stage.
func (a *Application) SetStageStatus(stage Stage, status StageStatus) {
	switch stage {
	case StageApplicationReview:
		a.ApplicationStatus = status
	case StageWrittenTest:
		a.WrittenTestStatus = status
	case StageVideoTest:
		a.VideoTestStatus = status
	case StageInterview:
		a.InterviewStatus = status
	}
}

// ActiveStatus returns the stage status corresponding to CurrentStage. This is
// the value consulted to gate review and approve actions.
func (a Application) ActiveStatus() StageStatus {
	return a.StageStatusOf(a.CurrentStage)
}

// Validate rejects structurally invalid applications at construction time.
// Out-of-range stages are never silently clamped.
func (a Application) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("application id is empty")
	}
	if a.CandidateID == "" {
		return fmt.Errorf("candidateId is empty")
	}
	if a.JobID == "" {
		return fmt.Errorf("jobId is empty")
	}
	if a.CurrentStage < MinStage || a.CurrentStage > MaxStage {
		return fmt.Errorf("currentStage %d out of range [1,4]", a.CurrentStage)
	}
	if _, err := ParseOverallStatus(string(a.OverallStatus)); err != nil {
		return err
	}
	for stage := MinStage; stage <= MaxStage; stage++ {
		if _, err := ParseStageStatus(string(a.StageStatusOf(stage))); err != nil {
			return fmt.Errorf("stage %d: %w", stage, err)
		}
	}
	return nil
}
