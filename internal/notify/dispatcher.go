// internal/notify/dispatcher.go

// Package notify emits candidate-facing status-change notifications. Delivery
// is at-most-effort: a failed dispatch is logged by the caller and never
// aborts the state transition that triggered it.
package notify

import (
	"context"

	"talent-pipeline/internal/models"
)

// StatusChange is the payload of one outbound notification.
type StatusChange struct {
	CandidateID   string               `json:"candidateId"`
	ApplicationID string               `json:"applicationId"`
	OldStatus     models.OverallStatus `json:"oldStatus"`
	NewStatus     models.OverallStatus `json:"newStatus"`
	Message       string               `json:"message"`
}

// Dispatcher sends one outbound notification per status change.
type Dispatcher interface {
	NotifyStatusChange(ctx context.Context, change StatusChange) error
}

// ContactDirectory resolves a candidate's contact details. Identity is an
// external collaborator; the pipeline never derives roles or contacts from
// string contents.
type ContactDirectory interface {
	Contact(ctx context.Context, candidateID string) (models.Candidate, error)
}
