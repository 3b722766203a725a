package usecase

import (
	"context"

	"casevault/internal/domain/entity"
)

// ImportAlertInput carries one alert from an external feed. Alerts arrive
// keyed by MCN and are matched to cases where possible; unmatched alerts
// are kept with an empty case id.
type ImportAlertInput struct {
	MCN         string `json:"mcn"`
	Type        string `json:"type" validate:"required"`
	Description string `json:"description"`
}

// ImportAlertsResult summarizes one alert import run.
type ImportAlertsResult struct {
	Imported  int `json:"imported"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// AlertUsecase defines the alert use cases.
type AlertUsecase interface {
	ListAlerts(ctx context.Context) ([]*entity.Alert, error)
	GetAlert(ctx context.Context, id string) (*entity.Alert, error)

	// ImportAlerts records a batch of external alerts in one atomic
	// mutation, matching each to a case by MCN when one exists.
	ImportAlerts(ctx context.Context, inputs []ImportAlertInput) (*ImportAlertsResult, error)

	// LinkAlert attaches an unmatched alert to a case.
	LinkAlert(ctx context.Context, id, caseID string) (*entity.Alert, error)

	// ResolveAlert closes an open alert with optional notes. Resolving an
	// already resolved alert succeeds without effect.
	ResolveAlert(ctx context.Context, id, notes string) (*entity.Alert, error)

	// ReopenAlert returns a resolved alert to the open state.
	ReopenAlert(ctx context.Context, id string) (*entity.Alert, error)

	// DeleteAlert removes the alert. Deleting an absent id succeeds.
	DeleteAlert(ctx context.Context, id string) error
}
