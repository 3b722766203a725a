package vault

import (
	"time"

	"casevault/internal/domain/service"
)

// EngineState is one node of the autosave state machine.
type EngineState string

const (
	StateUninitialized EngineState = "uninitialized"
	StateWaiting       EngineState = "waiting"
	StateConnecting    EngineState = "connecting"
	StateRunning       EngineState = "running"
	StateSaving        EngineState = "saving"
	StateRetrying      EngineState = "retrying"
	StateError         EngineState = "error"
	StateStopped       EngineState = "stopped"
)

// Status is the sole contract the status-badge UI depends on.
type Status struct {
	State               EngineState             `json:"status"`
	Message             string                  `json:"message"`
	Timestamp           time.Time               `json:"timestamp"`
	PermissionStatus    service.PermissionState `json:"permission_status"`
	LastSaveTime        *time.Time              `json:"last_save_time,omitempty"`
	ConsecutiveFailures int                     `json:"consecutive_failures"`
	PendingWrites       int                     `json:"pending_writes"`
}
