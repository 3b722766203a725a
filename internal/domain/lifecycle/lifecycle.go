// Package lifecycle holds process lifecycle constants shared by deliveries.
package lifecycle

import "time"

// DefaultTimeout bounds graceful shutdown of deliveries and the autosave
// engine's final flush.
const DefaultTimeout = 10 * time.Second
