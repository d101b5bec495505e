package session

import "strings"

// benignSignals are transport-teardown messages the remote call layers emit
// during normal call end. They must never be reported as application errors.
var benignSignals = []string{
	"meeting ended",
	"ejection",
	"disconnect",
	"signaling connection",
	"meeting state",
	"room was deleted",
	"exiting meeting",
	"daily-call-join-error",
	"daily-error",
	"start-method-error",
}

func isBenignSignal(msg string) bool {
	lower := strings.ToLower(msg)
	for _, s := range benignSignals {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// filterProviderError routes provider error events to the right log level.
// Observability only: error events never drive a state transition.
func (c *Controller) filterProviderError(msg string) {
	switch {
	case isBenignSignal(msg):
		c.log.WithField("message", msg).Debug("benign provider signal")
	case msg != "" && msg != "[object Object]":
		c.log.WithField("message", msg).Error("provider error")
	default:
		c.log.WithField("message", msg).Debug("provider event")
	}
}
