package events

import "time"

// Plugin lifecycle event types published by the manager.
const (
	// TypeActivePluginChanged is published when a new plugin becomes active.
	TypeActivePluginChanged = "active-plugin-changed"

	// TypePluginActivationFailed is published for each candidate that fails
	// to activate during a fallback walk.
	TypePluginActivationFailed = "plugin-activation-failed"

	// TypeFallbackChainExhausted is published when every candidate failed.
	TypeFallbackChainExhausted = "fallback-chain-exhausted"

	// TypePluginDataCleared is published after a bulk data wipe completes.
	TypePluginDataCleared = "plugin-data-cleared"
)

// Event is a single lifecycle notification.
type Event struct {
	// ID uniquely identifies the event instance.
	ID string `json:"id"`
	// Type is one of the Type* constants.
	Type string `json:"type"`
	// Plugin is the plugin the event concerns, if any.
	Plugin string `json:"plugin,omitempty"`
	// Reason carries a failure description for failure events.
	Reason string `json:"reason,omitempty"`
	// Time is when the event was published.
	Time time.Time `json:"time"`
}
