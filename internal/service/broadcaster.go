package service

// Event types published after each change to a form session
const (
	EventStateChanged     = "state_changed"
	EventPromptOpened     = "prompt_opened"
	EventPromptClosed     = "prompt_closed"
	EventValidationFailed = "validation_failed"
	EventSubmitting       = "submitting"
	EventSubmitted        = "submitted"
	EventSubmitFailed     = "submit_failed"
	EventSessionEnded     = "session_ended"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}
