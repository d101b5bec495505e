package models

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// TranscriptEntry is one finalized spoken utterance. Immutable once appended.
type TranscriptEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
