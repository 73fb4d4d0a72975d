package domain

import "strings"

// TurnRole identifies the speaker of a transcript turn.
type TurnRole string

const (
	TurnRoleAgent TurnRole = "agent"
	TurnRoleUser  TurnRole = "user"
)

// Turn is a single utterance within a voicemail conversation.
type Turn struct {
	Role    TurnRole `json:"role"`
	Message string   `json:"message"`
}

// Transcript is the normalized, immutable form of a voicemail. It keeps the
// original turn order and exposes a flat joined representation for prompts.
type Transcript struct {
	turns  []Turn
	joined string
}

// NewTranscript builds a transcript from ordered turns.
func NewTranscript(turns []Turn) Transcript {
	copied := make([]Turn, len(turns))
	copy(copied, turns)
	lines := make([]string, 0, len(copied))
	for _, turn := range copied {
		lines = append(lines, string(turn.Role)+": "+turn.Message)
	}
	return Transcript{turns: copied, joined: strings.Join(lines, "\n")}
}

// NewTranscriptFromText wraps a raw transcript string that carries no turn
// structure. The joined form is the string itself.
func NewTranscriptFromText(text string) Transcript {
	return Transcript{joined: text}
}

// Turns returns a copy of the turn sequence.
func (t Transcript) Turns() []Turn {
	copied := make([]Turn, len(t.turns))
	copy(copied, t.turns)
	return copied
}

// Joined returns the "role: message" newline-separated form.
func (t Transcript) Joined() string {
	return t.joined
}

// IsEmpty reports whether the transcript carries no content at all.
func (t Transcript) IsEmpty() bool {
	return len(t.turns) == 0 && strings.TrimSpace(t.joined) == ""
}
