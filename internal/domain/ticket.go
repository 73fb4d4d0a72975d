package domain

import "time"

// VoicemailRecord is the persisted trace of a processed voicemail, linking the
// external event to the committed issue key.
type VoicemailRecord struct {
	ID         string
	CompanyID  string
	EventID    string
	IssueKey   string
	Summary    string
	Priority   Priority
	Transcript string
	CreatedAt  time.Time
}
