package model

type GenerateReportRequest struct {
	IncludeConversation bool `json:"include_conversation"`
}

type Report struct {
	ReportID               string   `json:"report_id"`
	SessionID              string   `json:"session_id"`
	UserID                 string   `json:"user_id"`
	UserName               string   `json:"user_name"`
	GeneratedAt            string   `json:"generated_at"`
	ConversationSummary    string   `json:"conversation_summary"`
	UnderlyingCause        string   `json:"underlying_cause"`
	TherapyTags            []string `json:"therapy_tags"`
	MessageCount           int      `json:"message_count"`
	SessionDurationMinutes float64  `json:"session_duration_minutes"`
	ReportURL              string   `json:"report_url"`
}

// Blob is an opaque binary payload. The client never parses it.
type Blob struct {
	Data        []byte
	ContentType string
}

func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}
