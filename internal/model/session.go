package model

type Session struct {
	SessionID    string `json:"session_id"`
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
	SessionType  string `json:"session_type"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time,omitempty"`
	Status       string `json:"status"`
	MessageCount int    `json:"message_count"`
	HasReport    bool   `json:"has_report"`
}

// ReportReady reports whether the session has reached a state where a
// report download is offered.
func (s *Session) ReportReady() bool {
	return s.HasReport || s.Status == SessionStatusAnalyzed || s.Status == SessionStatusCompleted
}

type CreateSessionRequest struct {
	SessionType SessionType `json:"session_type,omitempty"`
}

// SessionList decodes either a bare JSON array or an object wrapping the
// array under "sessions".
type SessionList []Session

func (l *SessionList) UnmarshalJSON(data []byte) error {
	sessions, err := unmarshalList[Session](data, "sessions")
	if err != nil {
		return err
	}
	*l = sessions
	return nil
}

type AnalyzeResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}
