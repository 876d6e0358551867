package mockapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/therapyassist/dashboard-go/internal/httputil"
	"github.com/therapyassist/dashboard-go/internal/model"
)

// POST /sessions/create
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionType == "" {
		req.SessionType = model.SessionTypeWeb
	}
	if req.SessionType != model.SessionTypeWeb && req.SessionType != model.SessionTypeVR {
		httputil.WriteValidation(w, "session_type", "session_type must be web or vr")
		return
	}

	p := principalFrom(r.Context())
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &sessionRecord{
		Session: model.Session{
			SessionID:   uuid.NewString(),
			UserID:      p.ID,
			UserName:    p.Name,
			SessionType: string(req.SessionType),
			StartTime:   now.Format(time.RFC3339),
			Status:      model.SessionStatusActive,
		},
		startedAt: now,
	}
	s.sessions[rec.SessionID] = rec
	if user := s.users[p.ID]; user != nil {
		user.TotalSessions++
	}
	s.recordLocked(p.ID, p.Name, "session_created", "Started a "+rec.SessionType+" session", map[string]any{"session_id": rec.SessionID})

	httputil.WriteJSON(w, http.StatusCreated, rec.Session)
}

// GET /sessions/my-sessions answers with a wrapped list.
func (s *Server) MySessions(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())

	s.mu.RLock()
	sessions := s.sessionsLocked(func(rec *sessionRecord) bool { return rec.UserID == p.ID })
	s.mu.RUnlock()

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// ownSessionLocked resolves {sessionID} for the calling user. Sessions of
// other users are reported as missing.
func (s *Server) ownSessionLocked(w http.ResponseWriter, r *http.Request, sessionID string) *sessionRecord {
	rec := s.sessions[sessionID]
	if rec == nil || rec.UserID != principalFrom(r.Context()).ID {
		httputil.WriteDetail(w, http.StatusNotFound, "Session not found")
		return nil
	}
	return rec
}

// POST /sessions/{sessionID}/analyze
func (s *Server) AnalyzeSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ownSessionLocked(w, r, pathParam(r, "sessionID"))
	if rec == nil {
		return
	}
	if len(rec.messages) == 0 {
		httputil.WriteDetail(w, http.StatusBadRequest, "Cannot analyze an empty session")
		return
	}

	if rec.Status == model.SessionStatusActive {
		rec.Status = model.SessionStatusAnalyzed
	}
	if rec.EndTime == "" {
		rec.EndTime = s.now().Format(time.RFC3339)
	}

	httputil.WriteJSON(w, http.StatusOK, model.AnalyzeResponse{
		SessionID: rec.SessionID,
		Status:    rec.Status,
		Message:   "Session analyzed successfully",
	})
}

// POST /sessions/{sessionID}/report
func (s *Server) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID := pathParam(r, "sessionID")
	rec := s.ownSessionLocked(w, r, sessionID)
	if rec == nil {
		return
	}
	if rec.Status == model.SessionStatusActive {
		httputil.WriteDetail(w, http.StatusBadRequest, "Session must be analyzed before generating report")
		return
	}

	now := s.now()
	report := &model.Report{
		ReportID:               uuid.NewString(),
		SessionID:              rec.SessionID,
		UserID:                 rec.UserID,
		UserName:               rec.UserName,
		GeneratedAt:            now.Format(time.RFC3339),
		ConversationSummary:    summarize(rec.messages),
		UnderlyingCause:        "Not determined",
		TherapyTags:            collectTags(rec.messages),
		MessageCount:           len(rec.messages),
		SessionDurationMinutes: now.Sub(rec.startedAt).Minutes(),
		ReportURL:              APIPrefix + "/reports/" + rec.SessionID + "/download",
	}
	s.reports[rec.SessionID] = report
	rec.Status = model.SessionStatusCompleted
	rec.HasReport = true
	s.recordLocked(rec.UserID, rec.UserName, "report_generated", "Generated a session report", map[string]any{"session_id": rec.SessionID})

	httputil.WriteJSON(w, http.StatusOK, report)
}

// GET /reports/{sessionID}/download
func (s *Server) DownloadReport(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	sessionID := pathParam(r, "sessionID")

	s.mu.Lock()
	report := s.reports[sessionID]
	if report == nil {
		s.mu.Unlock()
		httputil.WriteDetail(w, http.StatusNotFound, "Report not found")
		return
	}
	if p.Role == model.RoleUser && report.UserID != p.ID {
		s.mu.Unlock()
		httputil.WriteDetail(w, http.StatusForbidden, "You do not have permission to download this report")
		return
	}
	s.downloads++
	if user := s.users[report.UserID]; user != nil {
		user.TotalDownloads++
	}
	s.recordLocked(p.ID, p.Name, "report_downloaded", "Downloaded a session report", map[string]any{"session_id": sessionID})
	pdf := renderPDF(report)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="therapy_report_%s.pdf"`, sessionID))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// POST /chat/message
func (s *Server) ChatMessage(w http.ResponseWriter, r *http.Request) {
	var req model.ChatMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httputil.WriteValidation(w, "message", "field required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ownSessionLocked(w, r, req.SessionID)
	if rec == nil {
		return
	}

	reply := replyTo(req.Message)
	timestamp := s.now().Format(time.RFC3339)
	rec.messages = append(rec.messages,
		model.Message{Role: model.MessageRoleUser, Content: req.Message, Timestamp: timestamp},
		model.Message{Role: model.MessageRoleAssistant, Content: reply, Timestamp: timestamp},
	)

	httputil.WriteJSON(w, http.StatusOK, model.ChatMessageResponse{
		SessionID:         rec.SessionID,
		UserMessage:       req.Message,
		BotResponse:       reply,
		Timestamp:         timestamp,
		ConversationCount: len(rec.messages) / 2,
	})
}

// POST /chat/audio takes multipart fields audio and session_id.
func (s *Server) ChatAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		httputil.WriteDetail(w, http.StatusUnprocessableEntity, "Invalid multipart body")
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		httputil.WriteValidation(w, "session_id", "field required")
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		httputil.WriteValidation(w, "audio", "field required")
		return
	}
	defer file.Close()

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		httputil.WriteDetail(w, http.StatusBadRequest, "Could not read audio")
		return
	}
	if size == 0 {
		httputil.WriteDetail(w, http.StatusBadRequest, "Audio file is empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ownSessionLocked(w, r, sessionID)
	if rec == nil {
		return
	}

	transcription := fmt.Sprintf("Audio message %s (%d bytes)", header.Filename, size)
	reply := replyTo(transcription)
	timestamp := s.now().Format(time.RFC3339)
	rec.messages = append(rec.messages,
		model.Message{Role: model.MessageRoleUser, Content: transcription, Timestamp: timestamp, Tags: []string{"audio"}},
		model.Message{Role: model.MessageRoleAssistant, Content: reply, Timestamp: timestamp},
	)

	httputil.WriteJSON(w, http.StatusOK, model.AudioMessageResponse{
		SessionID:     rec.SessionID,
		Transcription: transcription,
		BotResponse:   reply,
		Timestamp:     timestamp,
	})
}

func replyTo(message string) string {
	words := strings.Fields(message)
	if len(words) > 6 {
		words = words[:6]
	}
	return fmt.Sprintf("Thank you for sharing. Can you tell me more about %q?", strings.Join(words, " "))
}

func summarize(messages []model.Message) string {
	userTurns := 0
	for _, m := range messages {
		if m.Role == model.MessageRoleUser {
			userTurns++
		}
	}
	return fmt.Sprintf("Conversation of %d messages with %d user turns.", len(messages), userTurns)
}

func collectTags(messages []model.Message) []string {
	seen := map[string]bool{}
	tags := []string{}
	for _, m := range messages {
		for _, tag := range m.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// renderPDF produces a minimal single-page PDF naming the report.
func renderPDF(report *model.Report) []byte {
	text := fmt.Sprintf("Therapy report %s for session %s", report.ReportID, report.SessionID)
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	b.WriteString("1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj\n")
	b.WriteString("2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj\n")
	b.WriteString("3 0 obj << /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >> endobj\n")
	fmt.Fprintf(&b, "4 0 obj << /Length %d >> stream\n%s\nendstream endobj\n", len(stream), stream)
	b.WriteString("5 0 obj << /Type /Font /Subtype /Type1 /BaseFont /Helvetica >> endobj\n")
	b.WriteString("trailer << /Root 1 0 R >>\n%%EOF\n")
	return []byte(b.String())
}
