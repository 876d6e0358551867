package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/therapyassist/dashboard-go/internal/audit"
	apperrors "github.com/therapyassist/dashboard-go/internal/errors"
	"github.com/therapyassist/dashboard-go/internal/model"
	"github.com/therapyassist/dashboard-go/internal/notify"
	"github.com/therapyassist/dashboard-go/internal/state"
)

const (
	NoActiveSessionMessage = "No active session"
	EmptySessionMessage    = "Cannot generate report for empty session"

	generateFailedMessage  = "Failed to generate report"
	downloadFailedMessage  = "Failed to download report"
	downloadTimeoutMessage = "Download timeout. Please try again."
)

var generateMessages = apperrors.StatusMessages{
	http.StatusBadRequest: "Session must be analyzed before generating report",
	http.StatusNotFound:   "Session not found",
}

type ReportAPI interface {
	AnalyzeSession(ctx context.Context, sessionID string) (*model.AnalyzeResponse, error)
	GenerateReport(ctx context.Context, sessionID string) (*model.Report, error)
	DownloadReport(ctx context.Context, sessionID string) (*model.Blob, error)
}

// FileSaver writes downloaded bytes under filename and returns the path.
type FileSaver interface {
	Save(blob *model.Blob, filename string) (string, error)
}

type ReportService struct {
	reporter
	api   ReportAPI
	chat  *state.ChatStore
	auth  *state.AuthStore
	saver FileSaver
}

func NewReportService(
	api ReportAPI,
	chat *state.ChatStore,
	auth *state.AuthStore,
	saver FileSaver,
	notifier notify.Notifier,
) *ReportService {
	return &ReportService{
		reporter: reporter{notifier: notifier},
		api:      api,
		chat:     chat,
		auth:     auth,
		saver:    saver,
	}
}

func UserReportFilename(sessionID string) string {
	return fmt.Sprintf("therapy_report_%s.pdf", sessionID)
}

func AdminReportFilename(userName, sessionID string) string {
	return fmt.Sprintf("report_%s_%s.pdf", userName, sessionID)
}

// GeneratedReport is a generated report and where its PDF was saved.
// Path is empty when the download after generation failed.
type GeneratedReport struct {
	Report *model.Report
	Path   string
}

// Generate analyzes the current session, generates its report and
// downloads the PDF. Without a current session or with an empty
// transcript it fails before any backend call. Analyze and generate are
// separate calls: when generate fails the analysis stays done and the
// user retries by hand.
func (s *ReportService) Generate(ctx context.Context) (*GeneratedReport, error) {
	current := s.chat.CurrentSession()
	if current == nil {
		return nil, s.reject(ctx, "generate_report", apperrors.Precondition(NoActiveSessionMessage))
	}
	if s.chat.Len() == 0 {
		return nil, s.reject(ctx, "generate_report", apperrors.Precondition(EmptySessionMessage))
	}

	if _, err := s.api.AnalyzeSession(ctx, current.SessionID); err != nil {
		return nil, s.fail(ctx, "generate_report", err, generateFailedMessage, generateMessages)
	}
	report, err := s.api.GenerateReport(ctx, current.SessionID)
	if err != nil {
		return nil, s.fail(ctx, "generate_report", err, generateFailedMessage, generateMessages)
	}
	s.ok("Report generated successfully!")

	result := &GeneratedReport{Report: report}
	path, err := s.save(ctx, current.SessionID, UserReportFilename(current.SessionID), userDownloadMessage)
	if err != nil {
		return result, err
	}
	result.Path = path
	return result, nil
}

// DownloadCurrent saves the report of the current session.
func (s *ReportService) DownloadCurrent(ctx context.Context) (string, error) {
	current := s.chat.CurrentSession()
	if current == nil {
		return "", s.reject(ctx, "download_report", apperrors.Precondition(NoActiveSessionMessage))
	}
	return s.save(ctx, current.SessionID, UserReportFilename(current.SessionID), userDownloadMessage)
}

// Download saves any session's report. Admins use this from the sessions
// list.
func (s *ReportService) Download(ctx context.Context, sessionID, userName string) (string, error) {
	return s.save(ctx, sessionID, AdminReportFilename(userName, sessionID), adminDownloadMessage)
}

func (s *ReportService) save(ctx context.Context, sessionID, filename string, message func(error) string) (string, error) {
	blob, err := s.api.DownloadReport(ctx, sessionID)
	if err != nil {
		return "", s.failWith(ctx, "download_report", err, message(err))
	}

	path, err := s.saver.Save(blob, filename)
	if err != nil {
		return "", s.failWith(ctx, "download_report", err, downloadFailedMessage)
	}

	event := audit.Event{
		Type:      audit.EventReportDownload,
		SessionID: sessionID,
		Details:   map[string]interface{}{"bytes": blob.Size()},
	}
	if snap := s.auth.Snapshot(); snap.User != nil {
		event.UserID = snap.User.UserID
		event.Role = string(snap.Role)
	}
	audit.Log(ctx, event)

	s.ok("Report downloaded successfully!")
	return path, nil
}

// userDownloadMessage ranks the status messages above the backend text.
func userDownloadMessage(err error) string {
	switch apperrors.StatusOf(err) {
	case http.StatusNotFound:
		return "Report not found. Please generate a report first."
	case http.StatusForbidden:
		return "You do not have permission to download this report."
	}

	appErr, ok := apperrors.AsAppError(err)
	switch {
	case !ok:
		return downloadFailedMessage
	case appErr.Code == apperrors.ErrCodeTimeout && appErr.Status == 0:
		return downloadTimeoutMessage
	case appErr.Status == 0 || appErr.HasBackendMessage():
		return appErr.Message
	}
	return downloadFailedMessage
}

func adminDownloadMessage(err error) string {
	return apperrors.UserMessage(err, downloadFailedMessage, nil)
}
