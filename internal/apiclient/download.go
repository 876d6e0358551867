package apiclient

import (
	"context"
	"io"
	"net/http"

	apperrors "github.com/therapyassist/dashboard-go/internal/errors"
	"github.com/therapyassist/dashboard-go/internal/model"
)

const (
	ContentTypePDF = "application/pdf"

	EmptyReportMessage = "Empty response received"
)

// DownloadReport fetches the report PDF as raw bytes. It is the only
// operation that reads a binary body, and it runs under the download
// timeout instead of the default one.
func (c *Client) DownloadReport(ctx context.Context, sessionID string) (*model.Blob, error) {
	resp, cancel, err := c.send(ctx, request{
		method:  http.MethodGet,
		path:    ReportDownloadPath(sessionID),
		accept:  ContentTypePDF,
		timeout: c.downloadTimeout,
	})
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.FromTransport(err)
	}
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeExternal, EmptyReportMessage)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = ContentTypePDF
	}
	return &model.Blob{Data: data, ContentType: contentType}, nil
}
