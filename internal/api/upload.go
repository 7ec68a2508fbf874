package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// File is one document queued for upload.
type File struct {
	Name string
	Data []byte
}

// ProgressFunc receives the transmitted fraction of the request body
// as a 0-100 percentage. Advisory telemetry only; it carries no
// correctness guarantee and may be nil.
type ProgressFunc func(percent int)

// Upload sends the whole batch plus the session id as one multipart
// request and returns the server-confirmed list of processed
// filenames. A failed upload returns a *TransportError and confirms
// nothing; partial results are never reported. The call is bounded by
// the configured wall-clock timeout (120s by default).
func (c *Client) Upload(ctx context.Context, sessionID string, files []File, onProgress ProgressFunc) ([]string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write form file %s: %w", f.Name, err)
		}
	}
	if err := writer.WriteField("chat_id", sessionID); err != nil {
		return nil, fmt.Errorf("write chat_id field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	reader := &progressReader{
		reader:     bytes.NewReader(body.Bytes()),
		total:      int64(body.Len()),
		onProgress: onProgress,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/upload", reader)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = reader.total

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TransportError{
				Kind:    KindTimeout,
				Message: "Upload timed out. Please try uploading smaller files or check your internet connection.",
			}
		}
		return nil, &TransportError{
			Kind:    KindNetworkError,
			Message: fmt.Sprintf("Upload failed: %v", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, uploadError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{
			Kind:    KindNetworkError,
			Message: fmt.Sprintf("Upload failed: %v", err),
		}
	}
	var result struct {
		ProcessedFiles []string `json:"processed_files"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &TransportError{
			Kind:    KindServerError,
			Message: "Server returned an unreadable upload response.",
		}
	}
	if onProgress != nil {
		onProgress(100)
	}
	return result.ProcessedFiles, nil
}

func uploadError(resp *http.Response) *TransportError {
	detail := readDetail(resp.Body)
	switch {
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return &TransportError{
			Kind:    KindPayloadTooLarge,
			Message: "Files are too large. Please upload smaller files.",
		}
	case detail != "":
		return &TransportError{Kind: KindServerError, Message: detail}
	case resp.StatusCode >= 500:
		return &TransportError{
			Kind:    KindServerError,
			Message: "Server error occurred. Please try again or contact support.",
		}
	default:
		return &TransportError{
			Kind:    KindServerError,
			Message: fmt.Sprintf("Upload failed with status %d.", resp.StatusCode),
		}
	}
}

// progressReader reports the transmitted fraction of the request body.
type progressReader struct {
	reader     *bytes.Reader
	total      int64
	sent       int64
	lastPct    int
	onProgress ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 && r.onProgress != nil && r.total > 0 {
		r.sent += int64(n)
		pct := int(r.sent * 100 / r.total)
		if pct > 100 {
			pct = 100
		}
		if pct != r.lastPct {
			r.lastPct = pct
			r.onProgress(pct)
		}
	}
	return n, err
}
