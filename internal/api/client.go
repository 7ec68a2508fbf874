// Package api is the HTTP client for the remote document-analysis
// service. It implements the two workflows the session store drives:
// document upload and query submission. The service is stateless per
// request; all session scoping travels as the chat_id field.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"claimdesk/internal/config"
)

type Client struct {
	baseURL       string
	uploadTimeout time.Duration
	httpClient    *http.Client
}

func NewClient(cfg config.ServiceConfig) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		uploadTimeout: time.Duration(cfg.UploadTimeoutMS) * time.Millisecond,
		httpClient:    &http.Client{},
	}
}

// errorDetail is the optional structured body of a non-2xx response.
type errorDetail struct {
	Detail string `json:"detail"`
}

// readDetail extracts the server's detail string from an error body,
// or "" when the body has none.
func readDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil {
		return ""
	}
	var det errorDetail
	if err := json.Unmarshal(data, &det); err != nil {
		return ""
	}
	return strings.TrimSpace(det.Detail)
}
