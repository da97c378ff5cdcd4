package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// UpstreamError is a non-2xx answer from a proxied service.
type UpstreamError struct {
	Op         string
	Status     int
	StatusText string
	Body       []byte
	Message    string
}

func (e *UpstreamError) Error() string { return e.Message }

// Details returns the decoded upstream body, or the raw text if it is not JSON.
func (e *UpstreamError) Details() any {
	var v any
	if err := json.Unmarshal(e.Body, &v); err == nil {
		return v
	}
	if len(e.Body) > 0 {
		return string(e.Body)
	}
	return e.Message
}

func newUpstreamError(op string, resp *http.Response, body []byte) *UpstreamError {
	e := &UpstreamError{
		Op:         op,
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Body:       body,
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			if s, ok := payload[key].(string); ok && s != "" {
				e.Message = s
				return e
			}
		}
	}
	e.Message = fmt.Sprintf("%s: %s", op, e.StatusText)
	return e
}

// Upstream is a small JSON client bound to one base URL and a fixed set of headers.
type Upstream struct {
	BaseURL string
	Header  http.Header
	Client  *http.Client
}

// NewUpstream builds an Upstream with a 30 second timeout.
func NewUpstream(baseURL string, header http.Header) *Upstream {
	if header == nil {
		header = http.Header{}
	}
	return &Upstream{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Header:  header,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Do sends body as JSON (when non-nil) and decodes a 2xx response into out (when non-nil).
// op names the operation in error messages, e.g. "Failed to create doctor".
func (u *Upstream) Do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for k, vs := range u.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	return u.send(req, op, out)
}

// DoRequest sends a prepared request with the client's headers added.
func (u *Upstream) DoRequest(req *http.Request, op string, out any) error {
	for k, vs := range u.Header {
		if req.Header.Get(k) == "" {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}
	return u.send(req, op, out)
}

func (u *Upstream) send(req *http.Request, op string, out any) error {
	resp, err := u.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newUpstreamError(op, resp, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
