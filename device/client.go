package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/core"
)

// ErrMalformed marks a response body that could not be decoded or that
// violates the snapshot invariants.
var ErrMalformed = errors.New("malformed response")

// StatusError is a non-2xx answer from the device service.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// Client talks to the device-control service over its JSON HTTP contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewClient builds a client for baseURL. A zero timeout means requests are
// never cut short.
func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("device: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("device: unsupported scheme %q", u.Scheme)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        core.OrDiscard(log).WithField("component", "device"),
	}, nil
}

var _ core.DeviceAPI = (*Client)(nil)

type statusBody struct {
	On              *bool     `json:"on"`
	Brightness      *int      `json:"brightness"`
	Mode            *string   `json:"mode"`
	FaceCount       *int      `json:"face_count"`
	MaxFaces        *int      `json:"max_faces"`
	RegisteredFaces *[]string `json:"registered_faces"`
}

type resultBody struct {
	Success *bool   `json:"success"`
	Message *string `json:"message"`
}

func (c *Client) Status(ctx context.Context) (core.Snapshot, error) {
	var body statusBody
	if err := c.do(ctx, http.MethodGet, "/status", nil, &body); err != nil {
		return core.Snapshot{}, err
	}
	return body.snapshot()
}

func (c *Client) ToggleLight(ctx context.Context) (core.Result, error) {
	return c.write(ctx, http.MethodPost, "/toggle_light", nil)
}

func (c *Client) SetBrightness(ctx context.Context, brightness int) (core.Result, error) {
	return c.write(ctx, http.MethodPost, "/set_brightness", map[string]int{"brightness": brightness})
}

func (c *Client) SetMode(ctx context.Context, mode core.Mode) (core.Result, error) {
	return c.write(ctx, http.MethodPost, "/test_mode", map[string]string{"mode": string(mode)})
}

func (c *Client) RegisterFace(ctx context.Context, name string) (core.Result, error) {
	return c.write(ctx, http.MethodPost, "/register_face", map[string]string{"name": name})
}

func (c *Client) DeleteFace(ctx context.Context, name string) (core.Result, error) {
	return c.write(ctx, http.MethodDelete, "/delete_face/"+url.PathEscape(name), nil)
}

func (c *Client) write(ctx context.Context, method, path string, payload any) (core.Result, error) {
	var body resultBody
	if err := c.do(ctx, method, path, payload, &body); err != nil {
		return core.Result{}, err
	}
	if body.Success == nil || body.Message == nil {
		return core.Result{}, fmt.Errorf("%s %s: %w: missing success or message", method, path, ErrMalformed)
	}
	return core.Result{Success: *body.Success, Message: *body.Message}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		reqID := uuid.NewString()
		req.Header.Set("X-Request-ID", reqID)
		c.log.WithFields(logrus.Fields{"method": method, "path": path, "request_id": reqID}).Debug("sending command")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrMalformed, err)
	}
	return nil
}

func (b statusBody) snapshot() (core.Snapshot, error) {
	if b.On == nil || b.Brightness == nil || b.Mode == nil ||
		b.FaceCount == nil || b.MaxFaces == nil || b.RegisteredFaces == nil {
		return core.Snapshot{}, fmt.Errorf("status: %w: missing field", ErrMalformed)
	}

	s := core.Snapshot{
		On:              *b.On,
		Brightness:      *b.Brightness,
		Mode:            core.Mode(*b.Mode),
		FaceCount:       *b.FaceCount,
		MaxFaces:        *b.MaxFaces,
		RegisteredFaces: append([]string{}, (*b.RegisteredFaces)...),
	}
	if err := validateSnapshot(s); err != nil {
		return core.Snapshot{}, fmt.Errorf("status: %w: %v", ErrMalformed, err)
	}
	return s, nil
}

func validateSnapshot(s core.Snapshot) error {
	if s.Brightness < 0 || s.Brightness > 100 {
		return fmt.Errorf("brightness %d out of range", s.Brightness)
	}
	if s.MaxFaces < 0 {
		return fmt.Errorf("max_faces %d is negative", s.MaxFaces)
	}
	if s.FaceCount < 0 || s.FaceCount > s.MaxFaces {
		return fmt.Errorf("face_count %d outside 0..%d", s.FaceCount, s.MaxFaces)
	}
	if len(s.RegisteredFaces) != s.FaceCount {
		return fmt.Errorf("face_count %d but %d names", s.FaceCount, len(s.RegisteredFaces))
	}
	seen := make(map[string]struct{}, len(s.RegisteredFaces))
	for _, name := range s.RegisteredFaces {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate face %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
