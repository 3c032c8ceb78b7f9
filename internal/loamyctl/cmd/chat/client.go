package chat

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kiosk404/loamy/pkg/utils/json"
)

// chatRequest is the body of POST /v1/chat.
type chatRequest struct {
	History []json.RawMessage `json:"history"`
	Message string            `json:"message"`
}

// Reply is the result of one chat call. History is opaque to the client and
// is sent back unchanged on the next call.
type Reply struct {
	Reply        string            `json:"reply"`
	ArtifactLink string            `json:"artifact_link,omitempty"`
	History      []json.RawMessage `json:"history"`
	Steps        int               `json:"steps"`
}

// ToolSignature is one entry of GET /v1/tools.
type ToolSignature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  []struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Required bool   `json:"required"`
	} `json:"parameters"`
}

// Event is a progress event read from POST /v1/chat/stream.
type Event struct {
	Name string
	Data string
}

// ToolName returns the tool named by a tool_call or tool_result event.
func (e Event) ToolName() string {
	var ev struct {
		Turn struct {
			ToolName string `json:"tool_name"`
		} `json:"turn"`
	}
	if err := json.UnmarshalString(e.Data, &ev); err != nil {
		return ""
	}
	return ev.Turn.ToolName
}

type errResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// APIError is a coded error returned by the server.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d (code %d): %s", e.Status, e.Code, e.Message)
}

// Client talks to the loamy HTTP API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
	}
}

// Chat sends one message with the history so far and waits for the reply.
func (c *Client) Chat(ctx context.Context, history []json.RawMessage, message string) (*Reply, error) {
	resp, err := c.post(ctx, "/v1/chat", chatRequest{History: history, Message: message})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out Reply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// ChatStream is like Chat but reports progress events to cb as they arrive.
// A failure event is returned as an *APIError.
func (c *Client) ChatStream(ctx context.Context, history []json.RawMessage, message string, cb func(Event)) (*Reply, error) {
	resp, err := c.post(ctx, "/v1/chat/stream", chatRequest{History: history, Message: message})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var (
		reply   *Reply
		failure *APIError
	)
	err = readEvents(resp.Body, func(ev Event) error {
		switch ev.Name {
		case "failure":
			var e errResponse
			if err := json.UnmarshalString(ev.Data, &e); err != nil {
				return fmt.Errorf("decode failure event: %w", err)
			}
			failure = &APIError{Status: http.StatusOK, Code: e.Code, Message: e.Message}
		case "done":
			reply = &Reply{}
			if err := json.UnmarshalString(ev.Data, reply); err != nil {
				return fmt.Errorf("decode done event: %w", err)
			}
		}
		if cb != nil {
			cb(ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if failure != nil {
		return reply, failure
	}
	if reply == nil {
		return nil, fmt.Errorf("stream ended without a done event")
	}
	return reply, nil
}

// Tools lists the tools the assistant can call.
func (c *Client) Tools(ctx context.Context) ([]ToolSignature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/tools", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Tools []ToolSignature `json:"tools"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Tools, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// do sends req and turns a non-200 answer into an *APIError.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	var e errResponse
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		apiErr.Code = e.Code
		apiErr.Message = e.Message
	}
	return nil, apiErr
}

// readEvents parses a server-sent event stream, calling fn once per event.
func readEvents(r io.Reader, fn func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		ev   Event
		data []string
	)
	flush := func() error {
		if ev.Name == "" && len(data) == 0 {
			return nil
		}
		ev.Data = strings.Join(data, "\n")
		err := fn(ev)
		ev, data = Event{}, nil
		return err
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, "event:"):
			ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return flush()
}
