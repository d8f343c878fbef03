package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/serpblock"
)

// DefaultClientTimeout is the default timeout for message requests.
const DefaultClientTimeout = 10 * time.Second

var _ serpblock.MessageHandler = (*Client)(nil)

// Client sends blocklist messages to a Server.
type Client struct {
	URL    string
	client *http.Client
	stream *http.Client
}

// NewClient creates a new Client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		URL:    strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{Timeout: DefaultClientTimeout},
		stream: &http.Client{},
	}
}

// HandleMessage posts req to the server and decodes its answer.
func (c *Client) HandleMessage(ctx context.Context, req *serpblock.Request) (*serpblock.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+MessagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, serpblock.Errorf(serpblock.EUNAVAILABLE, "blocklist server unreachable: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, parseResponseError(resp)
	}

	var out serpblock.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// parseResponseError converts an error response into an application error.
func parseResponseError(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var e errorResponse
	if err := json.Unmarshal(data, &e); err != nil || e.Error == "" {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return serpblock.Errorf(FromErrorStatusCode(resp.StatusCode), "%s", msg)
	}
	return serpblock.Errorf(FromErrorStatusCode(resp.StatusCode), "%s", e.Error)
}
