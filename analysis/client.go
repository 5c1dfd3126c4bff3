package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrEmptyNickname = errors.New("analysis service returned an empty nickname")

// Request is the body sent to the remote analysis endpoint
type Request struct {
	Titles []string `json:"titles"`
	Genres []string `json:"genres"`
}

type nicknameResponse struct {
	Nickname string `json:"nickname"`
}

// Requester turns a liked-items summary into a nickname label
type Requester interface {
	Nickname(ctx context.Context, req Request) (string, error)
}

// HTTPClient posts analysis requests to a single endpoint URL
type HTTPClient struct {
	URL  string
	HTTP *http.Client
}

func NewHTTPClient(url string) *HTTPClient {
	return &HTTPClient{
		URL:  url,
		HTTP: http.DefaultClient,
	}
}

var _ Requester = (*HTTPClient)(nil)

func (c *HTTPClient) Nickname(ctx context.Context, req Request) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analysis request failed: %s", resp.Status)
	}

	var out nicknameResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode analysis response: %w", err)
	}
	if out.Nickname == "" {
		return "", ErrEmptyNickname
	}
	return out.Nickname, nil
}
