// Package ipinfo resolves the caller's public IP via api.ipify.org. Used
// only by the first-ten-logins badge gate, which fails closed when the
// lookup does.
package ipinfo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultEndpoint = "https://api.ipify.org"

// Client queries the public-IP service with a bounded timeout.
type Client struct {
	http *resty.Client
}

func New(timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(defaultEndpoint).
			SetTimeout(timeout),
	}
}

// SetBaseURL points the client at a different host. Tests use it.
func (c *Client) SetBaseURL(url string) {
	c.http.SetBaseURL(url)
}

// PublicIP returns the caller's public IP address.
func (c *Client) PublicIP(ctx context.Context) (string, error) {
	var payload struct {
		IP string `json:"ip"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("format", "json").
		SetResult(&payload).
		Get("/")
	if err != nil {
		return "", fmt.Errorf("public ip lookup failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("public ip lookup returned status %d", resp.StatusCode())
	}
	if payload.IP == "" {
		return "", fmt.Errorf("public ip lookup returned empty address")
	}
	return payload.IP, nil
}
