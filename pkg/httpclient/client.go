package httpclient

import (
	"io"
	"net/http"
	"time"
)

// Webhook calls are fire-and-forget; a hung trigger endpoint must not pin
// goroutines for long
const webhookTimeout = 10 * time.Second

// Client defines an interface for making HTTP requests, allowing the
// lifecycle trigger path to be mocked in tests
type Client interface {
	Post(url, contentType string, body io.Reader) (*http.Response, error)
	Get(url string) (*http.Response, error)
	Do(req *http.Request) (*http.Response, error)
}

// StandardHTTPClient wraps the standard http.Client
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardClient creates an HTTP client tuned for webhook delivery
func NewStandardClient() Client {
	return &StandardHTTPClient{
		client: &http.Client{Timeout: webhookTimeout},
	}
}

// Post makes a POST request
func (c *StandardHTTPClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	return c.client.Post(url, contentType, body)
}

// Get makes a GET request
func (c *StandardHTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Do executes an HTTP request
func (c *StandardHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}
