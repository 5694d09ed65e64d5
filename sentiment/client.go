// Package sentiment scores free text against a remote text-analytics
// service. Scoring is strictly best effort: any failure - network
// error, non-2xx status, malformed or scoreless response - degrades to
// "no score" instead of propagating, so one bad remote call can never
// abort a pipeline run.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/mo"
)

// Scorer produces a sentiment score in [-1,1] for a piece of text, or
// None when no score could be obtained.
type Scorer interface {
	Score(ctx context.Context, text string) mo.Option[float64]
}

const keyHeader = "Ocp-Apim-Subscription-Key"

// Option is a functional option for Client.
type Option func(c *Client)

// OptKey sets the subscription key sent with every request.
func OptKey(key string) Option {
	return func(c *Client) {
		c.key = key
	}
}

// OptTimeout bounds each individual scoring call.
func OptTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// OptRetries sets how many times a failed call is retried before
// giving up. 0 means a single attempt.
func OptRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// OptLanguage sets the document language sent to the service.
func OptLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// OptHTTPClient substitutes the underlying HTTP client.
func OptHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client calls a sentiment endpoint one document at a time.
type Client struct {
	endpoint string
	key      string
	language string
	timeout  time.Duration
	retries  int
	http     *http.Client
}

// NewClient returns a Client posting to endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		language: "en",
		timeout:  10 * time.Second,
		retries:  2,
		http:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type document struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

type scoreRequest struct {
	Documents []document `json:"documents"`
}

type scoreResponse struct {
	Documents []struct {
		ID    string   `json:"id"`
		Score *float64 `json:"score"`
	} `json:"documents"`
}

// Score implements Scorer. Each attempt is bounded by the configured
// timeout; after the retry budget is exhausted the failure is absorbed
// and None is returned.
func (c *Client) Score(ctx context.Context, text string) mo.Option[float64] {
	var err error
	for try := 0; try <= c.retries; try++ {
		var score float64
		score, err = c.score(ctx, text)
		if err == nil {
			return mo.Some(score)
		}
		if ctx.Err() != nil {
			break
		}
	}
	log.Printf("sentiment: scoring failed, using no score: %v", err)
	return mo.None[float64]()
}

func (c *Client) score(ctx context.Context, text string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := scoreRequest{
		Documents: []document{{ID: "1", Language: c.language, Text: text}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, errors.Wrap(err, "marshaling request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set(keyHeader, c.key)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "posting document")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, errors.Errorf("unexpected status %s", resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "reading response")
	}
	var sr scoreResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return 0, errors.Wrap(err, "unmarshaling response")
	}
	if len(sr.Documents) == 0 || sr.Documents[0].Score == nil {
		return 0, errors.New("response has no documents[0].score")
	}
	return *sr.Documents[0].Score, nil
}
