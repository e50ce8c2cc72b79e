package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/samvad-chat/internal/logger"
	"github.com/samvad-hq/samvad-chat/pkg/httpclient"
)

// FallbackAnswer is printed when a successful response carries no answer.
const FallbackAnswer = "No answer"

// Request is the body POSTed to the chat endpoint.
type Request struct {
	Query string `json:"query"`
}

// response is the expected success body. Answer stays raw so non-string values can still be shown.
type response struct {
	Answer json.RawMessage `json:"answer"`
}

// Client sends queries to a single chat endpoint.
type Client struct {
	http     httpclient.Client
	endpoint string
	log      logger.Logger
}

// NewClient returns a Client that POSTs to endpoint.
func NewClient(hc httpclient.Client, endpoint string, log logger.Logger) *Client {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Client{http: hc, endpoint: endpoint, log: log}
}

// Endpoint returns the full URL queries are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// Ask performs one request/response cycle. It never returns an error; failures are Result variants.
func (c *Client) Ask(ctx context.Context, query string) Result {
	resp, err := c.http.PostJSON(ctx, c.endpoint, Request{Query: query}, nil)
	if err != nil {
		c.log.DebugObj("chat request failed", "chat_transport_error", map[string]any{
			"endpoint": c.endpoint,
			"error":    err.Error(),
		})
		return transportFailure(err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		c.logErrorPage(resp)
		return statusFailure(resp.StatusCode(), string(body))
	}

	answer, err := DecodeAnswer(body)
	if err != nil {
		c.log.WarnObj("chat response undecodable", "chat_decode_error", map[string]any{
			"endpoint": c.endpoint,
			"error":    err.Error(),
		})
		return transportFailure(err)
	}
	return answered(answer)
}

// DecodeAnswer extracts the answer from a success body. The body must be a JSON object;
// a missing or null answer yields FallbackAnswer and non-string answers are returned as JSON text.
func DecodeAnswer(body []byte) (string, error) {
	var payload *response
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("invalid response body: %w", err)
	}
	if payload == nil {
		return "", errors.New("invalid response body: not a JSON object")
	}

	raw := bytes.TrimSpace(payload.Answer)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return FallbackAnswer, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	return string(raw), nil
}

// logErrorPage records the title of HTML error pages, such as tunnel offline pages.
func (c *Client) logErrorPage(resp httpclient.Response) {
	meta := map[string]any{
		"endpoint":    c.endpoint,
		"status_code": resp.StatusCode(),
	}
	if strings.Contains(strings.ToLower(resp.Header("Content-Type")), "text/html") {
		if title := htmlTitle(resp.Body()); title != "" {
			meta["page_title"] = title
		}
	}
	c.log.WarnObj("chat endpoint returned error status", "chat_status_error", meta)
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
