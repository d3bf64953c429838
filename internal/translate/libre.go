package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/pljobs/internal/model"
)

// Ensure LibreClient implements model.Translator.
var _ model.Translator = (*LibreClient)(nil)

// LibreClient calls a LibreTranslate-compatible /translate endpoint.
type LibreClient struct {
	baseURL    string
	apiKey     string
	source     string
	target     string
	httpClient *http.Client
}

// NewLibreClient returns a client translating Polish to English.
func NewLibreClient(baseURL, apiKey string, httpClient *http.Client) *LibreClient {
	return &LibreClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		source:     "pl",
		target:     "en",
		httpClient: httpClient,
	}
}

// Host identifies the backend for rate limiting.
func (c *LibreClient) Host() string {
	return c.baseURL
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate sends one text. Non-2xx responses become *model.HTTPError.
func (c *LibreClient) Translate(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: c.source,
		Target: c.target,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshal translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post translate: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var parsed libreResponse
		_ = json.Unmarshal(data, &parsed)
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("translate: %s", strings.TrimSpace(parsed.Error)),
		}
	}

	var parsed libreResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	return parsed.TranslatedText, nil
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
