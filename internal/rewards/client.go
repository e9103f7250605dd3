package rewards

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mind-engage/growthreport/internal/logger"
)

const (
	DefaultBaseURL = "https://api.dahandin.com/openapi/v1"
	totalEndpoint  = "/get/student/total"

	msgMissingInput = "API Key와 학생 코드가 누락되었습니다."
	msgUnknown      = "알 수 없는 API 응답 오류"
	msgNetwork      = "네트워크 오류 또는 서버 접속 실패"
)

// Client reads student totals from the rewards platform's open API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption { return func(c *Client) { c.http = h } }
func WithLogger(l *logger.Logger) ClientOption   { return func(c *Client) { c.log = l } }
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type envelope struct {
	Result  bool            `json:"result"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) Fetch(ctx context.Context, studentCode, apiKey string) Result {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(studentCode) == "" {
		return Failed(msgMissingInput)
	}
	endpoint := c.baseURL + totalEndpoint + "?code=" + url.QueryEscape(studentCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Failed(msgNetwork)
	}
	req.Header.Set("X-API-Key", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("rewards fetch failed", "code", studentCode, "error", err)
		return Failed(msgNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Failed(fmt.Sprintf("API 호출 실패 (상태 코드: %d)", resp.StatusCode))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.log.Warn("rewards response decode failed", "code", studentCode, "error", err)
		return Failed(msgNetwork)
	}
	if !env.Result {
		if env.Message != "" {
			return Failed(env.Message)
		}
		return Failed(msgUnknown)
	}
	var snap Snapshot
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			return Failed(msgUnknown)
		}
	}
	return OK(snap)
}
