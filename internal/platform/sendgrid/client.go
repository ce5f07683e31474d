package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/projectdesk-backend/internal/platform/ctxutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/envutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/httpx"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

const mailSendPath = "/v3/mail/send"

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Timeout          time.Duration
	MaxRetries       int
}

func ConfigFromEnv(log *logger.Logger) Config {
	return Config{
		APIKey:           envutil.String("SENDGRID_API_KEY", "", log),
		BaseURL:          envutil.String("SENDGRID_BASE_URL", "https://api.sendgrid.com", log),
		DefaultFromEmail: envutil.String("SENDGRID_FROM_EMAIL", "", log),
		DefaultFromName:  envutil.String("SENDGRID_FROM_NAME", "ProjectDesk", log),
		Timeout:          envutil.Duration("SENDGRID_TIMEOUT", 30*time.Second, log),
		MaxRetries:       envutil.Int("SENDGRID_MAX_RETRIES", 3, log),
	}
}

type client struct {
	log        *logger.Logger
	cfg        Config
	retry      httpx.RetryPolicy
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing SENDGRID_API_KEY")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	retry := httpx.DefaultRetryPolicy
	retry.MaxRetries = max(cfg.MaxRetries, 0)
	return &client{
		log:        log.With("client", "SendGridClient"),
		cfg:        cfg,
		retry:      retry,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SendEmailRequest is one message to every To address. An empty From uses the
// configured sender.
type SendEmailRequest struct {
	From       EmailAddress
	To         []EmailAddress
	Subject    string
	Text       string
	HTML       string
	Categories []string
}

type SendEmailResult struct {
	StatusCode int
	MessageID  string
}

// mailSendRequest is the v3 mail/send body.
type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             EmailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Categories       []string          `json:"categories,omitempty"`
}

type personalization struct {
	To []EmailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *client) payload(req SendEmailRequest) (*mailSendRequest, error) {
	from := req.From
	if strings.TrimSpace(from.Email) == "" {
		from = EmailAddress{Email: c.cfg.DefaultFromEmail, Name: c.cfg.DefaultFromName}
	}
	body := &mailSendRequest{
		Personalizations: []personalization{{To: req.To}},
		From:             from,
		Subject:          strings.TrimSpace(req.Subject),
		Categories:       req.Categories,
	}
	for _, part := range []mailContent{{"text/plain", req.Text}, {"text/html", req.HTML}} {
		if v := strings.TrimSpace(part.Value); v != "" {
			body.Content = append(body.Content, mailContent{Type: part.Type, Value: v})
		}
	}

	switch {
	case strings.TrimSpace(from.Email) == "":
		return nil, errors.New("sendgrid: sender required (set SENDGRID_FROM_EMAIL)")
	case len(req.To) == 0:
		return nil, errors.New("sendgrid: at least one recipient required")
	case body.Subject == "":
		return nil, errors.New("sendgrid: subject required")
	case len(body.Content) == 0:
		return nil, errors.New("sendgrid: text or html content required")
	}
	return body, nil
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	body, err := c.payload(req)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	ctx = ctxutil.Default(ctx)
	resp, err := httpx.Do(ctx, c.retry,
		func(ctx context.Context) (*http.Response, error) { return c.post(ctx, raw) },
		func(n int, wait time.Duration, err error) {
			c.log.Warn("SendGrid request retrying", "attempt", n, "sleep", wait.String(), "error", err)
		},
	)
	if err != nil {
		return nil, err
	}
	return &SendEmailResult{
		StatusCode: resp.StatusCode,
		MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
	}, nil
}

// post sends one attempt. Non-2xx answers come back as *HTTPError alongside the
// response so Retry-After can be honored.
func (c *client) post(ctx context.Context, raw []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+mailSendPath, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp, err
	}
	if resp.StatusCode/100 != 2 {
		return resp, newHTTPError(resp.StatusCode, respBody)
	}
	return resp, nil
}

type HTTPError struct {
	StatusCode int
	Body       string
	Messages   []string
}

func newHTTPError(status int, body []byte) *HTTPError {
	he := &HTTPError{StatusCode: status, Body: string(body)}
	var parsed struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		for _, e := range parsed.Errors {
			if m := strings.TrimSpace(e.Message); m != "" {
				he.Messages = append(he.Messages, m)
			}
		}
	}
	return he
}

func (e *HTTPError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
	}
	msg := strings.TrimSpace(e.Body)
	switch {
	case msg == "":
		msg = "<empty body>"
	case len(msg) > 2000:
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }
