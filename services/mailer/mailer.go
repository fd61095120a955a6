package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"campusride/config"
	"campusride/utils"

	"go.uber.org/zap"
)

// Mailer dispatches transactional email. Failures are reported to the caller
// but callers treat mail as best-effort; a lost receipt never rolls back a
// payment.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// HTTPMailer posts messages to a third-party transactional email API.
type HTTPMailer struct {
	client *http.Client
}

// NewHTTPMailer creates the production Mailer.
func NewHTTPMailer() *HTTPMailer {
	return &HTTPMailer{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send posts one message to the email API.
func (m *HTTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	cfg := config.AppConfig
	if cfg.MailDisabled || cfg.MailAPIURL == "" || cfg.MailAPIKey == "" {
		utils.GetLogger().Info("mail dispatch skipped",
			zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	payload, err := json.Marshal(sendRequest{
		From:    cfg.MailFrom,
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.MailAPIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.MailAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}
	return nil
}
