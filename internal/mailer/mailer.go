// Package mailer sends transactional e-mails through the Brevo HTTP API.
// Sending is best effort: failures are logged and reported as false.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/go-chantiers/internal/config"
	"github.com/diewo77/go-chantiers/internal/logging"
	"github.com/diewo77/go-chantiers/internal/metrics"
)

// Attachment is a file sent along the message.
type Attachment struct {
	Name    string
	Content []byte
}

// Sender delivers one message. It never returns an error.
type Sender interface {
	Send(ctx context.Context, to, subject, html string, attachment *Attachment) bool
}

// Brevo talks to the v3 smtp/email endpoint.
type Brevo struct {
	apiURL     string
	apiKey     string
	sender     string
	senderName string
	http       *http.Client
}

// New builds a Brevo sender from configuration.
func New(cfg config.EmailConfig) *Brevo {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Brevo{
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		sender:     cfg.Sender,
		senderName: cfg.SenderName,
		http:       &http.Client{Timeout: timeout},
	}
}

type contact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type message struct {
	Sender      contact      `json:"sender"`
	To          []contact    `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent"`
	Attachment  []attachment `json:"attachment,omitempty"`
}

func (b *Brevo) Send(ctx context.Context, to, subject, html string, att *Attachment) bool {
	log := logging.FromContext(ctx).WithField("to", to)
	if b.apiKey == "" {
		metrics.Email("disabled")
		log.Warn("e-mail not sent: no API key configured")
		return false
	}
	if err := b.post(ctx, to, subject, html, att); err != nil {
		metrics.Email("failed")
		log.WithError(err).Warn("e-mail not sent")
		return false
	}
	metrics.Email("sent")
	log.Info("e-mail sent")
	return true
}

func (b *Brevo) post(ctx context.Context, to, subject, html string, att *Attachment) error {
	msg := message{
		Sender:      contact{Email: b.sender, Name: b.senderName},
		To:          []contact{{Email: strings.TrimSpace(to)}},
		Subject:     subject,
		HTMLContent: html,
	}
	if att != nil && len(att.Content) > 0 {
		msg.Attachment = []attachment{{Name: att.Name, Content: base64.StdEncoding.EncodeToString(att.Content)}}
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
