package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/aetherinc/aether-waitlist/config"
	"github.com/google/uuid"
)

// Email provider names as reported in delivery results
const (
	EmailProviderDisabled = "disabled"
	EmailProviderSMTP     = "smtp"
	EmailProviderResend   = "resend"
)

var ErrEmailRecipientRequired = errors.New("at least one recipient is required")

// EmailMessage is one outbound email
type EmailMessage struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// DeliveryResult says whether a message actually left the process and through which provider
type DeliveryResult struct {
	Delivered bool   `json:"delivered"`
	Provider  string `json:"provider"`
	MessageID string `json:"messageId,omitempty"`
}

// EmailService sends transactional email
type EmailService interface {
	Provider() string
	Send(ctx context.Context, msg EmailMessage) (*DeliveryResult, error)
}

// DisabledEmailService is used when no provider is configured. It never delivers and never fails.
type DisabledEmailService struct{}

func NewDisabledEmailService() EmailService {
	return &DisabledEmailService{}
}

func (s *DisabledEmailService) Provider() string { return EmailProviderDisabled }

func (s *DisabledEmailService) Send(_ context.Context, msg EmailMessage) (*DeliveryResult, error) {
	if len(msg.To) == 0 {
		return nil, ErrEmailRecipientRequired
	}
	return &DeliveryResult{Delivered: false, Provider: EmailProviderDisabled}, nil
}

// SMTPEmailService delivers through an SMTP relay. Port 465 uses implicit TLS, other ports upgrade with STARTTLS when offered.
type SMTPEmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

func NewSMTPEmailService(host string, port int, username, password, from string, timeout time.Duration) EmailService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SMTPEmailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  timeout,
	}
}

func (s *SMTPEmailService) Provider() string { return EmailProviderSMTP }

func (s *SMTPEmailService) Send(ctx context.Context, msg EmailMessage) (*DeliveryResult, error) {
	if len(msg.To) == 0 {
		return nil, ErrEmailRecipientRequired
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), s.host)
	body, err := buildMIMEMessage(s.from, messageID, msg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	var conn net.Conn
	if s.port == 465 {
		dialer := &tls.Dialer{Config: &tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if s.port != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
				return nil, fmt.Errorf("smtp starttls: %w", err)
			}
		}
	}
	if s.username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(s.from); err != nil {
		return nil, fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return nil, fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return nil, fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return nil, fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("smtp close data: %w", err)
	}
	_ = client.Quit()

	return &DeliveryResult{Delivered: true, Provider: EmailProviderSMTP, MessageID: messageID}, nil
}

// buildMIMEMessage renders headers plus a text body, or a multipart/alternative body when HTML is present
func buildMIMEMessage(from, messageID string, msg EmailMessage) ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	header("From", from)
	header("To", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Message-ID", messageID)
	header("Date", time.Now().UTC().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")

	if msg.HTML == "" {
		header("Content-Type", "text/plain; charset=utf-8")
		buf.WriteString("\r\n")
		buf.WriteString(msg.Text)
		return buf.Bytes(), nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, part := range []struct{ contentType, content string }{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	} {
		pw, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(pw, part.content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	header("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	buf.WriteString("\r\n")
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}

// ResendEmailService delivers through the Resend HTTP API
type ResendEmailService struct {
	BaseURL    string
	APIKey     string
	From       string
	HTTPClient *http.Client
}

func NewResendEmailService(baseURL, apiKey, from string, timeout time.Duration) EmailService {
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResendEmailService{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		From:       from,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (s *ResendEmailService) Provider() string { return EmailProviderResend }

type resendSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendSendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (s *ResendEmailService) Send(ctx context.Context, msg EmailMessage) (*DeliveryResult, error) {
	if len(msg.To) == 0 {
		return nil, ErrEmailRecipientRequired
	}

	payload, err := json.Marshal(resendSendRequest{
		From:    s.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	var out resendSendResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := out.Message
		if reason == "" {
			reason = strings.TrimSpace(string(raw))
		}
		return nil, fmt.Errorf("resend responded %d: %s", resp.StatusCode, reason)
	}

	return &DeliveryResult{Delivered: true, Provider: EmailProviderResend, MessageID: out.ID}, nil
}

// NewEmailServiceFromConfig picks the provider named in cfg
func NewEmailServiceFromConfig(cfg config.EmailConfig) EmailService {
	switch cfg.Provider {
	case config.EmailProviderSMTP:
		return NewSMTPEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.From, cfg.Timeout)
	case config.EmailProviderResend:
		if strings.TrimSpace(cfg.ResendAPIKey) == "" {
			return NewDisabledEmailService()
		}
		return NewResendEmailService(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.From, cfg.Timeout)
	default:
		return NewDisabledEmailService()
	}
}
