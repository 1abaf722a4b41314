package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aetherinc/aether-waitlist/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledEmailService(t *testing.T) {
	svc := NewDisabledEmailService()
	assert.Equal(t, EmailProviderDisabled, svc.Provider())

	res, err := svc.Send(context.Background(), EmailMessage{To: []string{"ops@example.com"}, Subject: "hi"})
	require.NoError(t, err)
	assert.False(t, res.Delivered)
	assert.Equal(t, EmailProviderDisabled, res.Provider)

	_, err = svc.Send(context.Background(), EmailMessage{})
	assert.ErrorIs(t, err, ErrEmailRecipientRequired)
}

func TestNewEmailServiceFromConfig(t *testing.T) {
	base := config.EmailConfig{From: "AetherInc <hello@example.com>", Timeout: time.Second, ResendBaseURL: "https://api.resend.com"}

	t.Run("ResendWithKey", func(t *testing.T) {
		cfg := base
		cfg.Provider = config.EmailProviderResend
		cfg.ResendAPIKey = "re_test"
		assert.Equal(t, EmailProviderResend, NewEmailServiceFromConfig(cfg).Provider())
	})

	t.Run("ResendWithoutKeyIsDisabled", func(t *testing.T) {
		cfg := base
		cfg.Provider = config.EmailProviderResend
		cfg.ResendAPIKey = "  "
		svc := NewEmailServiceFromConfig(cfg)
		assert.Equal(t, EmailProviderDisabled, svc.Provider())

		res, err := svc.Send(context.Background(), EmailMessage{To: []string{"ops@example.com"}, Subject: "hi"})
		require.NoError(t, err)
		assert.False(t, res.Delivered)
	})

	t.Run("UnknownProviderIsDisabled", func(t *testing.T) {
		cfg := base
		cfg.Provider = "pigeon"
		assert.Equal(t, EmailProviderDisabled, NewEmailServiceFromConfig(cfg).Provider())
	})
}

func TestResendEmailService_Send(t *testing.T) {
	var got resendSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	svc := NewResendEmailService(srv.URL, "re_test", "AetherInc <noreply@aether.test>", time.Second)
	res, err := svc.Send(context.Background(), EmailMessage{
		To:      []string{"ops@example.com"},
		ReplyTo: "ada@example.com",
		Subject: "New contact",
		Text:    "hello",
	})
	require.NoError(t, err)
	assert.True(t, res.Delivered)
	assert.Equal(t, EmailProviderResend, res.Provider)
	assert.Equal(t, "msg_123", res.MessageID)
	assert.Equal(t, []string{"ops@example.com"}, got.To)
	assert.Equal(t, "ada@example.com", got.ReplyTo)
}

func TestResendEmailService_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	svc := NewResendEmailService(srv.URL, "re_test", "bad", time.Second)
	_, err := svc.Send(context.Background(), EmailMessage{To: []string{"ops@example.com"}, Subject: "x", Text: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "invalid from address")
}

func TestBuildMIMEMessage(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		raw, err := buildMIMEMessage("a@b.co", "<id@x>", EmailMessage{To: []string{"c@d.co"}, Subject: "Hi", Text: "body"})
		require.NoError(t, err)
		s := string(raw)
		assert.Contains(t, s, "To: c@d.co\r\n")
		assert.Contains(t, s, "Content-Type: text/plain; charset=utf-8")
		assert.True(t, strings.HasSuffix(s, "\r\n\r\nbody"))
	})

	t.Run("alternative parts", func(t *testing.T) {
		raw, err := buildMIMEMessage("a@b.co", "<id@x>", EmailMessage{To: []string{"c@d.co"}, Subject: "Hi", Text: "body", HTML: "<p>body</p>"})
		require.NoError(t, err)
		s := string(raw)
		assert.Contains(t, s, "multipart/alternative; boundary=")
		assert.Contains(t, s, "<p>body</p>")
	})
}
