package mailer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-chantiers/internal/config"
)

func TestSendPostsMessageWithAttachment(t *testing.T) {
	received := make(chan message, 1)
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		var m message
		_ = json.NewDecoder(r.Body).Decode(&m)
		received <- m
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@smtp>"}`))
	}))
	defer srv.Close()

	b := New(config.EmailConfig{APIURL: srv.URL, APIKey: "xkeysib-test", Sender: "no-reply@demo.fr", SenderName: "Demo"})
	ok := b.Send(context.Background(), " chef@client.fr ", "Rapport", "<p>Bonjour</p>", &Attachment{Name: "rapport.pdf", Content: []byte("%PDF-1.4")})
	require.True(t, ok)

	m := <-received
	assert.Equal(t, "xkeysib-test", apiKey)
	assert.Equal(t, "no-reply@demo.fr", m.Sender.Email)
	assert.Equal(t, []contact{{Email: "chef@client.fr"}}, m.To)
	assert.Equal(t, "<p>Bonjour</p>", m.HTMLContent)
	require.Len(t, m.Attachment, 1)
	raw, err := base64.StdEncoding.DecodeString(m.Attachment[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(raw))
}

func TestSendReturnsFalseOnFailure(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized"}`))
	}))
	defer rejecting.Close()
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	tests := []struct {
		name string
		cfg  config.EmailConfig
	}{
		{"no api key", config.EmailConfig{APIURL: rejecting.URL}},
		{"provider rejects", config.EmailConfig{APIURL: rejecting.URL, APIKey: "k"}},
		{"unreachable", config.EmailConfig{APIURL: "http://127.0.0.1:1/v3/smtp/email", APIKey: "k"}},
		{"bad url", config.EmailConfig{APIURL: "://nope", APIKey: "k"}},
		{"timeout", config.EmailConfig{APIURL: slow.URL, APIKey: "k", Timeout: 50 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, New(tt.cfg).Send(context.Background(), "a@b.fr", "s", "<p/>", nil))
			})
		})
	}
}
