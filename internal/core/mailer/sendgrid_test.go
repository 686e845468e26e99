package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/NexSupply/internal/models"
)

func newTestMailer(t *testing.T, url string) *SendGrid {
	t.Helper()
	m, err := New(nil, Config{
		APIKey: "SG.test", FromEmail: "noreply@nexsupply.net", BaseURL: url,
		MaxRetries: 2, Backoff: time.Millisecond,
	})
	require.NoError(t, err)
	return m
}

func consultation() models.Email {
	return models.Email{
		To:      "outreach@nexsupply.net",
		ReplyTo: "buyer@example.com",
		Subject: "Consultation request",
		Body:    "Product: bluetooth speaker",
	}
}

func TestNewNotConfigured(t *testing.T) {
	_, err := New(nil, Config{APIKey: "SG.x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = New(nil, Config{FromEmail: "a@b.c"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendWireFormat(t *testing.T) {
	var got mailSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	require.NoError(t, newTestMailer(t, srv.URL).Send(context.Background(), consultation()))

	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "outreach@nexsupply.net", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "noreply@nexsupply.net", got.From.Email)
	require.NotNil(t, got.ReplyTo)
	assert.Equal(t, "buyer@example.com", got.ReplyTo.Email)
	assert.Equal(t, "text/plain", got.Content[0].Type)
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	require.NoError(t, newTestMailer(t, srv.URL).Send(context.Background(), consultation()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad from"}]}`))
	}))
	defer srv.Close()

	err := newTestMailer(t, srv.URL).Send(context.Background(), consultation())
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSendGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestMailer(t, srv.URL).Send(context.Background(), consultation())
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendValidatesMessage(t *testing.T) {
	m := newTestMailer(t, "http://127.0.0.1:1")
	assert.Error(t, m.Send(context.Background(), models.Email{Subject: "s", Body: "b"}))
	assert.Error(t, m.Send(context.Background(), models.Email{To: "a@b.c"}))
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryAfter("2"))
	assert.Equal(t, 10*time.Second, retryAfter("120"))
	assert.Zero(t, retryAfter("soon"))
}
