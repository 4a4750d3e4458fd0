package sms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

func TestAfricasTalkingSendsForm(t *testing.T) {
	var (
		gotPath   string
		gotHeader http.Header
		gotForm   url.Values
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"SMSMessageData":{"Message":"Sent to 1/1"}}`))
	}))
	defer server.Close()

	client, err := NewClient(config.SMSConfig{
		Provider:             "africastalking",
		AfricasTalkingAPIKey: "at-key",
	}, WithBaseURL(server.URL))
	require.NoError(t, err)

	err = client.Send(context.Background(), "0712 345 678", "VOO Citizen: hello")
	require.NoError(t, err)

	assert.Equal(t, "/version1/messaging", gotPath)
	assert.Equal(t, "at-key", gotHeader.Get("apiKey"))
	assert.Equal(t, "application/json", gotHeader.Get("Accept"))
	assert.Equal(t, "sandbox", gotForm.Get("username"))
	assert.Equal(t, "+254712345678", gotForm.Get("to"))
	assert.Equal(t, "VOO Citizen: hello", gotForm.Get("message"))
}

func TestTermiiSendsJSON(t *testing.T) {
	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sms/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(config.SMSConfig{
		Provider:       "termii",
		TermiiAPIKey:   "termii-key",
		TermiiSenderID: "VOO",
	}, WithBaseURL(server.URL))
	require.NoError(t, err)

	require.NoError(t, client.Send(context.Background(), "254712345678", "hi"))
	assert.Equal(t, map[string]string{
		"to":      "+254712345678",
		"from":    "VOO",
		"sms":     "hi",
		"type":    "plain",
		"api_key": "termii-key",
		"channel": "generic",
	}, payload)
}

func TestSendWrapsGatewayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(config.SMSConfig{Provider: "africastalking", AfricasTalkingAPIKey: "bad"}, WithBaseURL(server.URL))
	require.NoError(t, err)

	err = client.Send(context.Background(), "0712345678", "hi")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
	require.NotNil(t, errors.Unwrap(err))
	assert.Contains(t, errors.Unwrap(err).Error(), "401")
}

func TestSendValidatesInput(t *testing.T) {
	client, err := NewClient(config.SMSConfig{Provider: "africastalking", AfricasTalkingAPIKey: "k", AfricasTalkingBaseURL: "http://sms.test"})
	require.NoError(t, err)

	err = client.Send(context.Background(), "  ", "hi")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	err = client.Send(context.Background(), "0712345678", " ")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestNewClientRequiresKeyAndKnownProvider(t *testing.T) {
	_, err := NewClient(config.SMSConfig{Provider: "africastalking", AfricasTalkingBaseURL: "http://x"})
	assert.ErrorIs(t, err, errAPIKeyRequired)

	_, err = NewClient(config.SMSConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
