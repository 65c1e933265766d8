package mailer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() Message {
	return Message{
		To:             "ana.silva@example.com",
		Subject:        "Seu certificado - Lean Six Sigma",
		Body:           "Olá, Ana Silva!\n",
		AttachmentName: "certificado_abc.pdf",
		AttachmentType: "application/pdf",
		Attachment:     []byte("%PDF-fake"),
	}
}

func newTestGraphMailer(loginURL, graphURL string) *GraphMailer {
	m := NewGraphMailer("tenant-id", "client-id", "client-secret", "certificado@example.com")
	m.loginBaseURL = loginURL
	m.graphBaseURL = graphURL
	return m
}

func TestGraphMailerSendsWithCachedToken(t *testing.T) {
	var tokenRequests atomic.Int32
	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenRequests.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.Equal(t, "client-id", r.FormValue("client_id"))
		assert.Equal(t, graphScope, r.FormValue("scope"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	}))
	defer login.Close()

	var sendRequests atomic.Int32
	graph := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendRequests.Add(1)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1.0/users/certificado@example.com/sendMail", r.URL.Path)

		var payload graphSendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Seu certificado - Lean Six Sigma", payload.Message.Subject)
		require.Len(t, payload.Message.ToRecipients, 1)
		assert.Equal(t, "ana.silva@example.com", payload.Message.ToRecipients[0].EmailAddress.Address)
		require.Len(t, payload.Message.Attachments, 1)
		assert.Equal(t, "#microsoft.graph.fileAttachment", payload.Message.Attachments[0].ODataType)
		decoded, err := base64.StdEncoding.DecodeString(payload.Message.Attachments[0].ContentBytes)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-fake"), decoded)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer graph.Close()

	m := newTestGraphMailer(login.URL, graph.URL)

	require.NoError(t, m.Send(context.Background(), testMessage()))
	require.NoError(t, m.Send(context.Background(), testMessage()))

	// Token acquired once, reused for the second send.
	assert.EqualValues(t, 1, tokenRequests.Load())
	assert.EqualValues(t, 2, sendRequests.Load())
}

func TestGraphMailerTokenFailureIsConfigError(t *testing.T) {
	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer login.Close()

	m := newTestGraphMailer(login.URL, "http://127.0.0.1:0")

	err := m.Send(context.Background(), testMessage())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "401")
}

func TestGraphMailerSubmitFailureIsDeliveryError(t *testing.T) {
	login := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	}))
	defer login.Close()

	graph := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"ErrorSendAsDenied"}}`, http.StatusForbidden)
	}))
	defer graph.Close()

	m := newTestGraphMailer(login.URL, graph.URL)

	err := m.Send(context.Background(), testMessage())
	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, http.StatusForbidden, deliveryErr.StatusCode)
	assert.Contains(t, deliveryErr.Detail, "ErrorSendAsDenied")
}
