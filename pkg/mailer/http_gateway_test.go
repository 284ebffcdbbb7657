package mailer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOTP_Success(t *testing.T) {
	var received sendRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sendResponse{ID: "msg-123"})
	}))
	defer server.Close()

	gateway := NewHTTPGateway(Config{
		APIURL:           server.URL,
		APIKey:           "test-key",
		Sender:           "noreply@gsrtc.in",
		OTPExpiryMinutes: 10,
	})

	id, err := gateway.SendOTP("clerk@gsrtc.in", "482913")
	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)
	assert.Equal(t, "noreply@gsrtc.in", received.From)
	assert.Equal(t, "clerk@gsrtc.in", received.To)
	assert.Contains(t, received.Text, "482913")
	assert.Contains(t, received.Text, "expires in 10 minutes")
}

func TestSendOTP_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sendResponse{ErrCode: "E401", Message: "invalid recipient"})
	}))
	defer server.Close()

	gateway := NewHTTPGateway(Config{APIURL: server.URL, APIKey: "test-key", Sender: "noreply@gsrtc.in"})

	_, err := gateway.SendOTP("bad-address", "482913")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "E401")
}

func TestSendOTP_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	gateway := NewHTTPGateway(Config{APIURL: server.URL, APIKey: "test-key", Sender: "noreply@gsrtc.in"})

	_, err := gateway.SendOTP("clerk@gsrtc.in", "482913")
	assert.Error(t, err)
}
