package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPGateway delivers OTP emails through a transactional email HTTP API
type HTTPGateway struct {
	apiURL        string
	apiKey        string
	sender        string
	expiryMinutes int
	client        *http.Client
}

// Config holds configuration for the HTTP email gateway
type Config struct {
	APIURL           string
	APIKey           string
	Sender           string // From address, e.g. noreply@gsrtc.in
	OTPExpiryMinutes int    // quoted in the email body
}

// NewHTTPGateway creates a new transactional email gateway client
func NewHTTPGateway(config Config) *HTTPGateway {
	expiry := config.OTPExpiryMinutes
	if expiry <= 0 {
		expiry = 5
	}
	return &HTTPGateway{
		apiURL:        config.APIURL,
		apiKey:        config.APIKey,
		sender:        config.Sender,
		expiryMinutes: expiry,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// sendRequest is the provider's message payload
type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// sendResponse is the provider's delivery acknowledgement
type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	ErrCode string `json:"errCode"`
}

// SendOTP delivers a password reset OTP email
func (g *HTTPGateway) SendOTP(email, otpCode string) (string, error) {
	body := sendRequest{
		From:    g.sender,
		To:      email,
		Subject: "GSRTC admin console password reset",
		Text:    fmt.Sprintf("Your password reset code is %s. It expires in %d minutes. If you did not request a reset, ignore this email.", otpCode, g.expiryMinutes),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.apiURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("email API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read email API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("email API returned status %d: %s", resp.StatusCode, string(raw))
	}

	var result sendResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("failed to decode email API response: %w", err)
	}

	if result.ErrCode != "" {
		return "", fmt.Errorf("email API error %s: %s", result.ErrCode, result.Message)
	}

	return result.ID, nil
}

// GetName returns the gateway name
func (g *HTTPGateway) GetName() string {
	return "transactional-email-http"
}
