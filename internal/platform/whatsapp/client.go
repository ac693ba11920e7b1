package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGraphBase = "https://graph.facebook.com/v19.0"

// Client talks to the WhatsApp Business Cloud API for a single
// configured phone number.
type Client struct {
	baseURL       string
	accessToken   string
	phoneNumberID string
	http          *http.Client
}

// NewClient builds a Cloud API client. baseURL may be empty, in which
// case the Graph API default is used (tests point it at a local server).
func NewClient(accessToken, phoneNumberID, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultGraphBase
	}
	return &Client{
		baseURL:       baseURL,
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		http:          &http.Client{Timeout: 20 * time.Second},
	}
}

// Configured reports whether the credentials needed to call the
// provider are present.
func (c *Client) Configured() bool {
	return c.accessToken != "" && c.phoneNumberID != ""
}

type sendTextRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *APIError `json:"error"`
}

// APIError is the provider-side error envelope.
type APIError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	Subcode   int    `json:"error_subcode"`
	ErrorData struct {
		Details string `json:"details"`
	} `json:"error_data"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error %d: %s (%s)", e.Code, e.Message, CodeHint(e.Code))
}

// SendText sends a plain text message to an already-normalized phone
// number and returns the provider message id for later delivery/read
// correlation.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("whatsapp client not configured: missing access token or phone number id")
	}

	payload := sendTextRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp send call failed: %w", err)
	}
	defer resp.Body.Close()

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode send response (http %d): %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return "", out.Error
	}
	if resp.StatusCode >= http.StatusBadRequest || len(out.Messages) == 0 {
		return "", fmt.Errorf("whatsapp send returned http %d with no message id", resp.StatusCode)
	}
	return out.Messages[0].ID, nil
}

// ProbeToken checks whether the configured access token can read the
// configured phone number. Used by the health-check surface.
func (c *Client) ProbeToken(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("whatsapp client not configured: missing access token or phone number id")
	}
	url := fmt.Sprintf("%s/%s?fields=display_phone_number,verified_name", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp probe call failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error *APIError `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			return "", envelope.Error
		}
		return "", fmt.Errorf("whatsapp probe returned http %d", resp.StatusCode)
	}

	var out struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode probe response: %w", err)
	}
	return out.DisplayPhoneNumber, nil
}
