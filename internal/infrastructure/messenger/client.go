package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain/interfaces"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

// ErrClient marks a 4xx answer from the Send API. Such requests are not
// retried.
var ErrClient = errors.New("messenger: client error")

type messengerClient struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	maxRetries  int
	retryDelay  time.Duration
	logger      zerolog.Logger
}

func NewClient(cfg config.MessengerConfig, logger zerolog.Logger) interfaces.Notifier {
	return &messengerClient{
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.APIVersion + "/me/messages",
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Send delivers msg as an optional image followed by either a plain text
// message or one or more button templates. A rejected template is resent
// as plain text.
func (c *messengerClient) Send(ctx context.Context, recipientID string, msg domain.OutboundMessage) error {
	if recipientID == "" {
		return fmt.Errorf("messenger: empty recipient")
	}

	if msg.ImageURL != "" {
		if err := c.post(ctx, imageRequest(recipientID, msg.ImageURL)); err != nil {
			c.logger.Warn().Err(err).Str("recipient_id", recipientID).Msg("Failed to send image attachment")
		}
	}

	if len(msg.Buttons) == 0 {
		return c.post(ctx, textRequest(recipientID, msg.Text))
	}

	for i, chunk := range chunkButtons(msg.Buttons) {
		text := msg.Text
		if i > 0 {
			text = "ตัวเลือกเพิ่มเติม"
		}
		err := c.post(ctx, templateRequest(recipientID, text, chunk))
		if err == nil {
			continue
		}

		c.logger.Warn().Err(err).Str("recipient_id", recipientID).Msg("Button template rejected, falling back to text")
		if err := c.post(ctx, textRequest(recipientID, fallbackText(text, chunk))); err != nil {
			return fmt.Errorf("failed to send fallback text: %w", err)
		}
	}
	return nil
}

func (c *messengerClient) post(ctx context.Context, body sendRequest) error {
	var response sendResponse
	if err := c.makeRequest(ctx, body, &response); err != nil {
		return err
	}
	c.logger.Debug().
		Str("recipient_id", response.RecipientID).
		Str("message_id", response.MessageID).
		Msg("Message delivered")
	return nil
}

// makeRequest posts body to the Send API with retries on transport
// failures and 5xx answers.
func (c *messengerClient) makeRequest(ctx context.Context, body interface{}, response interface{}) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	fullURL := c.endpoint
	if c.accessToken != "" {
		fullURL += "?access_token=" + url.QueryEscape(c.accessToken)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(1<<(attempt-1))):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(reqBody))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			c.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("Send API request failed, retrying")
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read response body: %w", readErr)
				continue
			}
			if response != nil && len(respBody) > 0 {
				if err := json.Unmarshal(respBody, response); err != nil {
					return fmt.Errorf("failed to unmarshal response: %w", err)
				}
			}
			return nil
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error (status %d): %s", resp.StatusCode, string(respBody))
			c.logger.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Msg("Send API server error, retrying")
			continue
		}

		return fmt.Errorf("%w (status %d): %s", ErrClient, resp.StatusCode, describeError(respBody))
	}

	c.logger.Error().Err(lastErr).Int("max_retries", c.maxRetries).Msg("Send API request failed after all retries")
	return fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

func describeError(body []byte) string {
	var response sendResponse
	if err := json.Unmarshal(body, &response); err == nil && response.Error != nil {
		return fmt.Sprintf("%s (code %d, trace %s)", response.Error.Message, response.Error.Code, response.Error.FBTraceID)
	}
	return string(body)
}

func textRequest(recipientID, text string) sendRequest {
	return sendRequest{
		Recipient:     recipient{ID: recipientID},
		MessagingType: "RESPONSE",
		Message:       messagePayload{Text: truncate(text, maxTextRunes)},
	}
}

func imageRequest(recipientID, imageURL string) sendRequest {
	return sendRequest{
		Recipient:     recipient{ID: recipientID},
		MessagingType: "RESPONSE",
		Message: messagePayload{Attachment: &attachment{
			Type:    "image",
			Payload: attachmentPayload{URL: imageURL, IsReusable: true},
		}},
	}
}

func templateRequest(recipientID, text string, buttons []domain.Button) sendRequest {
	wire := make([]button, 0, len(buttons))
	for _, b := range buttons {
		out := button{Type: string(b.Type), Title: truncate(b.Title, maxButtonTitleRunes)}
		switch b.Type {
		case domain.ButtonURL:
			out.URL = b.URL
			out.WebviewHeightRatio = "tall"
		default:
			out.Type = string(domain.ButtonPostback)
			out.Payload = truncate(b.Payload, maxPayloadRunes)
		}
		wire = append(wire, out)
	}

	return sendRequest{
		Recipient:     recipient{ID: recipientID},
		MessagingType: "RESPONSE",
		Message: messagePayload{Attachment: &attachment{
			Type: "template",
			Payload: attachmentPayload{
				TemplateType: "button",
				Text:         truncate(text, maxTemplateTextRunes),
				Buttons:      wire,
			},
		}},
	}
}

func chunkButtons(buttons []domain.Button) [][]domain.Button {
	var chunks [][]domain.Button
	for start := 0; start < len(buttons); start += maxButtonsPerTemplate {
		end := start + maxButtonsPerTemplate
		if end > len(buttons) {
			end = len(buttons)
		}
		chunks = append(chunks, buttons[start:end])
	}
	return chunks
}

// fallbackText lists link buttons inline so the recipient can still act
// when templates are unavailable.
func fallbackText(text string, buttons []domain.Button) string {
	var b strings.Builder
	b.WriteString(text)
	for _, btn := range buttons {
		if btn.Type == domain.ButtonURL && btn.URL != "" {
			b.WriteString("\n• ")
			b.WriteString(btn.Title)
			b.WriteString(": ")
			b.WriteString(btn.URL)
		}
	}
	return b.String()
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
