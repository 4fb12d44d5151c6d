package messenger

const (
	maxButtonsPerTemplate = 3
	maxButtonTitleRunes   = 20
	maxTemplateTextRunes  = 640
	maxTextRunes          = 2000
	maxPayloadRunes       = 1000
)

type sendRequest struct {
	Recipient     recipient      `json:"recipient"`
	MessagingType string         `json:"messaging_type"`
	Message       messagePayload `json:"message"`
}

type recipient struct {
	ID string `json:"id"`
}

type messagePayload struct {
	Text       string      `json:"text,omitempty"`
	Attachment *attachment `json:"attachment,omitempty"`
}

type attachment struct {
	Type    string            `json:"type"`
	Payload attachmentPayload `json:"payload"`
}

type attachmentPayload struct {
	TemplateType string   `json:"template_type,omitempty"`
	Text         string   `json:"text,omitempty"`
	Buttons      []button `json:"buttons,omitempty"`
	URL          string   `json:"url,omitempty"`
	IsReusable   bool     `json:"is_reusable,omitempty"`
}

type button struct {
	Type               string `json:"type"`
	Title              string `json:"title"`
	Payload            string `json:"payload,omitempty"`
	URL                string `json:"url,omitempty"`
	WebviewHeightRatio string `json:"webview_height_ratio,omitempty"`
}

type sendResponse struct {
	RecipientID string    `json:"recipient_id"`
	MessageID   string    `json:"message_id"`
	Error       *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
}
