package domain

type ButtonType string

const (
	ButtonPostback ButtonType = "postback"
	ButtonURL      ButtonType = "web_url"
)

type Button struct {
	Type    ButtonType `json:"type"`
	Title   string     `json:"title"`
	Payload string     `json:"payload,omitempty"`
	URL     string     `json:"url,omitempty"`
}

func PostbackButton(title string, kind PostbackKind, transactionID string) Button {
	return Button{Type: ButtonPostback, Title: title, Payload: kind.Payload(transactionID)}
}

func MenuButton(title string, kind PostbackKind) Button {
	return Button{Type: ButtonPostback, Title: title, Payload: string(kind)}
}

func URLButton(title, url string) Button {
	return Button{Type: ButtonURL, Title: title, URL: url}
}

// OutboundMessage is one message to one party. ImageURL, when set, is
// sent as a separate image attachment before the text.
type OutboundMessage struct {
	Text     string   `json:"text"`
	Buttons  []Button `json:"buttons,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

func TextMessage(text string) OutboundMessage {
	return OutboundMessage{Text: text}
}

func ButtonMessage(text string, buttons ...Button) OutboundMessage {
	return OutboundMessage{Text: text, Buttons: buttons}
}

// PaymentReference is a scannable payment target produced by a renderer.
type PaymentReference struct {
	PayeeID     string `json:"payeeId"`
	Amount      int64  `json:"amount"`
	URL         string `json:"url"`
	FallbackURL string `json:"fallbackUrl"`
	Reference   string `json:"reference"`
}
