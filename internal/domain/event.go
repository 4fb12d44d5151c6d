package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentFile  AttachmentType = "file"
)

type Attachment struct {
	Type AttachmentType `json:"type"`
	URL  string         `json:"url"`
}

// InboundEvent is a normalized chat event. Exactly one of Text,
// Attachments or Postback is normally populated.
type InboundEvent struct {
	SenderID    string       `json:"senderId"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Postback    string       `json:"postback,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// ImageURL returns the first attachment URL, preferring images.
func (e InboundEvent) ImageURL() string {
	for _, a := range e.Attachments {
		if a.Type == AttachmentImage && a.URL != "" {
			return a.URL
		}
	}
	for _, a := range e.Attachments {
		if a.URL != "" {
			return a.URL
		}
	}
	return ""
}

type PostbackKind string

// Prefixed postbacks carry a transaction id after the prefix.
const (
	PostbackPayNow              PostbackKind = "PAY_NOW_"
	PostbackPaymentConfirmed    PostbackKind = "PAYMENT_CONFIRMED_"
	PostbackUploadProof         PostbackKind = "UPLOAD_PROOF_"
	PostbackAdminConfirmPayment PostbackKind = "ADMIN_CONFIRM_PAYMENT_"
	PostbackAdminRejectPayment  PostbackKind = "ADMIN_REJECT_PAYMENT_"
	PostbackDelivered           PostbackKind = "DELIVERED_"
	PostbackConfirmReceipt      PostbackKind = "CONFIRM_RECEIPT_"
	PostbackNotReceived         PostbackKind = "NOT_ACCOUT_"
	PostbackRefund              PostbackKind = "REFUN_"
	PostbackCancel              PostbackKind = "CANCELLED_"
	PostbackAdminPaidSeller     PostbackKind = "ADMIN_PAID_SELLER_"
	PostbackAdminPaymentProblem PostbackKind = "ADMIN_PAYMENT_PROBLEM_"
	PostbackReportPayment       PostbackKind = "REPORT_PAYMENT_"
)

// Literal postbacks from the top-level menu.
const (
	PostbackStartSelling   PostbackKind = "START_SELLING"
	PostbackReportIssue    PostbackKind = "REPORT_ISSUE"
	PostbackHowToUse       PostbackKind = "HOW_TO_USE"
	PostbackContactSupport PostbackKind = "CONTACT_SUPPORT"
)

var prefixedPostbacks = sortedByLength([]PostbackKind{
	PostbackPayNow,
	PostbackPaymentConfirmed,
	PostbackUploadProof,
	PostbackAdminConfirmPayment,
	PostbackAdminRejectPayment,
	PostbackDelivered,
	PostbackConfirmReceipt,
	PostbackNotReceived,
	PostbackRefund,
	PostbackCancel,
	PostbackAdminPaidSeller,
	PostbackAdminPaymentProblem,
	PostbackReportPayment,
})

var literalPostbacks = map[PostbackKind]bool{
	PostbackStartSelling:   true,
	PostbackReportIssue:    true,
	PostbackHowToUse:       true,
	PostbackContactSupport: true,
}

func sortedByLength(kinds []PostbackKind) []PostbackKind {
	sort.SliceStable(kinds, func(i, j int) bool { return len(kinds[i]) > len(kinds[j]) })
	return kinds
}

// Payload builds the button payload for a prefixed postback.
func (k PostbackKind) Payload(transactionID string) string {
	return string(k) + transactionID
}

// ParsePostback classifies a payload. Prefixes are tried longest first so
// that no shorter prefix can shadow a longer one. A prefixed payload with
// an empty argument is rejected.
func ParsePostback(payload string) (kind PostbackKind, arg string, ok bool) {
	payload = strings.TrimSpace(payload)
	if literalPostbacks[PostbackKind(payload)] {
		return PostbackKind(payload), "", true
	}
	for _, prefix := range prefixedPostbacks {
		if strings.HasPrefix(payload, string(prefix)) {
			arg = strings.TrimPrefix(payload, string(prefix))
			if arg == "" {
				return "", "", false
			}
			return prefix, arg, true
		}
	}
	return "", "", false
}

type CommandKind string

const (
	CommandReport       CommandKind = "/report"
	CommandReply        CommandKind = "/reply"
	CommandListReports  CommandKind = "/listreports"
	CommandClose        CommandKind = "/close"
	CommandStartSelling CommandKind = "เริ่มขาย"
)

type Command struct {
	Kind CommandKind
	Args []string
	// Rest is the text after the command word with inner spacing kept.
	Rest string
}

// ParseCommand recognises a command by its first whitespace-separated
// word, case-insensitively.
func ParseCommand(text string) (Command, bool) {
	trimmed := strings.TrimSpace(text)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return Command{}, false
	}

	kind := CommandKind(strings.ToLower(fields[0]))
	switch kind {
	case CommandReport, CommandReply, CommandListReports, CommandClose, CommandStartSelling:
	default:
		return Command{}, false
	}

	return Command{
		Kind: kind,
		Args: fields[1:],
		Rest: strings.TrimSpace(trimmed[len(fields[0]):]),
	}, true
}

// Transaction ids are TX, the base36 millisecond creation time (eight
// characters until 2059) and a six character suffix.
var (
	transactionIDPattern = regexp.MustCompile(`(?i)^TX[0-9A-Z]{14,15}$`)
	transactionIDInText  = regexp.MustCompile(`(?i)\bTX[0-9A-Z]{14,15}\b`)
)

// MatchTransactionID reports whether text is exactly a transaction id and
// returns it normalised to upper case.
func MatchTransactionID(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !transactionIDPattern.MatchString(trimmed) {
		return "", false
	}
	return strings.ToUpper(trimmed), true
}

// FindTransactionID returns the first transaction id mentioned in text.
func FindTransactionID(text string) string {
	return strings.ToUpper(transactionIDInText.FindString(text))
}
