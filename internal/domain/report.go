package domain

import "time"

type CaseStatus string

const (
	CaseOpen   CaseStatus = "open"
	CaseClosed CaseStatus = "closed"
)

func (s CaseStatus) Valid() bool {
	return s == CaseOpen || s == CaseClosed
}

type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleAdmin MessageRole = "admin"
)

type CaseMessage struct {
	SenderID  string      `json:"senderId"`
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
}

type ReportCase struct {
	CaseID        string        `json:"caseId"`
	UserID        string        `json:"userId"`
	AdminID       string        `json:"adminId,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	Messages      []CaseMessage `json:"messages"`
	Status        CaseStatus    `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (c ReportCase) Clone() ReportCase {
	out := c
	out.Messages = append([]CaseMessage(nil), c.Messages...)
	return out
}

// LastMessage returns the newest message, or a zero value for an empty
// thread.
func (c *ReportCase) LastMessage() CaseMessage {
	if len(c.Messages) == 0 {
		return CaseMessage{}
	}
	return c.Messages[len(c.Messages)-1]
}
