package domain

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Admin is an operator allowed to verify payments, pay sellers, cancel
// transactions and answer report cases. AdminID is the admin's chat id.
type Admin struct {
	AdminID     string    `json:"adminId"`
	DisplayName string    `json:"displayName,omitempty"`
	BankAccount *BankInfo `json:"bankAccount,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Claim struct {
	AdminID string `json:"admin_id"`
	jwt.StandardClaims
}
