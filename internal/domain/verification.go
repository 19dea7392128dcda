package domain

import "time"

// VerificationCode is the single live one-time code for an email address.
// PK: email — each Put overwrites any prior code for that address.
// ExpiresAt is a Unix timestamp doubling as the DynamoDB TTL attribute;
// validation must still reject expired rows since TTL reaping is lazy.
type VerificationCode struct {
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"code" dynamodbav:"code"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}
