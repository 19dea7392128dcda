package domain

import "time"

// Signup methods. A user created through the email code flow starts as
// "email"; a Google assertion forces the method to "google".
const (
	SignupMethodEmail  = "email"
	SignupMethodGoogle = "google"
)

type User struct {
	UserID         string    `json:"id" dynamodbav:"user_id"`
	FirstName      string    `json:"firstName" dynamodbav:"first_name"`
	LastName       string    `json:"lastName" dynamodbav:"last_name"`
	Email          string    `json:"email" dynamodbav:"email"`
	Verified       bool      `json:"verified" dynamodbav:"verified"`
	SignupMethod   string    `json:"signupMethod" dynamodbav:"signup_method"` // "email" | "google"
	ProfilePicture *string   `json:"profilePictureUrl,omitempty" dynamodbav:"profile_picture"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}
