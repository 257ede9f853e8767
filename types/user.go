package types

type User struct {
	ID                string   `json:"id" dynamodbav:"id"`
	Username          string   `json:"username" dynamodbav:"username"`
	Email             string   `json:"email" dynamodbav:"email"`
	SubmissionHistory []string `json:"submission_history" dynamodbav:"submission_history"`
	CreatedAt         int64    `json:"created_at" dynamodbav:"created_at"`
	LastLoginAt       int64    `json:"last_login_at" dynamodbav:"last_login_at"`
}
