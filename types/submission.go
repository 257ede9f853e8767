package types

// Feedback holds the structured result of a completed review.
type Feedback struct {
	AIReview              string   `json:"ai_review" dynamodbav:"ai_review"`
	StaticAnalysisResults []string `json:"static_analysis_results" dynamodbav:"static_analysis_results"`
	Grade                 int      `json:"grade" dynamodbav:"grade"`
}

type Complexity struct {
	Time  string `json:"time" dynamodbav:"time"`
	Space string `json:"space" dynamodbav:"space"`
}

// AuthorSummary is the only author shape exposed on read paths.
type AuthorSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

const (
	StatusInReview  = "in review"
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// SubmissionFilter narrows a submission listing. Zero value matches
// everything; grade bounds are inclusive and independently optional.
type SubmissionFilter struct {
	Language string
	Status   string
	MinGrade *int
	MaxGrade *int
}

type Submission struct {
	ID               string         `json:"id" dynamodbav:"id"`
	AuthorID         string         `json:"author_id" dynamodbav:"author_id"`
	Author           *AuthorSummary `json:"author,omitempty" dynamodbav:"-"`
	Title            string         `json:"title" dynamodbav:"title"`
	Description      string         `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Language         string         `json:"language" dynamodbav:"language"`
	Code             string         `json:"code" dynamodbav:"code"`
	ProcessingStatus string         `json:"processing_status" dynamodbav:"processing_status"` // in review, completed, pending
	Feedback         *Feedback      `json:"feedback,omitempty" dynamodbav:"feedback,omitempty"`
	AutoFixCode      *string        `json:"auto_fix_code,omitempty" dynamodbav:"auto_fix_code,omitempty"`
	Complexity       *Complexity    `json:"complexity,omitempty" dynamodbav:"complexity,omitempty"`
	SecurityReview   []string       `json:"security_review,omitempty" dynamodbav:"security_review,omitempty"`
	CreatedAt        int64          `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt        int64          `json:"updated_at" dynamodbav:"updated_at"`
}
