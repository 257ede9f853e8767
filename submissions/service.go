package submissions

import (
	"context"
	"fmt"
	"log"
	"time"

	"codereviewhub/backend/types"

	"github.com/google/uuid"
)

// Store is the persistence the service needs. *db.Store satisfies it.
type Store interface {
	SaveSubmission(ctx context.Context, submission *types.Submission) error
	GetSubmission(ctx context.Context, id string) (*types.Submission, error)
	ListSubmissions(ctx context.Context, filter types.SubmissionFilter) ([]types.Submission, error)
	ApplyReview(ctx context.Context, id string, review *types.ReviewResult) error
	MarkSubmissionPending(ctx context.Context, id string) error
	AppendSubmissionHistory(ctx context.Context, userID string, submissionID string) error
	GetUser(ctx context.Context, userID string) (*types.User, error)
}

// Reviewer is the opaque external AI reviewer. *ai.Client satisfies it.
type Reviewer interface {
	Review(ctx context.Context, code string, language string) (*types.ReviewResult, error)
}

type CreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Code        string `json:"code"`
}

type Service struct {
	store    Store
	reviewer Reviewer
	now      func() time.Time
	newID    func() string
}

func NewService(store Store, reviewer Reviewer) *Service {
	return &Service{
		store:    store,
		reviewer: reviewer,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Create runs the submission lifecycle: durable write with status
// "in review", best-effort history append, then a synchronous review
// attempt. A reviewer failure degrades the submission to "pending" and
// is not reported as an error; the returned submission is never left
// at "in review".
func (s *Service) Create(ctx context.Context, authorID string, req CreateRequest) (*types.Submission, error) {
	if req.Title == "" {
		return nil, &ValidationError{Field: "title"}
	}
	if req.Language == "" {
		return nil, &ValidationError{Field: "language"}
	}
	if req.Code == "" {
		return nil, &ValidationError{Field: "code"}
	}

	now := s.now().Unix()
	submission := &types.Submission{
		ID:               s.newID(),
		AuthorID:         authorID,
		Title:            req.Title,
		Description:      req.Description,
		Language:         req.Language,
		Code:             req.Code,
		ProcessingStatus: types.StatusInReview,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.SaveSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	// Best-effort linkage: the submission must stay discoverable from
	// its author's history, but a failed append does not fail the
	// creation. It is logged so it is never silently lost.
	if err := s.store.AppendSubmissionHistory(ctx, authorID, submission.ID); err != nil {
		log.Printf("Failed to append submission %s to history of user %s: %v", submission.ID, authorID, err)
	}

	log.Printf("Automatically starting AI review for submission: %s", submission.ID)
	review, err := s.reviewer.Review(ctx, submission.Code, submission.Language)
	if err == nil {
		if applyErr := s.store.ApplyReview(ctx, submission.ID, review); applyErr != nil {
			log.Printf("Failed to persist review for submission %s: %v", submission.ID, applyErr)
			err = applyErr
		}
	}

	if err != nil {
		log.Printf("Error in automatic AI review for submission %s: %v", submission.ID, err)
		submission.ProcessingStatus = types.StatusPending
		submission.UpdatedAt = s.now().Unix()
		if pendErr := s.store.MarkSubmissionPending(ctx, submission.ID); pendErr != nil {
			log.Printf("Failed to mark submission %s pending: %v", submission.ID, pendErr)
		}
		return submission, nil
	}

	mergeReview(submission, review)
	submission.UpdatedAt = s.now().Unix()
	log.Printf("AI review completed for submission: %s", submission.ID)
	return submission, nil
}

// List returns submissions matching the filter, with the author
// expanded to username and email only.
func (s *Service) List(ctx context.Context, filter types.SubmissionFilter) ([]types.Submission, error) {
	results, err := s.store.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	authors := map[string]*types.AuthorSummary{}
	for i := range results {
		summary, ok := authors[results[i].AuthorID]
		if !ok {
			summary = s.lookupAuthor(ctx, results[i].AuthorID)
			authors[results[i].AuthorID] = summary
		}
		results[i].Author = summary
	}
	return results, nil
}

// Get returns one submission with its author expanded, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*types.Submission, error) {
	submission, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}
	if submission == nil {
		return nil, ErrNotFound
	}
	submission.Author = s.lookupAuthor(ctx, submission.AuthorID)
	return submission, nil
}

// Rerun retries the review of an existing submission, typically one
// stuck at "pending". The reviewer outcome is reported the same way
// Create reports it: the returned submission carries the final status.
func (s *Service) Rerun(ctx context.Context, id string) (*types.Submission, error) {
	submission, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}
	if submission == nil {
		return nil, ErrNotFound
	}

	log.Printf("Re-running AI review for submission: %s", id)
	review, err := s.reviewer.Review(ctx, submission.Code, submission.Language)
	if err == nil {
		if applyErr := s.store.ApplyReview(ctx, id, review); applyErr != nil {
			log.Printf("Failed to persist review for submission %s: %v", id, applyErr)
			err = applyErr
		}
	}

	if err != nil {
		log.Printf("Error in re-run AI review for submission %s: %v", id, err)
		// A completed submission keeps its review: degrading it would
		// leave persisted feedback under a non-completed status.
		if submission.ProcessingStatus == types.StatusCompleted {
			log.Printf("Submission %s already completed, keeping existing review", id)
			return submission, nil
		}
		submission.ProcessingStatus = types.StatusPending
		submission.UpdatedAt = s.now().Unix()
		if pendErr := s.store.MarkSubmissionPending(ctx, id); pendErr != nil {
			log.Printf("Failed to mark submission %s pending: %v", id, pendErr)
		}
		return submission, nil
	}

	mergeReview(submission, review)
	submission.UpdatedAt = s.now().Unix()
	return submission, nil
}

func (s *Service) lookupAuthor(ctx context.Context, authorID string) *types.AuthorSummary {
	user, err := s.store.GetUser(ctx, authorID)
	if err != nil {
		log.Printf("Failed to look up author %s: %v", authorID, err)
		return nil
	}
	if user == nil {
		return nil
	}
	return &types.AuthorSummary{Username: user.Username, Email: user.Email}
}

func mergeReview(submission *types.Submission, review *types.ReviewResult) {
	submission.ProcessingStatus = types.StatusCompleted
	submission.Feedback = &types.Feedback{
		AIReview:              review.Feedback,
		StaticAnalysisResults: review.StaticAnalysis,
		Grade:                 review.Grade,
	}
	submission.AutoFixCode = review.AutoFixCode
	submission.Complexity = &types.Complexity{
		Time:  review.TimeComplexity,
		Space: review.SpaceComplexity,
	}
	submission.SecurityReview = review.SecurityIssues
}
