package main

import (
	"context"
	"encoding/json"
	"testing"

	"codereviewhub/backend/submissions"
	"codereviewhub/backend/types"

	"github.com/aws/aws-lambda-go/events"
)

type stubStore struct {
	items      []types.Submission
	lastFilter types.SubmissionFilter
}

func (s *stubStore) SaveSubmission(ctx context.Context, submission *types.Submission) error {
	return nil
}

func (s *stubStore) GetSubmission(ctx context.Context, id string) (*types.Submission, error) {
	return nil, nil
}

func (s *stubStore) ListSubmissions(ctx context.Context, filter types.SubmissionFilter) ([]types.Submission, error) {
	s.lastFilter = filter
	return s.items, nil
}

func (s *stubStore) ApplyReview(ctx context.Context, id string, review *types.ReviewResult) error {
	return nil
}

func (s *stubStore) MarkSubmissionPending(ctx context.Context, id string) error {
	return nil
}

func (s *stubStore) AppendSubmissionHistory(ctx context.Context, userID string, submissionID string) error {
	return nil
}

func (s *stubStore) GetUser(ctx context.Context, userID string) (*types.User, error) {
	return &types.User{ID: userID, Username: "ada", Email: "ada@example.com"}, nil
}

func TestHandleRequestRejectsNonNumericGrade(t *testing.T) {
	service = submissions.NewService(&stubStore{}, nil)

	for _, params := range []map[string]string{
		{"minGrade": "eighty"},
		{"maxGrade": "12.5.1"},
	} {
		resp, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{
			QueryStringParameters: params,
		})
		if err != nil {
			t.Fatalf("handleRequest returned error: %v", err)
		}
		if resp.StatusCode != 400 {
			t.Fatalf("StatusCode = %d for %v, want 400", resp.StatusCode, params)
		}
	}
}

func TestHandleRequestPassesFilters(t *testing.T) {
	store := &stubStore{items: []types.Submission{
		{ID: "a", AuthorID: "u1", Language: "python", Feedback: &types.Feedback{Grade: 85}},
	}}
	service = submissions.NewService(store, nil)

	resp, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{
			"language": "python",
			"status":   "completed",
			"minGrade": "80",
			"maxGrade": "90",
		},
	})
	if err != nil {
		t.Fatalf("handleRequest returned error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("StatusCode = %d, want 200 (body: %s)", resp.StatusCode, resp.Body)
	}

	if store.lastFilter.Language != "python" || store.lastFilter.Status != "completed" {
		t.Fatalf("unexpected filter: %+v", store.lastFilter)
	}
	if store.lastFilter.MinGrade == nil || *store.lastFilter.MinGrade != 80 {
		t.Fatal("minGrade not parsed")
	}
	if store.lastFilter.MaxGrade == nil || *store.lastFilter.MaxGrade != 90 {
		t.Fatal("maxGrade not parsed")
	}

	var results []types.Submission
	if err := json.Unmarshal([]byte(resp.Body), &results); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Author == nil || results[0].Author.Username != "ada" || results[0].Author.Email != "ada@example.com" {
		t.Fatalf("author not expanded to username/email: %+v", results[0].Author)
	}
}

func TestHandleRequestEmptyResultIsArray(t *testing.T) {
	service = submissions.NewService(&stubStore{}, nil)

	resp, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{})
	if err != nil {
		t.Fatalf("handleRequest returned error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.Body != "[]" {
		t.Fatalf("Body = %q, want empty JSON array", resp.Body)
	}
}
