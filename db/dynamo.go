package db

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"codereviewhub/backend/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the slice of the DynamoDB client the store needs.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type Store struct {
	client           DynamoAPI
	submissionsTable string
	usersTable       string
}

// NewStore loads the default AWS config and reads table names from
// SUBMISSIONS_TABLE and USERS_TABLE.
func NewStore(ctx context.Context) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}
	return &Store{
		client:           dynamodb.NewFromConfig(cfg),
		submissionsTable: os.Getenv("SUBMISSIONS_TABLE"),
		usersTable:       os.Getenv("USERS_TABLE"),
	}, nil
}

// NewStoreWithClient wires an explicit client, used by tests.
func NewStoreWithClient(client DynamoAPI, submissionsTable, usersTable string) *Store {
	return &Store{client: client, submissionsTable: submissionsTable, usersTable: usersTable}
}

func (s *Store) SaveSubmission(ctx context.Context, submission *types.Submission) error {
	item, err := attributevalue.MarshalMap(submission)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %v", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.submissionsTable),
		Item:      item,
	})
	return err
}

func (s *Store) GetSubmission(ctx context.Context, id string) (*types.Submission, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.submissionsTable),
		Key: map[string]dbtypes.AttributeValue{
			"id": &dbtypes.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %v", err)
	}

	if result.Item == nil {
		return nil, nil // not found, caller decides
	}

	var submission types.Submission
	if err := attributevalue.UnmarshalMap(result.Item, &submission); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submission: %v", err)
	}

	return &submission, nil
}

// ApplyReview merges a successful reviewer result into the submission
// and moves it to "completed".
func (s *Store) ApplyReview(ctx context.Context, id string, review *types.ReviewResult) error {
	feedback, err := attributevalue.Marshal(&types.Feedback{
		AIReview:              review.Feedback,
		StaticAnalysisResults: review.StaticAnalysis,
		Grade:                 review.Grade,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %v", err)
	}
	complexity, err := attributevalue.Marshal(&types.Complexity{
		Time:  review.TimeComplexity,
		Space: review.SpaceComplexity,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal complexity: %v", err)
	}
	securityReview, err := attributevalue.Marshal(review.SecurityIssues)
	if err != nil {
		return fmt.Errorf("failed to marshal security review: %v", err)
	}

	updateExpression := "SET #status = :status, #updated_at = :updated_at, #feedback = :feedback, #complexity = :complexity, #security_review = :security_review"
	expressionAttributeNames := map[string]string{
		"#status":          "processing_status",
		"#updated_at":      "updated_at",
		"#feedback":        "feedback",
		"#complexity":      "complexity",
		"#security_review": "security_review",
	}
	expressionAttributeValues := map[string]dbtypes.AttributeValue{
		":status":          &dbtypes.AttributeValueMemberS{Value: types.StatusCompleted},
		":updated_at":      &dbtypes.AttributeValueMemberN{Value: fmt.Sprintf("%d", time.Now().Unix())},
		":feedback":        feedback,
		":complexity":      complexity,
		":security_review": securityReview,
	}

	if review.AutoFixCode != nil {
		updateExpression += ", #auto_fix_code = :auto_fix_code"
		expressionAttributeNames["#auto_fix_code"] = "auto_fix_code"
		expressionAttributeValues[":auto_fix_code"] = &dbtypes.AttributeValueMemberS{Value: *review.AutoFixCode}
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.submissionsTable),
		Key: map[string]dbtypes.AttributeValue{
			"id": &dbtypes.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          &updateExpression,
		ExpressionAttributeNames:  expressionAttributeNames,
		ExpressionAttributeValues: expressionAttributeValues,
	})
	return err
}

// MarkSubmissionPending records a failed review attempt, leaving all
// feedback fields untouched.
func (s *Store) MarkSubmissionPending(ctx context.Context, id string) error {
	updateExpression := "SET #status = :status, #updated_at = :updated_at"
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.submissionsTable),
		Key: map[string]dbtypes.AttributeValue{
			"id": &dbtypes.AttributeValueMemberS{Value: id},
		},
		UpdateExpression: &updateExpression,
		ExpressionAttributeNames: map[string]string{
			"#status":     "processing_status",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]dbtypes.AttributeValue{
			":status":     &dbtypes.AttributeValueMemberS{Value: types.StatusPending},
			":updated_at": &dbtypes.AttributeValueMemberN{Value: fmt.Sprintf("%d", time.Now().Unix())},
		},
	})
	return err
}

// ListSubmissions scans the submissions table with an optional filter
// expression assembled from the supplied bounds.
func (s *Store) ListSubmissions(ctx context.Context, filter types.SubmissionFilter) ([]types.Submission, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.submissionsTable),
	}

	var conditions []string
	names := map[string]string{}
	values := map[string]dbtypes.AttributeValue{}

	if filter.Language != "" {
		conditions = append(conditions, "#language = :language")
		names["#language"] = "language"
		values[":language"] = &dbtypes.AttributeValueMemberS{Value: filter.Language}
	}
	if filter.Status != "" {
		conditions = append(conditions, "#status = :status")
		names["#status"] = "processing_status"
		values[":status"] = &dbtypes.AttributeValueMemberS{Value: filter.Status}
	}
	if filter.MinGrade != nil {
		conditions = append(conditions, "#feedback.#grade >= :min_grade")
		names["#feedback"] = "feedback"
		names["#grade"] = "grade"
		values[":min_grade"] = &dbtypes.AttributeValueMemberN{Value: strconv.Itoa(*filter.MinGrade)}
	}
	if filter.MaxGrade != nil {
		conditions = append(conditions, "#feedback.#grade <= :max_grade")
		names["#feedback"] = "feedback"
		names["#grade"] = "grade"
		values[":max_grade"] = &dbtypes.AttributeValueMemberN{Value: strconv.Itoa(*filter.MaxGrade)}
	}

	if len(conditions) > 0 {
		input.FilterExpression = aws.String(strings.Join(conditions, " AND "))
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	result, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan submissions: %v", err)
	}

	var submissions []types.Submission
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &submissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submissions: %v", err)
	}

	return submissions, nil
}

func (s *Store) SaveUser(ctx context.Context, user *types.User) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %v", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.usersTable),
		Item:      item,
	})
	return err
}

func (s *Store) GetUser(ctx context.Context, userID string) (*types.User, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.usersTable),
		Key: map[string]dbtypes.AttributeValue{
			"id": &dbtypes.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}

	if result.Item == nil {
		return nil, nil // User not found, but not an error
	}

	var user types.User
	if err := attributevalue.UnmarshalMap(result.Item, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %v", err)
	}

	return &user, nil
}

// AppendSubmissionHistory appends one submission id to the author's
// history with a single atomic list_append, so concurrent submissions
// by the same user cannot drop each other's entries. The condition
// fails when the author does not exist.
func (s *Store) AppendSubmissionHistory(ctx context.Context, userID string, submissionID string) error {
	updateExpression := "SET #history = list_append(if_not_exists(#history, :empty), :ids)"
	conditionExpression := "attribute_exists(id)"
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.usersTable),
		Key: map[string]dbtypes.AttributeValue{
			"id": &dbtypes.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:    &updateExpression,
		ConditionExpression: &conditionExpression,
		ExpressionAttributeNames: map[string]string{
			"#history": "submission_history",
		},
		ExpressionAttributeValues: map[string]dbtypes.AttributeValue{
			":empty": &dbtypes.AttributeValueMemberL{Value: []dbtypes.AttributeValue{}},
			":ids": &dbtypes.AttributeValueMemberL{Value: []dbtypes.AttributeValue{
				&dbtypes.AttributeValueMemberS{Value: submissionID},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to append submission history: %v", err)
	}
	return nil
}
