package db

import (
	"context"
	"strings"
	"testing"

	"codereviewhub/backend/types"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeDynamo struct {
	getInput    *dynamodb.GetItemInput
	putInput    *dynamodb.PutItemInput
	updateInput *dynamodb.UpdateItemInput
	scanInput   *dynamodb.ScanInput

	getOutput  *dynamodb.GetItemOutput
	scanOutput *dynamodb.ScanOutput
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.getInput = params
	if f.getOutput != nil {
		return f.getOutput, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInput = params
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updateInput = params
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanInput = params
	if f.scanOutput != nil {
		return f.scanOutput, nil
	}
	return &dynamodb.ScanOutput{}, nil
}

func newTestStore(fake *fakeDynamo) *Store {
	return NewStoreWithClient(fake, "Submissions", "Users")
}

func TestGetSubmissionMissReturnsNil(t *testing.T) {
	fake := &fakeDynamo{}
	store := newTestStore(fake)

	sub, err := store.GetSubmission(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetSubmission returned error: %v", err)
	}
	if sub != nil {
		t.Fatalf("expected nil submission on miss, got %+v", sub)
	}
}

func TestListSubmissionsNoFilter(t *testing.T) {
	item, err := attributevalue.MarshalMap(&types.Submission{ID: "a", Language: "python"})
	if err != nil {
		t.Fatal(err)
	}
	fake := &fakeDynamo{scanOutput: &dynamodb.ScanOutput{Items: []map[string]dbtypes.AttributeValue{item}}}
	store := newTestStore(fake)

	results, err := store.ListSubmissions(context.Background(), types.SubmissionFilter{})
	if err != nil {
		t.Fatalf("ListSubmissions returned error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if fake.scanInput.FilterExpression != nil {
		t.Fatalf("empty filter should scan without expression, got %q", *fake.scanInput.FilterExpression)
	}
}

func TestListSubmissionsFilterExpression(t *testing.T) {
	fake := &fakeDynamo{}
	store := newTestStore(fake)

	min, max := 80, 90
	_, err := store.ListSubmissions(context.Background(), types.SubmissionFilter{
		Language: "python",
		Status:   types.StatusCompleted,
		MinGrade: &min,
		MaxGrade: &max,
	})
	if err != nil {
		t.Fatalf("ListSubmissions returned error: %v", err)
	}

	expr := *fake.scanInput.FilterExpression
	for _, want := range []string{
		"#language = :language",
		"#status = :status",
		"#feedback.#grade >= :min_grade",
		"#feedback.#grade <= :max_grade",
	} {
		if !strings.Contains(expr, want) {
			t.Errorf("filter expression %q missing %q", expr, want)
		}
	}
	if got := fake.scanInput.ExpressionAttributeNames["#status"]; got != "processing_status" {
		t.Errorf("#status maps to %q, want processing_status", got)
	}
	if got := fake.scanInput.ExpressionAttributeValues[":min_grade"].(*dbtypes.AttributeValueMemberN).Value; got != "80" {
		t.Errorf(":min_grade = %q, want 80", got)
	}
	if got := fake.scanInput.ExpressionAttributeValues[":max_grade"].(*dbtypes.AttributeValueMemberN).Value; got != "90" {
		t.Errorf(":max_grade = %q, want 90", got)
	}
}

func TestListSubmissionsMinGradeOnly(t *testing.T) {
	fake := &fakeDynamo{}
	store := newTestStore(fake)

	min := 80
	if _, err := store.ListSubmissions(context.Background(), types.SubmissionFilter{MinGrade: &min}); err != nil {
		t.Fatalf("ListSubmissions returned error: %v", err)
	}

	expr := *fake.scanInput.FilterExpression
	if expr != "#feedback.#grade >= :min_grade" {
		t.Fatalf("unexpected filter expression: %q", expr)
	}
}

func TestApplyReviewUpdate(t *testing.T) {
	fake := &fakeDynamo{}
	store := newTestStore(fake)

	fix := "fixed"
	err := store.ApplyReview(context.Background(), "sub-1", &types.ReviewResult{
		Feedback:        "clean",
		StaticAnalysis:  []string{"ok"},
		Grade:           92,
		AutoFixCode:     &fix,
		TimeComplexity:  "O(n log n)",
		SpaceComplexity: "O(n)",
		SecurityIssues:  []string{},
	})
	if err != nil {
		t.Fatalf("ApplyReview returned error: %v", err)
	}

	expr := *fake.updateInput.UpdateExpression
	for _, want := range []string{"#status = :status", "#feedback = :feedback", "#complexity = :complexity", "#security_review = :security_review", "#auto_fix_code = :auto_fix_code"} {
		if !strings.Contains(expr, want) {
			t.Errorf("update expression %q missing %q", expr, want)
		}
	}
	if got := fake.updateInput.ExpressionAttributeValues[":status"].(*dbtypes.AttributeValueMemberS).Value; got != types.StatusCompleted {
		t.Errorf(":status = %q, want completed", got)
	}
}

func TestApplyReviewWithoutAutoFix(t *testing.T) {
	fake := &fakeDynamo{}
	store := newTestStore(fake)

	err := store.ApplyReview(context.Background(), "sub-1", &types.ReviewResult{Feedback: "clean"})
	if err != nil {
		t.Fatalf("ApplyReview returned error: %v", err)
	}
	if strings.Contains(*fake.updateInput.UpdateExpression, "auto_fix_code") {
		t.Fatalf("auto_fix_code should not be set when nil: %q", *fake.updateInput.UpdateExpression)
	}
}

func TestMarkSubmissionPending(t *testing.T) {
	fake := &fakeDynamo{}
	store := newTestStore(fake)

	if err := store.MarkSubmissionPending(context.Background(), "sub-1"); err != nil {
		t.Fatalf("MarkSubmissionPending returned error: %v", err)
	}
	if got := fake.updateInput.ExpressionAttributeValues[":status"].(*dbtypes.AttributeValueMemberS).Value; got != types.StatusPending {
		t.Errorf(":status = %q, want pending", got)
	}
	if strings.Contains(*fake.updateInput.UpdateExpression, "feedback") {
		t.Fatal("pending update must not touch feedback")
	}
}

func TestAppendSubmissionHistoryIsAtomic(t *testing.T) {
	fake := &fakeDynamo{}
	store := newTestStore(fake)

	if err := store.AppendSubmissionHistory(context.Background(), "u1", "sub-1"); err != nil {
		t.Fatalf("AppendSubmissionHistory returned error: %v", err)
	}

	expr := *fake.updateInput.UpdateExpression
	if !strings.Contains(expr, "list_append(if_not_exists(#history, :empty), :ids)") {
		t.Fatalf("history append is not a single atomic list_append: %q", expr)
	}
	if *fake.updateInput.ConditionExpression != "attribute_exists(id)" {
		t.Fatalf("unexpected condition expression: %q", *fake.updateInput.ConditionExpression)
	}
	if *fake.updateInput.TableName != "Users" {
		t.Fatalf("append targeted table %q, want Users", *fake.updateInput.TableName)
	}
	ids := fake.updateInput.ExpressionAttributeValues[":ids"].(*dbtypes.AttributeValueMemberL).Value
	if len(ids) != 1 || ids[0].(*dbtypes.AttributeValueMemberS).Value != "sub-1" {
		t.Fatalf("unexpected :ids value: %+v", ids)
	}
}
