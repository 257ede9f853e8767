package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"codereviewhub/backend/ai"
	"codereviewhub/backend/db"
	"codereviewhub/backend/submissions"
	"codereviewhub/backend/utils"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

// Manual retry for submissions whose automatic review failed and left
// them at "pending".

var service *submissions.Service
var verifyToken = utils.VerifyToken

func handleRequest(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	// Validate token
	authToken := event.Headers["Authorization"]
	if authToken == "" {
		authToken = event.Headers["authorization"]
	}

	if authToken == "" {
		return events.APIGatewayProxyResponse{
			StatusCode: 401,
			Body:       `{"error": "No authorization token provided"}`,
		}, nil
	}
	authToken = strings.TrimPrefix(authToken, "Bearer ")

	if _, err := verifyToken(authToken); err != nil {
		log.Printf("Failed to verify token: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: 401,
			Body:       fmt.Sprintf(`{"error": "Failed to verify token: %v"}`, err),
		}, nil
	}

	id := event.PathParameters["id"]
	log.Printf("Re-review requested for submission: %s", id)

	submission, err := service.Rerun(ctx, id)
	if err != nil {
		if errors.Is(err, submissions.ErrNotFound) {
			return events.APIGatewayProxyResponse{
				StatusCode: 404,
				Body:       `{"message": "Submission not found."}`,
			}, nil
		}
		log.Printf("Failed to re-review submission %s: %v", id, err)
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf(`{"message": "Error re-running review", "error": "%v"}`, err),
		}, nil
	}

	responseBody, err := json.Marshal(map[string]interface{}{
		"message":    "Review re-run finished.",
		"submission": submission,
	})
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf(`{"message": "Error re-running review", "error": "%v"}`, err),
		}, nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: 200,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(responseBody),
	}, nil
}

func main() {
	store, err := db.NewStore(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	reviewer, err := ai.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize reviewer client: %v", err)
	}
	service = submissions.NewService(store, reviewer)

	lambda.Start(handleRequest)
}
