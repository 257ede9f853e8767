package main

import (
	"context"
	"encoding/json"
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

var service *submissions.Service
var verifyToken = utils.VerifyToken

func handleRequest(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Printf("Received submission request")

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

	user, err := verifyToken(authToken)
	if err != nil {
		log.Printf("Failed to verify token: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: 401,
			Body:       fmt.Sprintf(`{"error": "Failed to verify token: %v"}`, err),
		}, nil
	}
	log.Printf("User verified: %s", user.ID)

	// Parse request body
	var req submissions.CreateRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		log.Printf("Failed to parse request body: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: 400,
			Body:       fmt.Sprintf(`{"error": "Invalid request body: %v"}`, err),
		}, nil
	}

	submission, err := service.Create(ctx, user.ID, req)
	if err != nil {
		if submissions.IsValidationError(err) {
			return events.APIGatewayProxyResponse{
				StatusCode: 400,
				Body:       `{"message": "Title, language, and code are required."}`,
			}, nil
		}
		log.Printf("Failed to create submission: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf(`{"message": "Error submitting code", "error": "%v"}`, err),
		}, nil
	}
	log.Printf("Submission %s created with status %q", submission.ID, submission.ProcessingStatus)

	responseBody, err := json.Marshal(map[string]interface{}{
		"message":    "Submission created successfully!",
		"submission": submission,
	})
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf(`{"message": "Error submitting code", "error": "%v"}`, err),
		}, nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: 201,
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
