package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"codereviewhub/backend/ai"
	"codereviewhub/backend/utils"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

// Standalone review: runs the reviewer on the supplied code without
// creating a submission, and returns its raw structured result.

type reviewRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

var reviewer *ai.Client
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

	var req reviewRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 400,
			Body:       fmt.Sprintf(`{"error": "Invalid request body: %v"}`, err),
		}, nil
	}
	if req.Code == "" || req.Language == "" {
		return events.APIGatewayProxyResponse{
			StatusCode: 400,
			Body:       `{"message": "Code and language are required."}`,
		}, nil
	}

	log.Printf("Running standalone AI review for %s code", req.Language)
	result, err := reviewer.Review(ctx, req.Code, req.Language)
	if err != nil {
		log.Printf("AI review failed: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf(`{"message": "Error running AI review", "error": "%v"}`, err),
		}, nil
	}

	responseBody, err := json.Marshal(result)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf(`{"message": "Error running AI review", "error": "%v"}`, err),
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
	client, err := ai.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize reviewer client: %v", err)
	}
	reviewer = client

	lambda.Start(handleRequest)
}
