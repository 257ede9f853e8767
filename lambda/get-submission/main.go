package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"codereviewhub/backend/db"
	"codereviewhub/backend/submissions"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

var service *submissions.Service

func handleRequest(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := event.PathParameters["id"]
	log.Printf("Fetching submission: %s", id)

	submission, err := service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, submissions.ErrNotFound) {
			return events.APIGatewayProxyResponse{
				StatusCode: 404,
				Body:       `{"message": "Submission not found."}`,
			}, nil
		}
		log.Printf("Failed to fetch submission %s: %v", id, err)
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf(`{"message": "Error fetching submission", "error": "%v"}`, err),
		}, nil
	}

	responseBody, err := json.Marshal(submission)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf(`{"message": "Error fetching submission", "error": "%v"}`, err),
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
	// Read path only, no reviewer needed.
	service = submissions.NewService(store, nil)

	lambda.Start(handleRequest)
}
