package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"codereviewhub/backend/db"
	"codereviewhub/backend/submissions"
	"codereviewhub/backend/types"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

var service *submissions.Service

func handleRequest(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Printf("Listing submissions with query parameters: %+v", event.QueryStringParameters)

	filter := types.SubmissionFilter{
		Language: event.QueryStringParameters["language"],
		Status:   event.QueryStringParameters["status"],
	}

	// Grade bounds must be numeric; anything else is rejected rather
	// than coerced.
	if raw := event.QueryStringParameters["minGrade"]; raw != "" {
		min, err := strconv.Atoi(raw)
		if err != nil {
			return events.APIGatewayProxyResponse{
				StatusCode: 400,
				Body:       fmt.Sprintf(`{"message": "Invalid minGrade value: %q"}`, raw),
			}, nil
		}
		filter.MinGrade = &min
	}
	if raw := event.QueryStringParameters["maxGrade"]; raw != "" {
		max, err := strconv.Atoi(raw)
		if err != nil {
			return events.APIGatewayProxyResponse{
				StatusCode: 400,
				Body:       fmt.Sprintf(`{"message": "Invalid maxGrade value: %q"}`, raw),
			}, nil
		}
		filter.MaxGrade = &max
	}

	results, err := service.List(ctx, filter)
	if err != nil {
		log.Printf("Failed to fetch submissions: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf(`{"message": "Error fetching submissions", "error": "%v"}`, err),
		}, nil
	}
	log.Printf("Found %d submissions", len(results))

	if results == nil {
		results = []types.Submission{}
	}
	responseBody, err := json.Marshal(results)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       fmt.Sprintf(`{"message": "Error fetching submissions", "error": "%v"}`, err),
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
