package main

import (
	"log"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/joho/godotenv"

	"codereviewhub/backend/lib"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, relying on the environment: %v", err)
	}
}

func main() {
	defer jsii.Close()
	app := awscdk.NewApp(nil)

	lib.NewBackendStack(app, "CodeReviewHubStack", &lib.BackendStackProps{
		StackProps: awscdk.StackProps{
			Env: &awscdk.Environment{
				Account: jsii.String(os.Getenv("CDK_DEFAULT_ACCOUNT")),
				Region:  jsii.String(os.Getenv("CDK_DEFAULT_REGION")),
			},
		},
	})

	app.Synth(nil)
}
