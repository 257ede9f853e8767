package lib

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdkapigatewayv2alpha/v2"
	"github.com/aws/aws-cdk-go/awscdkapigatewayv2integrationsalpha/v2"
	"github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type BackendStackProps struct {
	awscdk.StackProps
}

func NewBackendStack(scope constructs.Construct, id string, props *BackendStackProps) awscdk.Stack {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	}
	stack := awscdk.NewStack(scope, &id, &sprops)

	// DynamoDB Tables
	usersTable := awsdynamodb.NewTable(stack, jsii.String("Users"), &awsdynamodb.TableProps{
		PartitionKey: &awsdynamodb.Attribute{
			Name: jsii.String("id"),
			Type: awsdynamodb.AttributeType_STRING,
		},
		BillingMode: awsdynamodb.BillingMode_PAY_PER_REQUEST,
		TableName:   jsii.String("Users"),
	})

	submissionsTable := awsdynamodb.NewTable(stack, jsii.String("Submissions"), &awsdynamodb.TableProps{
		PartitionKey: &awsdynamodb.Attribute{
			Name: jsii.String("id"),
			Type: awsdynamodb.AttributeType_STRING,
		},
		BillingMode: awsdynamodb.BillingMode_PAY_PER_REQUEST,
		TableName:   jsii.String("Submissions"),
	})

	// Lambda execution role
	lambdaRole := awsiam.NewRole(stack, jsii.String("LambdaExecutionRole"), &awsiam.RoleProps{
		AssumedBy: awsiam.NewServicePrincipal(jsii.String("lambda.amazonaws.com"), nil),
		ManagedPolicies: &[]awsiam.IManagedPolicy{
			awsiam.ManagedPolicy_FromAwsManagedPolicyName(jsii.String("service-role/AWSLambdaBasicExecutionRole")),
		},
	})

	// Grant DynamoDB permissions
	usersTable.GrantReadWriteData(lambdaRole)
	submissionsTable.GrantReadWriteData(lambdaRole)

	bundling := &awscdklambdagoalpha.BundlingOptions{
		Environment: &map[string]*string{
			"GOOS":   jsii.String("linux"),
			"GOARCH": jsii.String("amd64"),
		},
	}

	tableEnv := map[string]*string{
		"SUBMISSIONS_TABLE": submissionsTable.TableName(),
		"USERS_TABLE":       usersTable.TableName(),
	}
	reviewerEnv := map[string]*string{
		"REVIEWER_API_URL": jsii.String(os.Getenv("REVIEWER_API_URL")),
		"REVIEWER_API_KEY": jsii.String(os.Getenv("REVIEWER_API_KEY")),
		"REVIEWER_TIMEOUT": jsii.String(os.Getenv("REVIEWER_TIMEOUT")),
	}
	authEnv := map[string]*string{
		"AUTH_API_URL": jsii.String(os.Getenv("AUTH_API_URL")),
	}

	// Lambda Functions
	submitLambda := awscdklambdagoalpha.NewGoFunction(stack, jsii.String("SubmitFunction"), &awscdklambdagoalpha.GoFunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2(),
		Entry:       jsii.String("lambda/submit"),
		Role:        lambdaRole,
		Bundling:    bundling,
		Environment: mergeEnv(tableEnv, reviewerEnv, authEnv),
	})

	getSubmissionsLambda := awscdklambdagoalpha.NewGoFunction(stack, jsii.String("GetSubmissionsFunction"), &awscdklambdagoalpha.GoFunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2(),
		Entry:       jsii.String("lambda/get-submissions"),
		Role:        lambdaRole,
		Bundling:    bundling,
		Environment: mergeEnv(tableEnv),
	})

	getSubmissionLambda := awscdklambdagoalpha.NewGoFunction(stack, jsii.String("GetSubmissionFunction"), &awscdklambdagoalpha.GoFunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2(),
		Entry:       jsii.String("lambda/get-submission"),
		Role:        lambdaRole,
		Bundling:    bundling,
		Environment: mergeEnv(tableEnv),
	})

	aiReviewLambda := awscdklambdagoalpha.NewGoFunction(stack, jsii.String("AiReviewFunction"), &awscdklambdagoalpha.GoFunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2(),
		Entry:       jsii.String("lambda/ai-review"),
		Role:        lambdaRole,
		Bundling:    bundling,
		Environment: mergeEnv(reviewerEnv, authEnv),
	})

	reReviewLambda := awscdklambdagoalpha.NewGoFunction(stack, jsii.String("ReReviewFunction"), &awscdklambdagoalpha.GoFunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2(),
		Entry:       jsii.String("lambda/re-review"),
		Role:        lambdaRole,
		Bundling:    bundling,
		Environment: mergeEnv(tableEnv, reviewerEnv, authEnv),
	})

	authVerifyLambda := awscdklambdagoalpha.NewGoFunction(stack, jsii.String("AuthVerifyFunction"), &awscdklambdagoalpha.GoFunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2(),
		Entry:       jsii.String("lambda/auth-verify"),
		Role:        lambdaRole,
		Bundling:    bundling,
		Environment: mergeEnv(authEnv),
	})

	// HTTP API
	httpApi := awscdkapigatewayv2alpha.NewHttpApi(stack, jsii.String("CodeReviewHubApi"), &awscdkapigatewayv2alpha.HttpApiProps{
		ApiName: jsii.String("CodeReviewHub API"),
		CorsPreflight: &awscdkapigatewayv2alpha.CorsPreflightOptions{
			AllowHeaders: jsii.Strings("Authorization", "Content-Type"),
			AllowMethods: &[]awscdkapigatewayv2alpha.CorsHttpMethod{
				awscdkapigatewayv2alpha.CorsHttpMethod_GET,
				awscdkapigatewayv2alpha.CorsHttpMethod_POST,
				awscdkapigatewayv2alpha.CorsHttpMethod_OPTIONS,
			},
			AllowOrigins: jsii.Strings("*"),
		},
	})

	httpApi.AddRoutes(&awscdkapigatewayv2alpha.AddRoutesOptions{
		Path: jsii.String("/submissions"),
		Methods: &[]awscdkapigatewayv2alpha.HttpMethod{
			awscdkapigatewayv2alpha.HttpMethod_POST,
		},
		Integration: awscdkapigatewayv2integrationsalpha.NewHttpLambdaIntegration(
			jsii.String("SubmitIntegration"),
			submitLambda,
			&awscdkapigatewayv2integrationsalpha.HttpLambdaIntegrationProps{},
		),
	})

	httpApi.AddRoutes(&awscdkapigatewayv2alpha.AddRoutesOptions{
		Path: jsii.String("/submissions"),
		Methods: &[]awscdkapigatewayv2alpha.HttpMethod{
			awscdkapigatewayv2alpha.HttpMethod_GET,
		},
		Integration: awscdkapigatewayv2integrationsalpha.NewHttpLambdaIntegration(
			jsii.String("GetSubmissionsIntegration"),
			getSubmissionsLambda,
			&awscdkapigatewayv2integrationsalpha.HttpLambdaIntegrationProps{},
		),
	})

	httpApi.AddRoutes(&awscdkapigatewayv2alpha.AddRoutesOptions{
		Path: jsii.String("/submissions/{id}"),
		Methods: &[]awscdkapigatewayv2alpha.HttpMethod{
			awscdkapigatewayv2alpha.HttpMethod_GET,
		},
		Integration: awscdkapigatewayv2integrationsalpha.NewHttpLambdaIntegration(
			jsii.String("GetSubmissionIntegration"),
			getSubmissionLambda,
			&awscdkapigatewayv2integrationsalpha.HttpLambdaIntegrationProps{},
		),
	})

	httpApi.AddRoutes(&awscdkapigatewayv2alpha.AddRoutesOptions{
		Path: jsii.String("/ai-review"),
		Methods: &[]awscdkapigatewayv2alpha.HttpMethod{
			awscdkapigatewayv2alpha.HttpMethod_POST,
		},
		Integration: awscdkapigatewayv2integrationsalpha.NewHttpLambdaIntegration(
			jsii.String("AiReviewIntegration"),
			aiReviewLambda,
			&awscdkapigatewayv2integrationsalpha.HttpLambdaIntegrationProps{},
		),
	})

	httpApi.AddRoutes(&awscdkapigatewayv2alpha.AddRoutesOptions{
		Path: jsii.String("/submissions/{id}/review"),
		Methods: &[]awscdkapigatewayv2alpha.HttpMethod{
			awscdkapigatewayv2alpha.HttpMethod_POST,
		},
		Integration: awscdkapigatewayv2integrationsalpha.NewHttpLambdaIntegration(
			jsii.String("ReReviewIntegration"),
			reReviewLambda,
			&awscdkapigatewayv2integrationsalpha.HttpLambdaIntegrationProps{},
		),
	})

	httpApi.AddRoutes(&awscdkapigatewayv2alpha.AddRoutesOptions{
		Path: jsii.String("/auth/verify"),
		Methods: &[]awscdkapigatewayv2alpha.HttpMethod{
			awscdkapigatewayv2alpha.HttpMethod_GET,
		},
		Integration: awscdkapigatewayv2integrationsalpha.NewHttpLambdaIntegration(
			jsii.String("AuthVerifyIntegration"),
			authVerifyLambda,
			&awscdkapigatewayv2integrationsalpha.HttpLambdaIntegrationProps{},
		),
	})

	// Stack Outputs
	awscdk.NewCfnOutput(stack, jsii.String("ApiEndpoint"), &awscdk.CfnOutputProps{
		Value: httpApi.Url(),
	})

	return stack
}

func mergeEnv(envs ...map[string]*string) *map[string]*string {
	merged := map[string]*string{}
	for _, env := range envs {
		for k, v := range env {
			merged[k] = v
		}
	}
	return &merged
}
