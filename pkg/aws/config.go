package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog/log"

	"hrtime.service/internal/config"
)

// NewAWSConfig loads the AWS configuration for SQS and SES. In local
// development all calls go to the configured endpoint (LocalStack) with
// static test credentials.
func NewAWSConfig(ctx context.Context, appConfig config.Config) (aws.Config, error) {
	if !appConfig.IsLocalDev {
		log.Info().Str("region", appConfig.AWSRegion).Msg("Using standard AWS credential chain")
		return awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(appConfig.AWSRegion))
	}

	log.Info().Str("endpoint", appConfig.AWSEndpoint).Msg("Local development mode, routing AWS calls to LocalStack")
	return awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion(appConfig.AWSRegion),
		awsConfig.WithEndpointResolverWithOptions(localResolver(appConfig.AWSEndpoint)),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
}

// localResolver sends every service to endpoint. An empty endpoint falls
// back to the default resolution.
func localResolver(endpoint string) aws.EndpointResolverWithOptions {
	return aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if endpoint == "" {
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		}
		return aws.Endpoint{
			URL:           endpoint,
			SigningRegion: region,
			PartitionID:   "aws",
		}, nil
	})
}
