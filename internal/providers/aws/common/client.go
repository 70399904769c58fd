package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProfileConfig is a resolved AWS profile with its SDK configuration and
// initialised service clients.
type ProfileConfig struct {
	// ProfileName is the name from ~/.aws/credentials or "default".
	ProfileName string

	// Region is the region the clients are scoped to.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients holds initialised service clients scoped to Region.
	Clients *ClientSet
}

// AWSClientProvider loads AWS configurations. It is the sole entry point for
// AWS credential management; the S3 report store, the S3 config source and
// the doctor command all go through it.
//
// Implementations must use the AWS SDK v2 only. Never call the aws CLI.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for the named profile. Pass an
	// empty profile for the default profile and an empty region to keep the
	// profile's own region.
	LoadProfile(ctx context.Context, profile, region string) (*ProfileConfig, error)
}
