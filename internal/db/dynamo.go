package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance_webapp/internal/config"
	"finance_webapp/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ErrNoCredentials is returned when none of the configured sources yields
// credentials.
var ErrNoCredentials = errors.New("no usable AWS credentials")

const credentialProbeTimeout = 5 * time.Second

type credentialSource struct {
	name     string
	provider aws.CredentialsProvider
}

// NewDynamoClient builds the DynamoDB client once at startup. Credential
// sources are tried in the configured order and the first one that returns
// credentials is used for the life of the process.
func NewDynamoClient(ctx context.Context, cfg config.DynamoConfig) (*dynamodb.Client, error) {
	sources, err := credentialSources(ctx, cfg)
	if err != nil {
		return nil, err
	}

	chosen, err := firstWorking(ctx, sources)
	if err != nil {
		return nil, err
	}
	logger.Info("aws credentials resolved", "source", chosen.name, "region", cfg.Region)

	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(chosen.provider),
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// credentialSources turns the configured names into providers, skipping the
// ones whose settings are absent.
func credentialSources(ctx context.Context, cfg config.DynamoConfig) ([]credentialSource, error) {
	var out []credentialSource

	for _, name := range cfg.CredentialSources {
		switch name {
		case config.CredentialSourceEnv:
			if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
				logger.Debug("credential source skipped", "source", name, "reason", "no access key")
				continue
			}
			out = append(out, credentialSource{name, credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)})

		case config.CredentialSourceProfile:
			profile, err := awsconfig.LoadSharedConfigProfile(ctx, cfg.Profile)
			if err != nil {
				logger.Debug("credential source skipped", "source", name, "profile", cfg.Profile, "error", err)
				continue
			}
			if profile.Credentials.HasKeys() {
				out = append(out, credentialSource{name, credentials.StaticCredentialsProvider{Value: profile.Credentials}})
				continue
			}
			// role, sso and process profiles are resolved by the SDK loader
			shared, err := awsconfig.LoadDefaultConfig(ctx,
				awsconfig.WithRegion(cfg.Region),
				awsconfig.WithSharedConfigProfile(cfg.Profile),
			)
			if err != nil {
				logger.Debug("credential source skipped", "source", name, "profile", cfg.Profile, "error", err)
				continue
			}
			out = append(out, credentialSource{name, shared.Credentials})

		case config.CredentialSourceWebIdentity:
			if cfg.RoleARN == "" || cfg.WebIdentityTokenFile == "" {
				logger.Debug("credential source skipped", "source", name, "reason", "no role or token file")
				continue
			}
			stsClient := sts.NewFromConfig(aws.Config{Region: cfg.Region})
			provider := stscreds.NewWebIdentityRoleProvider(stsClient, cfg.RoleARN,
				stscreds.IdentityTokenFile(cfg.WebIdentityTokenFile),
				func(o *stscreds.WebIdentityRoleOptions) {
					o.RoleSessionName = cfg.RoleSessionName
				},
			)
			out = append(out, credentialSource{name, provider})

		case config.CredentialSourceEC2Role:
			out = append(out, credentialSource{name, ec2rolecreds.New()})

		default:
			return nil, fmt.Errorf("unknown credential source %q", name)
		}
	}
	return out, nil
}

// firstWorking probes each source in order and returns the first one that
// yields credentials.
func firstWorking(ctx context.Context, sources []credentialSource) (credentialSource, error) {
	var failures []string
	for _, src := range sources {
		probeCtx, cancel := context.WithTimeout(ctx, credentialProbeTimeout)
		_, err := src.provider.Retrieve(probeCtx)
		cancel()
		if err == nil {
			return src, nil
		}
		failures = append(failures, src.name+": "+err.Error())
	}
	if len(failures) == 0 {
		return credentialSource{}, ErrNoCredentials
	}
	return credentialSource{}, fmt.Errorf("%w (%s)", ErrNoCredentials, strings.Join(failures, "; "))
}
