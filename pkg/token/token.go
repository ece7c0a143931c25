// Package token resolves the bearer token presented to the API. Tokens are
// normally literal strings, but an aws:ssm:<region>:<parameter-name> value
// is fetched (decrypted) from AWS SSM Parameter Store instead, so the real
// credential never has to live in a config file.
package token

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"droplog/internal/utils"
)

const ssmPrefix = "aws:ssm:"

// IsSSMRef reports whether the configured token is an SSM parameter
// reference rather than a literal token.
func IsSSMRef(token string) bool {
	return strings.HasPrefix(token, ssmPrefix)
}

func parseSSMRef(token string) (region, name string, err error) {
	rest := strings.TrimPrefix(token, ssmPrefix)
	region, name, found := strings.Cut(rest, ":")
	if !found || region == "" || name == "" {
		return "", "", fmt.Errorf("malformed SSM reference %q, want aws:ssm:<region>:<parameter-name>", token)
	}
	return region, name, nil
}

// Resolve returns the bearer token to use. Literal tokens pass through
// unchanged.
func Resolve(ctx context.Context, token string) (string, error) {
	if !IsSSMRef(token) {
		return token, nil
	}

	region, name, err := parseSSMRef(token)
	if err != nil {
		return "", err
	}
	utils.Log.Debug("resolving token from SSM parameter ", name, " in ", region)

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return "", fmt.Errorf("loading AWS config: %w", err)
	}

	out, err := ssm.NewFromConfig(cfg).GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("fetching SSM parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("SSM parameter %s has no value", name)
	}
	return *out.Parameter.Value, nil
}
