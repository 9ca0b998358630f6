package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterStore resolves named secrets.
type ParameterStore interface {
	Get(ctx context.Context, name string) (string, error)
}

// SSMParameterStore reads decrypted values from AWS Systems Manager Parameter Store.
type SSMParameterStore struct {
	client  *ssm.Client
	timeout time.Duration
}

// NewSSMParameterStore loads the default AWS credential chain.
func NewSSMParameterStore(ctx context.Context) (*SSMParameterStore, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctxWithTimeout)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SSMParameterStore{client: ssm.NewFromConfig(cfg), timeout: 5 * time.Second}, nil
}

func (s *SSMParameterStore) Get(ctx context.Context, name string) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.client.GetParameter(ctxWithTimeout, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter: %w", err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", name)
	}

	return *result.Parameter.Value, nil
}

// ResolveSecrets fills secrets that are configured as parameter names.
// The API key parameter is used only when no literal key is set.
func (c *Config) ResolveSecrets(ctx context.Context, params ParameterStore) error {
	if c.AlphaVantage.APIKey == "" && c.AlphaVantage.APIKeyParameter != "" {
		if params == nil {
			return fmt.Errorf("alphavantage.api_key_parameter set but no parameter store available")
		}
		key, err := params.Get(ctx, c.AlphaVantage.APIKeyParameter)
		if err != nil {
			return fmt.Errorf("resolve alphavantage api key: %w", err)
		}
		c.AlphaVantage.APIKey = key
	}
	return nil
}

// NeedsParameterStore reports whether any secret has to come from Parameter Store.
func (c *Config) NeedsParameterStore() bool {
	if c.AlphaVantage.APIKey == "" && c.AlphaVantage.APIKeyParameter != "" {
		return true
	}
	ssmCfg := c.Postgres.SSM
	return c.Log.Environment == "prod" && c.Storage.Driver == DriverPostgres && c.Storage.DSN == "" &&
		(ssmCfg.HostParameter != "" || ssmCfg.UserParameter != "" || ssmCfg.PasswordParameter != "")
}
