package idp

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

// ClientConfig configura el cliente Cognito. Endpoint vacío usa el de AWS.
type ClientConfig struct {
	Region   string
	Endpoint string
}

// NewCognitoClient arma el cliente con la cadena de credenciales por defecto de AWS.
func NewCognitoClient(ctx context.Context, cfg ClientConfig) (*cip.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return cip.NewFromConfig(awsCfg, func(o *cip.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
