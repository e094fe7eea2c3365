package identity

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"go.uber.org/zap"

	"github.com/quillbooks/backend/internal/domain/errors"
)

// CognitoProvider resolves the signed-in user by presenting the session's
// access token to Cognito. GetUser validates the token server-side, so the
// core carries no signature-verification machinery of its own.
type CognitoProvider struct {
	client      *cognitoidentityprovider.Client
	accessToken func() string
	logger      *zap.Logger
}

// NewCognitoProvider creates a Cognito-backed identity provider. accessToken
// is called per lookup so the hosting application can rotate tokens.
func NewCognitoProvider(ctx context.Context, region string, accessToken func() string, logger *zap.Logger) (*CognitoProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &CognitoProvider{
		client:      cognitoidentityprovider.NewFromConfig(cfg),
		accessToken: accessToken,
		logger:      logger,
	}, nil
}

// CurrentUserID implements the Provider interface
func (p *CognitoProvider) CurrentUserID(ctx context.Context) (string, error) {
	token := p.accessToken()
	if token == "" {
		return "", errors.NewUnauthenticatedError("no signed-in user")
	}

	out, err := p.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: &token,
	})
	if err != nil {
		p.logger.Warn("cognito GetUser failed", zap.Error(err))
		return "", errors.NewUnauthenticatedError("access token rejected")
	}

	// The stable identifier is the "sub" attribute; fall back to the
	// username when it is missing.
	for _, attr := range out.UserAttributes {
		if attr.Name != nil && *attr.Name == "sub" && attr.Value != nil {
			return *attr.Value, nil
		}
	}
	if out.Username != nil && *out.Username != "" {
		return *out.Username, nil
	}
	return "", errors.NewUnauthenticatedError("user has no resolvable identifier")
}
