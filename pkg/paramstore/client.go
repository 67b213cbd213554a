package paramstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Config is loaded with the PARAM prefix. An empty Prefix disables SSM.
type Config struct {
	Prefix string `envconfig:"PREFIX"`
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Prefix) != ""
}

// ssmAPI is the minimal AWS SSM interface required by Client.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Client wraps an AWS SSM API for parameter retrieval.
type Client struct {
	api ssmAPI
}

func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{api: api}, nil
}

func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if c.api == nil {
		return "", errors.New("paramstore: client not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}

	withDecryption := true
	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, nil
}

// Secret names a parameter under the prefix and the config field it fills.
type Secret struct {
	Name string
	Dest *string
}

// Fill loads every secret whose Dest is still empty from prefix/Name.
// Values already set from the environment win. Failures are joined so one
// missing parameter does not hide the others.
func Fill(ctx context.Context, getter Getter, prefix string, secrets ...Secret) error {
	if getter == nil {
		return errors.New("paramstore: getter must not be nil")
	}
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")

	var errs []error
	for _, s := range secrets {
		if s.Dest == nil || strings.TrimSpace(*s.Dest) != "" {
			continue
		}
		v, err := getter.GetParameter(ctx, path.Join(prefix, s.Name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*s.Dest = strings.TrimSpace(v)
	}
	return errors.Join(errs...)
}
