package registrar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrNoCallbackURL = errors.New("SWML_PROXY_URL_BASE/APP_URL not set")

// Config is loaded without a prefix.
type Config struct {
	Name              string        `envconfig:"AGENT_NAME" default:"santa"`
	Route             string        `envconfig:"AGENT_ROUTE" default:"/santa"`
	ProxyURLBase      string        `envconfig:"SWML_PROXY_URL_BASE"`
	AppURL            string        `envconfig:"APP_URL"`
	BasicAuthUser     string        `envconfig:"SWML_BASIC_AUTH_USER"`
	BasicAuthPassword string        `envconfig:"SWML_BASIC_AUTH_PASSWORD"`
	RetryDelay        time.Duration `envconfig:"REGISTRAR_RETRY_DELAY" default:"500ms"`
	RetryAttempts     uint          `envconfig:"REGISTRAR_RETRY_ATTEMPTS" default:"1"`
}

// CallbackURL is the URL Fabric should POST SWML requests to: the public base
// URL plus the agent route, with basic-auth credentials embedded when both
// are set.
func (c Config) CallbackURL() (string, error) {
	base := strings.TrimSpace(c.ProxyURLBase)
	if base == "" {
		base = strings.TrimSpace(c.AppURL)
	}
	if base == "" {
		return "", ErrNoCallbackURL
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse callback base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("callback base url %q must be absolute", base)
	}

	if c.BasicAuthUser != "" && c.BasicAuthPassword != "" {
		u.User = url.UserPassword(c.BasicAuthUser, c.BasicAuthPassword)
	}

	route := "/" + strings.Trim(strings.TrimSpace(c.Route), "/")
	u.Path = strings.TrimRight(u.Path, "/") + route
	return u.String(), nil
}
