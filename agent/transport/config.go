package transport

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is loaded without a prefix.
type Config struct {
	Host              string        `envconfig:"HOST" default:"0.0.0.0"`
	Port              int           `envconfig:"PORT" default:"5000"`
	Route             string        `envconfig:"AGENT_ROUTE" default:"/santa"`
	BasicAuthUser     string        `envconfig:"SWML_BASIC_AUTH_USER"`
	BasicAuthPassword string        `envconfig:"SWML_BASIC_AUTH_PASSWORD"`
	ReadHeaderTimeout time.Duration `envconfig:"HTTP_READ_HEADER_TIMEOUT" default:"10s"`
	ShutdownTimeout   time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AgentRoute normalizes Route to a single leading slash and no trailing one.
func (c Config) AgentRoute() string {
	route := strings.Trim(strings.TrimSpace(c.Route), "/")
	if route == "" {
		return "/santa"
	}
	return "/" + route
}

func (c Config) basicAuthEnabled() bool {
	return c.BasicAuthUser != "" && c.BasicAuthPassword != ""
}
