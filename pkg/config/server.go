package config

import "fmt"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `env:"AUTHZ_HTTP_HOST" env-default:"0.0.0.0"`
	Port uint16 `env:"AUTHZ_HTTP_PORT" env-default:"4000"`
}

// Addr returns the host:port listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// JwtConfig holds JWT verification configuration
type JwtConfig struct {
	Secret   string `env:"AUTHZ_JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer   string `env:"AUTHZ_JWT_ISSUER" env-default:"simple-authz"`
	Audience string `env:"AUTHZ_JWT_AUDIENCE" env-default:"simple-authz"`
}
