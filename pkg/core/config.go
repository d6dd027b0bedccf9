// Package core provides the shared types used by the gateway client and
// the conversation components.
package core

import (
	"errors"
	"strings"
)

// ErrIncompleteConfig is returned when a gateway operation is attempted
// without a fully populated GatewayConfig. It is a configuration error:
// no network I/O has been attempted.
var ErrIncompleteConfig = errors.New("gateway configuration is incomplete")

// GatewayConfig identifies the external messaging gateway instance.
// The value is owned by the configuration provider (the settings store);
// the core only reads it and passes it into every gateway call.
type GatewayConfig struct {
	BaseURL      string `json:"baseUrl"`
	APIKey       string `json:"apiKey"`
	InstanceName string `json:"instanceName"`
}

// Complete reports whether every field required for a gateway call is set.
func (c GatewayConfig) Complete() bool {
	return strings.TrimSpace(c.BaseURL) != "" &&
		strings.TrimSpace(c.APIKey) != "" &&
		strings.TrimSpace(c.InstanceName) != ""
}

// Validate returns ErrIncompleteConfig when the config cannot be used.
func (c GatewayConfig) Validate() error {
	if !c.Complete() {
		return ErrIncompleteConfig
	}
	return nil
}

// ConfigProvider supplies the current gateway configuration. Implemented
// by the settings store; injected so the core never reads global state.
type ConfigProvider interface {
	GatewayConfig() (GatewayConfig, error)
}
