package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/waverobot/errors"
)

// RobotConfig identifies the robot itself.
type RobotConfig struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
	ProfileURL string `json:"profileUrl,omitempty"`
}

// ConsumerCredential registers one consumer key/secret pair for an RPC
// gateway.
type ConsumerCredential struct {
	RPCServerURL   string `json:"rpcServerUrl"`
	ConsumerKey    string `json:"consumerKey"`
	ConsumerSecret string `json:"consumerSecret"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"`
}

// Config is a robot deployment's full configuration.
type Config struct {
	Robot             RobotConfig          `json:"robot"`
	ListenAddr        string               `json:"listenAddr,omitempty"`
	Credentials       []ConsumerCredential `json:"credentials,omitempty"`
	VerificationToken string               `json:"verificationToken,omitempty"`
	SecurityToken     string               `json:"securityToken,omitempty"`
	AllowUnsigned     bool                 `json:"allowUnsigned,omitempty"`
	Metrics           MetricsConfig        `json:"metrics,omitempty"`
}

// schemaJSON is the structural contract for a config file.
const schemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["robot"],
	"properties": {
		"robot": {
			"type": "object",
			"required": ["name", "address"],
			"properties": {
				"name": {"type": "string", "minLength": 1},
				"address": {"type": "string", "minLength": 3},
				"avatarUrl": {"type": "string"},
				"profileUrl": {"type": "string"}
			}
		},
		"listenAddr": {"type": "string"},
		"credentials": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["rpcServerUrl", "consumerKey", "consumerSecret"],
				"properties": {
					"rpcServerUrl": {"type": "string", "minLength": 1},
					"consumerKey": {"type": "string", "minLength": 1},
					"consumerSecret": {"type": "string", "minLength": 1}
				}
			}
		},
		"verificationToken": {"type": "string"},
		"securityToken": {"type": "string"},
		"allowUnsigned": {"type": "boolean"},
		"metrics": {
			"type": "object",
			"properties": {
				"enabled": {"type": "boolean"},
				"addr": {"type": "string"}
			}
		}
	}
}`

// Load reads a config file, checks it against the embedded schema, decodes
// it, and runs the semantic checks.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapArgument(err, "Config", "Load", "file read")
	}
	return Parse(raw)
}

// Parse validates and decodes raw config JSON.
func Parse(raw []byte) (*Config, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, errors.WrapArgument(err, "Config", "Parse", "schema validation")
	}
	if !result.Valid() {
		var sb strings.Builder
		for i, desc := range result.Errors() {
			if i > 0 {
				sb.WriteString("; ")
			}
			fmt.Fprintf(&sb, "%s: %s", desc.Field(), desc.Description())
		}
		return nil, errors.WrapArgument(
			fmt.Errorf("%w: %s", errors.ErrInvalidConfig, sb.String()),
			"Config", "Parse", "schema validation")
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.WrapArgument(err, "Config", "Parse", "config decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies the semantic checks the schema cannot express.
func (c *Config) Validate() error {
	if !strings.Contains(c.Robot.Address, "@") {
		return errors.WrapArgument(
			fmt.Errorf("%w: robot address %q has no domain", errors.ErrInvalidConfig, c.Robot.Address),
			"Config", "Validate", "robot address check")
	}
	seen := make(map[string]bool, len(c.Credentials))
	for _, cred := range c.Credentials {
		if _, err := url.Parse(cred.RPCServerURL); err != nil {
			return errors.WrapArgument(
				fmt.Errorf("%w: bad rpcServerUrl %q", errors.ErrInvalidConfig, cred.RPCServerURL),
				"Config", "Validate", "credential check")
		}
		if seen[cred.RPCServerURL] {
			return errors.WrapArgument(
				fmt.Errorf("%w: duplicate credential for %s", errors.ErrInvalidConfig, cred.RPCServerURL),
				"Config", "Validate", "credential check")
		}
		seen[cred.RPCServerURL] = true
	}
	// Signed-only operation needs at least one credential to validate
	// against.
	if !c.AllowUnsigned && len(c.Credentials) == 0 {
		return errors.WrapState(
			fmt.Errorf("%w: unsigned requests disallowed but no credentials registered", errors.ErrMissingConfig),
			"Config", "Validate", "credential presence check")
	}
	return nil
}

// CredentialFor returns the credential registered for the gateway URL.
func (c *Config) CredentialFor(rpcServerURL string) (ConsumerCredential, bool) {
	for _, cred := range c.Credentials {
		if cred.RPCServerURL == rpcServerURL {
			return cred, true
		}
	}
	return ConsumerCredential{}, false
}
