package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/waverobot/errors"
)

const validJSON = `{
	"robot": {"name": "parroty", "address": "parroty@appspot.com"},
	"listenAddr": ":8080",
	"credentials": [
		{
			"rpcServerUrl": "http://gmodules.com/api/rpc",
			"consumerKey": "mykey",
			"consumerSecret": "mysecret"
		}
	],
	"verificationToken": "vtok",
	"securityToken": "stok",
	"metrics": {"enabled": true, "addr": ":9090"}
}`

func TestParseValid(t *testing.T) {
	cfg, err := Parse([]byte(validJSON))
	require.NoError(t, err)

	assert.Equal(t, "parroty", cfg.Robot.Name)
	assert.Equal(t, "parroty@appspot.com", cfg.Robot.Address)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "vtok", cfg.VerificationToken)
	assert.True(t, cfg.Metrics.Enabled)
	require.Len(t, cfg.Credentials, 1)

	cred, ok := cfg.CredentialFor("http://gmodules.com/api/rpc")
	require.True(t, ok)
	assert.Equal(t, "mykey", cred.ConsumerKey)

	_, ok = cfg.CredentialFor("http://other.example.com/rpc")
	assert.False(t, ok)
}

func TestParseSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{robot:`},
		{"missing robot", `{}`},
		{"missing robot name", `{"robot": {"address": "a@b.com"}}`},
		{"empty robot name", `{"robot": {"name": "", "address": "a@b.com"}}`},
		{"credential missing secret", `{
			"robot": {"name": "r", "address": "r@b.com"},
			"credentials": [{"rpcServerUrl": "http://x", "consumerKey": "k"}]
		}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.Error(t, err)
			assert.True(t, errors.IsArgument(err))
		})
	}
}

func TestValidateAddressNeedsDomain(t *testing.T) {
	_, err := Parse([]byte(`{
		"robot": {"name": "r", "address": "nodomain"},
		"allowUnsigned": true
	}`))
	require.Error(t, err)
	assert.True(t, errors.IsArgument(err))
}

func TestValidateSignedOnlyNeedsCredentials(t *testing.T) {
	_, err := Parse([]byte(`{"robot": {"name": "r", "address": "r@b.com"}}`))
	require.Error(t, err)
	assert.True(t, errors.IsState(err))

	// Explicitly allowing unsigned requests lifts the requirement.
	cfg, err := Parse([]byte(`{
		"robot": {"name": "r", "address": "r@b.com"},
		"allowUnsigned": true
	}`))
	require.NoError(t, err)
	assert.True(t, cfg.AllowUnsigned)
}

func TestValidateDuplicateCredential(t *testing.T) {
	_, err := Parse([]byte(`{
		"robot": {"name": "r", "address": "r@b.com"},
		"credentials": [
			{"rpcServerUrl": "http://x/rpc", "consumerKey": "k", "consumerSecret": "s"},
			{"rpcServerUrl": "http://x/rpc", "consumerKey": "k2", "consumerSecret": "s2"}
		]
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate credential")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.json")
	require.NoError(t, os.WriteFile(path, []byte(validJSON), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "parroty", cfg.Robot.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
