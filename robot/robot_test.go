package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/waverobot/config"
	"github.com/c360/waverobot/errors"
	"github.com/c360/waverobot/events"
)

func testConfig() config.Config {
	return config.Config{
		Robot: config.RobotConfig{
			Name:    "Echoey",
			Address: "echo@appspot.com",
		},
		Credentials: []config.ConsumerCredential{
			{
				RPCServerURL:   "http://gmodules.com/api/rpc",
				ConsumerKey:    "mykey",
				ConsumerSecret: "mysecret",
			},
		},
		VerificationToken: "verification-token-value",
	}
}

func newTestRobot(t *testing.T, mutate func(*config.Config)) *Robot {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := New(cfg)
	require.NoError(t, err)
	return r
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Robot.Address = "not-an-address"
	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsArgument(err))
}

func TestHandleRejectsUnknownEventType(t *testing.T) {
	r := newTestRobot(t, nil)
	err := r.Handle(events.Type("NOT_AN_EVENT"), func(*events.Event) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.IsArgument(err))
}

func TestHandleAfterVersionIsRejected(t *testing.T) {
	r := newTestRobot(t, nil)
	require.NoError(t, r.Handle(events.BlipSubmitted, func(*events.Event) error { return nil }))

	r.CapabilityVersion()

	err := r.Handle(events.DocumentChanged, func(*events.Event) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.IsState(err))
}
