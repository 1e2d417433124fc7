package fanout

import (
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDispatchErrorAuth(t *testing.T) {
	err := classifyDispatchError(fmt.Errorf("535 5.7.8 username and password not accepted"))
	assert.Equal(t, DispatchAuth, err.Kind)

	err = classifyDispatchError(fmt.Errorf("smtp: auth failed"))
	assert.Equal(t, DispatchAuth, err.Kind)
}

func TestClassifyDispatchErrorConnection(t *testing.T) {
	err := classifyDispatchError(fmt.Errorf("dial tcp 10.0.0.1:587: connection refused"))
	assert.Equal(t, DispatchConnection, err.Kind)

	var netErr net.Error = &net.OpError{Op: "read", Err: fmt.Errorf("timeout")}
	err = classifyDispatchError(fmt.Errorf("sending: %w", netErr))
	assert.Equal(t, DispatchConnection, err.Kind)
}

func TestClassifyDispatchErrorUnknown(t *testing.T) {
	err := classifyDispatchError(fmt.Errorf("452 insufficient system storage"))
	assert.Equal(t, DispatchUnknown, err.Kind)
}

func TestDispatchErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	derr := &DispatchError{Kind: DispatchUnknown, Err: cause}
	require.True(t, errors.Is(derr, cause))
	assert.Contains(t, derr.Error(), "unknown")
}

func TestNewSMTPMailerDefaults(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587})
	assert.Equal(t, uint64(3), m.cfg.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, m.cfg.BaseDelay)
	assert.Equal(t, 8*time.Second, m.cfg.MaxDelay)
}
