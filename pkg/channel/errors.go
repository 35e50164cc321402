package channel

import (
	"errors"
	"fmt"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

var (
	// ErrNotRegistered is returned when no helper exists for a service key
	ErrNotRegistered = errors.New("service not registered")
	// ErrAlreadyRegistered is returned when a key is enabled twice
	ErrAlreadyRegistered = errors.New("service already registered")
	// ErrNotOpen is returned when an operation needs an open channel and none is
	ErrNotOpen = errors.New("channel not open")
	// ErrTimeout is returned when a bounded wait expires. For Send the outcome
	// is unknown: the packet may still be transmitted.
	ErrTimeout = errors.New("timed out")
	// ErrSendInFlight is returned when a previous packet has not been taken yet
	ErrSendInFlight = errors.New("send already in flight")
	// ErrPacketTooLarge is returned when a payload exceeds the channel MTU
	ErrPacketTooLarge = errors.New("packet exceeds channel MTU")
	// ErrHelperClosed is returned by every operation after Destroy
	ErrHelperClosed = errors.New("helper closed")
)

// ConnectError reports a connection attempt the link layer refused
type ConnectError struct {
	Result linklayer.ConnectionResult
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connection failed: %s", e.Result)
}

// RegistrationError reports a failed service registration
type RegistrationError struct {
	Key    linklayer.ServiceKey
	Result linklayer.RegistrationResult
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration of %s failed: %s", e.Key, e.Result)
}

// ConnectResult extracts the link layer result from err. It returns
// ResultSuccess for a nil error and false when err carries no result.
func ConnectResult(err error) (linklayer.ConnectionResult, bool) {
	if err == nil {
		return linklayer.ResultSuccess, true
	}
	var ce *ConnectError
	if errors.As(err, &ce) {
		return ce.Result, true
	}
	return 0, false
}
