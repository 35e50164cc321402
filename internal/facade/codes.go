package facade

import (
	"context"
	"errors"

	"github.com/rmacdonaldsmith/dynchan-go/pkg/channel"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/inbound"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"

	ichannel "github.com/rmacdonaldsmith/dynchan-go/internal/channel"
)

// Code is the transport-neutral outcome of a control request
type Code int

const (
	CodeOK Code = iota
	CodeNotRegistered
	CodeNotOpen
	CodeTimeout
	CodeAlreadyRegistered
	CodeBusy
	CodeTooLarge
	CodeInvalidArgument
	CodeConnectFailed
	CodeRegistrationFailed
	CodeUnavailable
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeNotRegistered:
		return "not_registered"
	case CodeNotOpen:
		return "not_open"
	case CodeTimeout:
		return "timeout"
	case CodeAlreadyRegistered:
		return "already_registered"
	case CodeBusy:
		return "busy"
	case CodeTooLarge:
		return "too_large"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeConnectFailed:
		return "connect_failed"
	case CodeRegistrationFailed:
		return "registration_failed"
	case CodeUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// ErrInvalidArgument wraps malformed requests
var ErrInvalidArgument = errors.New("invalid argument")

// CodeOf maps an error returned by Service to its Code
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}

	var connectErr *channel.ConnectError
	var regErr *channel.RegistrationError
	switch {
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, linklayer.ErrInvalidAddress):
		return CodeInvalidArgument
	case errors.Is(err, channel.ErrNotRegistered), errors.Is(err, channel.ErrHelperClosed):
		return CodeNotRegistered
	case errors.Is(err, channel.ErrAlreadyRegistered):
		return CodeAlreadyRegistered
	case errors.Is(err, channel.ErrNotOpen):
		return CodeNotOpen
	case errors.Is(err, channel.ErrSendInFlight):
		return CodeBusy
	case errors.Is(err, channel.ErrPacketTooLarge):
		return CodeTooLarge
	case errors.Is(err, channel.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.As(err, &connectErr):
		return CodeConnectFailed
	case errors.As(err, &regErr):
		return CodeRegistrationFailed
	case errors.Is(err, inbound.ErrBridgeClosed), errors.Is(err, ichannel.ErrRegistryClosed),
		errors.Is(err, context.Canceled):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
