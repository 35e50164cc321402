package linklayer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ServiceKey identifies a logical channel endpoint on a shared link
// (the protocol/service multiplexor, PSM on LE links).
type ServiceKey uint16

// String formats the key as hex, the way it is usually written down.
func (k ServiceKey) String() string {
	return fmt.Sprintf("0x%04x", uint16(k))
}

// ParseServiceKey accepts decimal ("4097") or hex ("0x1001") notation.
func ParseServiceKey(s string) (ServiceKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("service key cannot be empty")
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid service key %q: %w", s, err)
	}
	return ServiceKey(v), nil
}

// AddressType distinguishes public device addresses from random ones.
type AddressType int

const (
	PublicDeviceAddress AddressType = iota
	RandomDeviceAddress
)

func (t AddressType) String() string {
	switch t {
	case PublicDeviceAddress:
		return "public"
	case RandomDeviceAddress:
		return "random"
	default:
		return "unknown"
	}
}

// Address is a 48-bit device address with its type.
type Address struct {
	Bytes [6]byte
	Type  AddressType
}

// ErrInvalidAddress is returned when an address string cannot be parsed.
var ErrInvalidAddress = errors.New("invalid device address")

// ParseAddress parses "AA:BB:CC:DD:EE:FF" (most significant byte first).
func ParseAddress(s string, t AddressType) (Address, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 6 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	var addr Address
	for i, p := range parts {
		if len(p) != 2 {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		addr.Bytes[i] = byte(b)
	}
	addr.Type = t
	return addr, nil
}

// MustParseAddress is ParseAddress for literals; it panics on bad input.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s, RandomDeviceAddress)
	if err != nil {
		panic(err)
	}
	return addr
}

// String returns the colon separated form without the type.
func (a Address) String() string {
	b := a.Bytes
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a.Bytes == [6]byte{}
}

// ConnectionResult is the LE credit based connection response result.
// Values are passed through to control clients verbatim.
type ConnectionResult uint16

const (
	ResultSuccess                       ConnectionResult = 0x0000
	ResultPSMNotSupported               ConnectionResult = 0x0002
	ResultNoResourcesAvailable          ConnectionResult = 0x0004
	ResultInsufficientAuthentication    ConnectionResult = 0x0005
	ResultInsufficientAuthorization     ConnectionResult = 0x0006
	ResultInsufficientEncryptionKeySize ConnectionResult = 0x0007
	ResultInsufficientEncryption        ConnectionResult = 0x0008
	ResultInvalidSourceCID              ConnectionResult = 0x0009
	ResultSourceCIDAlreadyAllocated     ConnectionResult = 0x000A
	ResultUnacceptableParameters        ConnectionResult = 0x000B
)

func (r ConnectionResult) String() string {
	switch r {
	case ResultSuccess:
		return "Success"
	case ResultPSMNotSupported:
		return "PSMNotSupported"
	case ResultNoResourcesAvailable:
		return "NoResourcesAvailable"
	case ResultInsufficientAuthentication:
		return "InsufficientAuthentication"
	case ResultInsufficientAuthorization:
		return "InsufficientAuthorization"
	case ResultInsufficientEncryptionKeySize:
		return "InsufficientEncryptionKeySize"
	case ResultInsufficientEncryption:
		return "InsufficientEncryption"
	case ResultInvalidSourceCID:
		return "InvalidSourceCID"
	case ResultSourceCIDAlreadyAllocated:
		return "SourceCIDAlreadyAllocated"
	case ResultUnacceptableParameters:
		return "UnacceptableParameters"
	default:
		return fmt.Sprintf("ConnectionResult(0x%04x)", uint16(r))
	}
}

// RegistrationResult reports the outcome of RegisterService.
type RegistrationResult int

const (
	RegistrationSuccess RegistrationResult = iota
	RegistrationFailDuplicateService
	RegistrationFailInvalidService
)

func (r RegistrationResult) String() string {
	switch r {
	case RegistrationSuccess:
		return "Success"
	case RegistrationFailDuplicateService:
		return "DuplicateService"
	case RegistrationFailInvalidService:
		return "InvalidService"
	default:
		return "Unknown"
	}
}

// DisconnectReason is delivered with a channel's close notification.
type DisconnectReason int

const (
	LocalHostTerminated DisconnectReason = iota
	RemoteUserTerminated
	ConnectionTimeout
)

func (r DisconnectReason) String() string {
	switch r {
	case LocalHostTerminated:
		return "LocalHostTerminated"
	case RemoteUserTerminated:
		return "RemoteUserTerminated"
	case ConnectionTimeout:
		return "ConnectionTimeout"
	default:
		return "Unknown"
	}
}
