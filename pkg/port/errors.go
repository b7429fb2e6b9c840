package port

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

var (
	// ErrPortUnavailable reports that no transport could be bound at startup.
	ErrPortUnavailable = errors.New("no port found")
	// ErrInvalidInput reports a trigger value that isn't an integer between 0 and 255.
	ErrInvalidInput = errors.New("invalid trigger value")
	// ErrWrite reports a failed transport write.
	ErrWrite = errors.New("transport write failure")
)

// IsFatal reports whether err stops the current operation for good.
// Input errors are recoverable and leave the sequencer untouched.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPortUnavailable) || errors.Is(err, ErrWrite)
}

// IsDisconnect reports whether err indicates that the device was unplugged.
func IsDisconnect(err error) bool {
	if err == nil {
		return false
	}

	var portErrPtr *serial.PortError
	if errors.As(err, &portErrPtr) {
		return isDisconnectCode(portErrPtr.Code())
	}
	var portErr serial.PortError
	if errors.As(err, &portErr) {
		return isDisconnectCode(portErr.Code())
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "no such device") ||
		strings.Contains(s, "input/output error") ||
		strings.Contains(s, "broken pipe")
}

func isDisconnectCode(code serial.PortErrorCode) bool {
	switch code {
	case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
		return true
	default:
		return false
	}
}

// ParseValue parses a trigger value typed by a user.
func ParseValue(s string) (byte, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, s)
	}
	if v < 0 || v > 255 {
		return 0, fmt.Errorf("%w: %d is out of range 0..255", ErrInvalidInput, v)
	}
	return byte(v), nil
}
