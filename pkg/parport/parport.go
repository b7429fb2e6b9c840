// Package parport writes the data lines of a PC parallel port.
//
// Two access methods are supported on linux: the ppdev driver (/dev/parport0),
// which needs no special privileges beyond the device permissions, and the raw
// I/O address (e.g. 0x378) through /dev/port, which needs root.
package parport

import (
	"errors"
	"fmt"
)

// DefaultDevice is the first ppdev device.
const DefaultDevice = "/dev/parport0"

// ErrUnsupported is returned on platforms without parallel port access.
var ErrUnsupported = errors.New("parallel port is not supported on this platform")

// Address is an I/O port address.
type Address uint16

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint16(a))
}
