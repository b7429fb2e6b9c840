package port

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the baud rate of the usb trigger interfaces.
const DefaultBaudRate = 9600

// OpenSerial opens a serial device as Streaming port.
func OpenSerial(device string, baudRate int) (*StreamPort, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("can't open serial port %s: %w", device, err)
	}
	return NewStream(p), nil
}
