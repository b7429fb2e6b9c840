// Package discovery finds usb trigger interfaces among the serial ports.
package discovery

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/womat/debug"
	"go.bug.st/serial/enumerator"
)

// DefaultVendorIDs are the usb vendor ids of known trigger interfaces:
// Arduino LLC, Arduino SRL and QinHeng (CH340).
var DefaultVendorIDs = []uint16{0x2341, 0x2a03, 0x1a86}

// ErrNotFound is returned if no port matches.
var ErrNotFound = errors.New("no matching ports found")

// Candidate is a serial port of a matching usb device.
type Candidate struct {
	Device       string
	VID          uint16
	PID          string
	SerialNumber string
	Product      string
}

// HWID describes the usb device like the os tools do.
func (c Candidate) HWID() string {
	s := fmt.Sprintf("USB VID:PID=%04X:%s", c.VID, strings.ToUpper(c.PID))
	if c.SerialNumber != "" {
		s += " SER=" + c.SerialNumber
	}
	return s
}

// Find lists the serial ports of usb devices with one of the vendor ids.
func Find(vids []uint16) ([]Candidate, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	return filter(ports, vids), nil
}

func filter(ports []*enumerator.PortDetails, vids []uint16) []Candidate {
	var c []Candidate

	for _, p := range ports {
		if !p.IsUSB {
			continue
		}

		vid, err := strconv.ParseUint(p.VID, 16, 16)
		if err != nil {
			debug.DebugLog.Printf("port %s: invalid vid %q", p.Name, p.VID)
			continue
		}

		for _, v := range vids {
			if uint16(vid) == v {
				c = append(c, Candidate{
					Device:       p.Name,
					VID:          v,
					PID:          p.PID,
					SerialNumber: p.SerialNumber,
					Product:      p.Product,
				})
				break
			}
		}
	}
	return c
}

// Select returns the only candidate, or asks on in/out which one to use.
func Select(c []Candidate, in io.Reader, out io.Writer) (Candidate, error) {
	switch len(c) {
	case 0:
		return Candidate{}, ErrNotFound
	case 1:
		return c[0], nil
	}

	_, _ = fmt.Fprintln(out, "Multiple matching ports found. Please select one:")
	for i, p := range c {
		_, _ = fmt.Fprintf(out, "%d: %s (%s)\n", i, p.Device, p.Product)
	}
	_, _ = fmt.Fprint(out, "Enter port number: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return Candidate{}, fmt.Errorf("no port selected: %w", err)
	}

	i, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || i < 0 || i >= len(c) {
		return Candidate{}, fmt.Errorf("invalid port number %q", strings.TrimSpace(line))
	}
	return c[i], nil
}
