package discovery

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.bug.st/serial/enumerator"
)

func testPorts() []*enumerator.PortDetails {
	return []*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043", SerialNumber: "A1", Product: "Arduino Uno"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "FT232R"},
		{Name: "/dev/ttyUSB1", IsUSB: true, VID: "1a86", PID: "7523", Product: "USB Serial"},
		{Name: "/dev/ttyUSB2", IsUSB: true, VID: "zz"},
	}
}

func TestFilter(t *testing.T) {
	c := filter(testPorts(), DefaultVendorIDs)

	if len(c) != 2 {
		t.Fatalf("expected 2 candidates, got %v", c)
	}
	if c[0].Device != "/dev/ttyACM0" || c[1].Device != "/dev/ttyUSB1" {
		t.Errorf("unexpected candidates %v", c)
	}
	if got := c[0].HWID(); got != "USB VID:PID=2341:0043 SER=A1" {
		t.Errorf("unexpected hwid %q", got)
	}
}

func TestSelect(t *testing.T) {
	c := filter(testPorts(), DefaultVendorIDs)

	if _, err := Select(nil, strings.NewReader(""), &bytes.Buffer{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	one, err := Select(c[:1], strings.NewReader(""), &bytes.Buffer{})
	if err != nil || one.Device != "/dev/ttyACM0" {
		t.Errorf("expected the only candidate, got %v, %v", one, err)
	}

	var out bytes.Buffer
	picked, err := Select(c, strings.NewReader("1\n"), &out)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if picked.Device != "/dev/ttyUSB1" {
		t.Errorf("expected /dev/ttyUSB1, got %s", picked.Device)
	}
	if !strings.Contains(out.String(), "1: /dev/ttyUSB1 (USB Serial)") {
		t.Errorf("expected the candidates to be listed, got %q", out.String())
	}

	if _, err = Select(c, strings.NewReader("7\n"), &bytes.Buffer{}); err == nil {
		t.Error("expected an error for an out of range selection")
	}
}
