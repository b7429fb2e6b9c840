package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/womat/debug"

	"triggertest/pkg/app/config"
	"triggertest/pkg/discovery"
	"triggertest/pkg/parport"
	"triggertest/pkg/port"
	"triggertest/pkg/raspberry"
)

// openPort binds the trigger port: parallel if configured, then gpio if configured,
// then the usb serial interface. Failures of the latched ports are logged and the
// next transport is tried. The returned string describes the bound port.
func (app *App) openPort() (port.Port, string, error) {
	c := app.config.OutputPort
	clearDelay := app.config.Pulse.Clear

	if c.Emulate {
		return port.NewLatch(raspberry.NewEmuBank(), app.loop, clearDelay), "OK. Emulated", nil
	}

	if c.Parallel != nil {
		lines, desc, err := openParallel(*c.Parallel)
		if err == nil {
			return port.NewLatch(lines, app.loop, clearDelay), desc, nil
		}
		debug.ErrorLog.Printf("cannot initialize parallel port %+v: %v", *c.Parallel, err)
	}

	if c.Gpio != nil {
		lines, desc, err := openGpio(*c.Gpio)
		if err == nil {
			return port.NewLatch(lines, app.loop, clearDelay), desc, nil
		}
		debug.ErrorLog.Printf("cannot initialize gpio lines %v: %v", c.Gpio.Lines, err)
	}

	p, desc, err := openSerial(c.Serial)
	if err != nil {
		debug.ErrorLog.Printf("cannot initialize serial port: %v", err)
		return nil, "", fmt.Errorf("%w: %v", port.ErrPortUnavailable, err)
	}
	return p, desc, nil
}

func openParallel(c config.ParallelConfig) (port.Lines, string, error) {
	switch {
	case c.Device != "":
		p, err := parport.OpenPPDev(c.Device)
		if err != nil {
			return nil, "", err
		}
		return p, "OK. Parallel @ " + c.Device, nil

	case c.Address != 0:
		a := parport.Address(c.Address)
		p, err := parport.OpenIOPort(a)
		if err != nil {
			return nil, "", err
		}
		return p, "OK. Parallel @ " + a.String(), nil

	default:
		return nil, "", errors.New("parallel port needs a device or an address")
	}
}

// chipLines releases the chip together with its lines.
type chipLines struct {
	*raspberry.Bank
	chip *raspberry.Chip
}

func (c chipLines) Close() error {
	err := c.Bank.Close()
	_ = c.chip.Close()
	return err
}

func openGpio(c config.GpioConfig) (port.Lines, string, error) {
	switch c.Driver {
	case "", "gpiod":
		name := c.Chip
		if name == "" {
			name = "gpiochip0"
		}

		chip, err := raspberry.OpenChip(name)
		if err != nil {
			return nil, "", err
		}
		bank, err := chip.NewBank(c.Lines)
		if err != nil {
			_ = chip.Close()
			return nil, "", err
		}
		return chipLines{Bank: bank, chip: chip}, fmt.Sprintf("OK. Gpio @ %s %v", name, c.Lines), nil

	case "gpiomem":
		bank, err := raspberry.OpenMemBank(c.Lines)
		if err != nil {
			return nil, "", err
		}
		return bank, fmt.Sprintf("OK. Gpio @ gpiomem %v", c.Lines), nil

	default:
		return nil, "", fmt.Errorf("%w: unknown gpio driver %q", raspberry.ErrInvalidParam, c.Driver)
	}
}

func openSerial(c config.SerialConfig) (port.Port, string, error) {
	device, hwid := c.Device, c.Device

	if device == "" {
		vids := c.VIDs
		if len(vids) == 0 {
			vids = discovery.DefaultVendorIDs
		}

		candidates, err := discovery.Find(vids)
		if err != nil {
			return nil, "", err
		}
		selected, err := discovery.Select(candidates, os.Stdin, os.Stdout)
		if err != nil {
			return nil, "", err
		}
		device, hwid = selected.Device, selected.HWID()
	}

	debug.InfoLog.Printf("using port %s %s", device, hwid)
	p, err := port.OpenSerial(device, c.BaudRate)
	if err != nil {
		return nil, "", err
	}
	return p, "OK. Serial @ " + hwid, nil
}
