package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// Config holds the application configuration.
// Durations are configured as integer milliseconds (...Int fields) and converted
// by LoadConfig.
type Config struct {
	Flag       FlagConfig       `yaml:"-"`
	OutputPort OutputPortConfig `yaml:"output_port"`
	Pulse      PulseConfig      `yaml:"pulse"`
	Sequence   SequenceConfig   `yaml:"sequence"`
	Burst      BurstConfig      `yaml:"burst"`
	Debug      DebugConfig      `yaml:"debug"`
	Webserver  WebserverConfig  `yaml:"webserver"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	Version    bool
	Debug      string
	ConfigFile string
}

// OutputPortConfig defines the trigger port. The first configured transport which
// can be opened is used: parallel, gpio, serial.
type OutputPortConfig struct {
	Parallel *ParallelConfig `yaml:"parallel"`
	Gpio     *GpioConfig     `yaml:"gpio"`
	Serial   SerialConfig    `yaml:"serial"`
	// Emulate uses an emulated latched port instead of hardware.
	Emulate bool `yaml:"emulate"`
}

// ParallelConfig defines a PC parallel port, either by ppdev device or by I/O address.
type ParallelConfig struct {
	Address uint16 `yaml:"address"`
	Device  string `yaml:"device"`
}

// GpioConfig defines 8 raspberry pi lines, line i is bit i of the trigger.
type GpioConfig struct {
	Driver string `yaml:"driver"`
	Chip   string `yaml:"chip"`
	Lines  []int  `yaml:"lines"`
}

// SerialConfig defines the usb trigger interface. An empty device is found by vendor id.
type SerialConfig struct {
	Device   string   `yaml:"device"`
	BaudRate int      `yaml:"baudrate"`
	VIDs     []uint16 `yaml:"vids"`
}

// PulseConfig defines the latched pulse width.
type PulseConfig struct {
	Clear    time.Duration `yaml:"-"`
	ClearInt int           `yaml:"clear"`
}

// SequenceConfig defines the scripted trigger test. Without values the bit-walk is used.
type SequenceConfig struct {
	Interval    time.Duration `yaml:"-"`
	IntervalInt int           `yaml:"interval"`
	Settle      time.Duration `yaml:"-"`
	SettleInt   int           `yaml:"settle"`
	Terminal    int           `yaml:"terminal"`
	Values      []int         `yaml:"values"`
}

// BurstConfig defines the default burst campaign.
type BurstConfig struct {
	Pulses   int           `yaml:"pulses"`
	Intra    time.Duration `yaml:"-"`
	IntraInt int           `yaml:"intra"`
	Inter    time.Duration `yaml:"-"`
	InterInt int           `yaml:"inter"`
	Value    int           `yaml:"value"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	Topic      string `yaml:"topic"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Flag: FlagConfig{},
		OutputPort: OutputPortConfig{
			Serial: SerialConfig{
				BaudRate: 9600,
				VIDs:     []uint16{0x2341, 0x2a03, 0x1a86},
			},
		},
		Pulse: PulseConfig{ClearInt: 10},
		Sequence: SequenceConfig{
			IntervalInt: 250,
			SettleInt:   100,
			Terminal:    255,
		},
		Burst: BurstConfig{
			Pulses:   10,
			IntraInt: 1000,
			InterInt: 120000,
			Value:    255,
		},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"status":  true,
				"trigger": true,
				"metrics": true,
			},
		},
		MQTT: MQTTConfig{
			Topic: "triggertest/status",
		},
	}
}

func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.Debug != "" {
		c.Debug.FlagString = c.Flag.Debug
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	return c.setDurations()
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	// an empty file keeps the defaults
	if err = decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// setDurations converts and checks the timing and value settings.
func (c *Config) setDurations() error {
	switch {
	case c.Pulse.ClearInt <= 0:
		return fmt.Errorf("pulse clear must be positive: %d", c.Pulse.ClearInt)
	case c.Sequence.IntervalInt < 0, c.Sequence.SettleInt < 0:
		return fmt.Errorf("sequence interval and settle must not be negative")
	case c.Burst.Pulses <= 0, c.Burst.IntraInt <= 0, c.Burst.InterInt <= 0:
		return fmt.Errorf("burst pulses, intra and inter must be positive")
	}

	for _, v := range append([]int{c.Sequence.Terminal, c.Burst.Value}, c.Sequence.Values...) {
		if v < 0 || v > 255 {
			return fmt.Errorf("trigger value %d is out of range 0..255", v)
		}
	}

	c.Pulse.Clear = time.Duration(c.Pulse.ClearInt) * time.Millisecond
	c.Sequence.Interval = time.Duration(c.Sequence.IntervalInt) * time.Millisecond
	c.Sequence.Settle = time.Duration(c.Sequence.SettleInt) * time.Millisecond
	c.Burst.Intra = time.Duration(c.Burst.IntraInt) * time.Millisecond
	c.Burst.Inter = time.Duration(c.Burst.InterInt) * time.Millisecond
	return nil
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Debug.Flag = debug.Standard
	default:
		return fmt.Errorf("unknown log level %q", c.Debug.FlagString)
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
