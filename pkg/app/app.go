package app

import (
	"net/url"
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"triggertest/pkg/app/config"
	"triggertest/pkg/loop"
	"triggertest/pkg/mqtt"
	"triggertest/pkg/port"
	"triggertest/pkg/trigger"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// loop runs every trigger operation and timer callback, it's the only writer of the port
	loop *loop.Loop

	// port is the bound trigger port and portStatus describes it
	port       port.Port
	portStatus string

	// sequencer and burst are owned by the loop goroutine
	sequencer *trigger.Sequencer
	burst     *trigger.Burst

	// status holds the current status line
	status *statusHub

	// running is set once the loop goroutine is started
	running bool

	// shutdown signals application shutdown
	shutdown  chan struct{}
	closeOnce sync.Once
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:  fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt: mqtt.New(),
		loop: loop.New(),

		shutdown: make(chan struct{}),
	}, nil
}

// Run starts the application.
func (app *App) Run() error {
	app.running = true
	go app.loop.Run()

	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()

	return nil
}

// init binds the port and initializes the application.
func (app *App) init() error {
	p, desc, err := app.openPort()
	if err != nil {
		return err
	}
	debug.InfoLog.Printf("port: %s", desc)

	if err = app.bind(p, desc); err != nil {
		_ = p.Close()
		return err
	}

	hostname, _ := os.Hostname()
	if err = app.mqtt.Connect(app.config.MQTT.Connection, MODULE+"-"+hostname); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should be always called last because it may access things
	// like app.sequencer which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// bind builds the sequencer and the burst scheduler on top of the port.
func (app *App) bind(p port.Port, desc string) error {
	app.port = p
	app.portStatus = desc
	app.status = newStatusHub(p.Kind().String(), app.config.MQTT.Topic, app.mqtt)

	s, err := trigger.New(p, app.loop, app.status, app.plan())
	if err != nil {
		return err
	}
	b, err := trigger.NewBurst(s, app.loop, app.status)
	if err != nil {
		return err
	}

	app.sequencer, app.burst = s, b
	return nil
}

// plan builds the scripted sequence from the configuration.
func (app *App) plan() trigger.Plan {
	c := app.config.Sequence

	var p trigger.Plan
	if len(c.Values) == 0 {
		p = trigger.BitWalk(c.Interval, byte(c.Terminal))
	} else {
		values := make([]byte, len(c.Values))
		for i, v := range c.Values {
			values[i] = byte(v)
		}
		p = trigger.Values(c.Interval, values...)
	}

	p.Settle = c.Settle
	return p
}

// defaultBurst returns the configured burst campaign.
func (app *App) defaultBurst() trigger.BurstPlan {
	c := app.config.Burst
	return trigger.BurstPlan{
		Pulses: c.Pulses,
		Intra:  c.Intra,
		Inter:  c.Inter,
		Value:  byte(c.Value),
	}
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/triggertest.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

func (app *App) signalShutdown() {
	app.closeOnce.Do(func() { close(app.shutdown) })
}

// Close stops all running triggers and releases the port.
func (app *App) Close() error {
	if app.web != nil {
		_ = app.web.Shutdown()
	}

	if app.running {
		app.loop.Do(func() {
			if app.burst != nil {
				app.burst.Stop()
			}
			if app.sequencer != nil {
				app.sequencer.Stop()
			}
		})
		_ = app.loop.Close()
	}

	if app.port != nil {
		_ = app.port.Close()
	}

	if app.mqtt != nil {
		if app.running {
			close(app.mqtt.C)
		}
		_ = app.mqtt.Disconnect()
	}
	return nil
}
