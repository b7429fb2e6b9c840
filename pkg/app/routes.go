package app

import (
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// initDefaultRoutes initializes the applications routes.
//  Each group of web services can be switched off in the configuration.
func (app *App) initDefaultRoutes() {
	api := app.web.Group("/")
	if app.config.Webserver.Webservices["version"] {
		api.Get("/version", app.HandleVersion())
	}
	if app.config.Webserver.Webservices["health"] {
		api.Get("/health", app.HandleHealth())
	}
	if app.config.Webserver.Webservices["metrics"] {
		api.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
	if app.config.Webserver.Webservices["status"] {
		api.Get("/status", app.HandleStatus())
	}
	if app.config.Webserver.Webservices["trigger"] {
		t := app.web.Group("/trigger")
		t.Post("/sequence", app.HandleSequence())
		t.Post("/stop", app.HandleStop())
		t.Post("/max", app.HandleMax())
		t.Post("/send/:value", app.HandleSend())
		t.Post("/burst", app.HandleBurstStart())
		t.Delete("/burst", app.HandleBurstStop())
	}
}
