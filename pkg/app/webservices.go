package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"triggertest/pkg/port"
	"triggertest/pkg/trigger"
)

// statusResponse is the answer of every trigger web service.
type statusResponse struct {
	Status string        `json:"status"`
	State  string        `json:"state"`
	Port   string        `json:"port"`
	Burst  burstResponse `json:"burst"`
	Error  string        `json:"error,omitempty"`
}

type burstResponse struct {
	Active bool `json:"active"`
	Pulses int  `json:"pulses"`
	Total  int  `json:"total"`
	Bursts int  `json:"bursts"`
}

// burstRequest overwrites the configured burst campaign, durations in ms.
type burstRequest struct {
	Pulses *int `json:"pulses"`
	Intra  *int `json:"intra"`
	Inter  *int `json:"inter"`
	Value  *int `json:"value"`
}

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
	app.signalShutdown()
}

// snapshot reads the state, it must run on the loop.
func (app *App) snapshot() statusResponse {
	pulses, bursts := app.burst.Progress()
	return statusResponse{
		Status: app.status.Text(),
		State:  app.sequencer.State().String(),
		Port:   app.portStatus,
		Burst: burstResponse{
			Active: app.burst.Active(),
			Pulses: pulses,
			Total:  app.burst.Plan().Pulses,
			Bursts: bursts,
		},
	}
}

// operation runs op on the loop and answers with the state after op.
func (app *App) operation(ctx *fiber.Ctx, name string, op func() error) error {
	debug.InfoLog.Printf("web request %s", name)

	var err error
	var resp statusResponse
	if !app.loop.Do(func() {
		err = op()
		resp = app.snapshot()
	}) {
		return ctx.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "shutting down"})
	}

	switch {
	case err == nil:
		ctx.Status(http.StatusOK)
	case errors.Is(err, port.ErrInvalidInput):
		ctx.Status(http.StatusBadRequest)
		resp.Error = err.Error()
	default:
		ctx.Status(http.StatusInternalServerError)
		resp.Error = err.Error()
	}
	return ctx.JSON(resp)
}

// HandleStatus returns the status line and the state.
func (app *App) HandleStatus() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return app.operation(ctx, "status", func() error { return nil })
	}
}

// HandleSequence starts the scripted sequence.
func (app *App) HandleSequence() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return app.operation(ctx, "sequence", func() error {
			app.sequencer.StartSequence()
			return nil
		})
	}
}

// HandleStop stops the scripted sequence.
func (app *App) HandleStop() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return app.operation(ctx, "stop", func() error {
			app.sequencer.Stop()
			return nil
		})
	}
}

// HandleMax sends a single 255 trigger.
func (app *App) HandleMax() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return app.operation(ctx, "max", app.sequencer.SendMax)
	}
}

// HandleSend sends the trigger value of the path parameter.
// An invalid value is reported before anything runs on the loop.
func (app *App) HandleSend() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		v, err := port.ParseValue(ctx.Params("value"))
		if err != nil {
			return app.operation(ctx, "send", func() error { return err })
		}

		return app.operation(ctx, "send", func() error {
			return app.sequencer.SendImmediate(v)
		})
	}
}

// HandleBurstStart starts a burst campaign. Fields of the json body overwrite the
// configured campaign.
func (app *App) HandleBurstStart() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		plan, err := app.parseBurst(ctx)
		if err != nil {
			return app.operation(ctx, "burst", func() error { return err })
		}

		return app.operation(ctx, "burst", func() error {
			if err := app.burst.Start(plan); err != nil {
				return fmt.Errorf("%w: %v", port.ErrInvalidInput, err)
			}
			return nil
		})
	}
}

// HandleBurstStop stops the burst campaign.
func (app *App) HandleBurstStop() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return app.operation(ctx, "burst stop", func() error {
			app.burst.Stop()
			return nil
		})
	}
}

func (app *App) parseBurst(ctx *fiber.Ctx) (trigger.BurstPlan, error) {
	plan := app.defaultBurst()
	if len(ctx.Body()) == 0 {
		return plan, nil
	}

	var req burstRequest
	if err := ctx.BodyParser(&req); err != nil {
		return plan, fmt.Errorf("%w: %v", port.ErrInvalidInput, err)
	}

	if req.Pulses != nil {
		plan.Pulses = *req.Pulses
	}
	if req.Intra != nil {
		plan.Intra = time.Duration(*req.Intra) * time.Millisecond
	}
	if req.Inter != nil {
		plan.Inter = time.Duration(*req.Inter) * time.Millisecond
	}
	if req.Value != nil {
		if *req.Value < 0 || *req.Value > 255 {
			return plan, fmt.Errorf("%w: %d is out of range 0..255", port.ErrInvalidInput, *req.Value)
		}
		plan.Value = byte(*req.Value)
	}

	if err := plan.Validate(); err != nil {
		return plan, fmt.Errorf("%w: %v", port.ErrInvalidInput, err)
	}
	return plan, nil
}
