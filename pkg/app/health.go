package app

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"triggertest/pkg/port"
)

// HandleHealth returns data about the health of myself and the bound trigger port.
// output example:
//  {"NumGoroutines":11,"HeapAllocatedBytes":332256360,"HeapAllocatedMB":316,"SysMemoryBytes":360290312,
//   "SysMemoryMB":343,"Version":"1.0.10+20261001","Port":"OK. Serial @ USB VID:PID=2341:0043","PortKind":"streaming"}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var lastError string
		var disconnected bool
		app.loop.Do(func() {
			for _, err := range []error{app.sequencer.Err(), app.burst.Err()} {
				if err != nil {
					lastError = err.Error()
					disconnected = disconnected || port.IsDisconnect(err)
				}
			}
		})

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		hab := m.Alloc
		smb := m.Sys

		healthData := struct {
			NumGoroutines      int
			NumCPU             int
			HeapAllocatedBytes uint64
			HeapAllocatedMB    uint64
			SysMemoryBytes     uint64
			SysMemoryMB        uint64
			Version            string
			ProgLang           string
			HostName           string
			Time               string
			Port               string
			PortKind           string
			LastError          string
			PortDisconnected   bool
		}{
			NumGoroutines:      runtime.NumGoroutine(),
			NumCPU:             runtime.NumCPU(),
			HeapAllocatedBytes: hab,
			HeapAllocatedMB:    bToMb(hab),
			SysMemoryBytes:     smb,
			SysMemoryMB:        bToMb(smb),
			ProgLang:           runtime.Version(),
			Version:            VERSION,
			HostName:           host,
			Time:               time.Now().Format(time.RFC3339),
			Port:               app.portStatus,
			PortKind:           app.port.Kind().String(),
			LastError:          lastError,
			PortDisconnected:   disconnected,
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}
