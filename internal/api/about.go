package api

import (
	"math"
	"runtime"
	"runtime/debug"

	"github.com/dustin/go-humanize"

	"grimm.is/wingwifi/internal/brand"
	"grimm.is/wingwifi/internal/session"
)

// aboutInfo fills the system information dialog of the API browser.
type aboutInfo struct {
	ControllerUser    string
	ControllerURL     string
	ControllerVersion string

	AppVersion  string
	GoVersion   string
	MemoryLimit string
	MemoryUsed  string
	Platform    string
}

func (s *Server) about(sess *session.Session) aboutInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	limit := "-"
	if l := debug.SetMemoryLimit(-1); l > 0 && l < math.MaxInt64 {
		limit = humanize.IBytes(uint64(l))
	}

	return aboutInfo{
		ControllerUser:    sess.Controller.User,
		ControllerURL:     sess.Controller.URL,
		ControllerVersion: sess.DetectedVersion,
		AppVersion:        brand.Version,
		GoVersion:         runtime.Version(),
		MemoryLimit:       limit,
		MemoryUsed:        humanize.IBytes(mem.HeapAlloc),
		Platform:          runtime.GOOS + "/" + runtime.GOARCH,
	}
}
