// Package dispatch maps action names to controller endpoint calls.
package dispatch

import (
	"context"

	"github.com/samber/lo"

	"grimm.is/wingwifi/internal/clock"
	"grimm.is/wingwifi/internal/logging"
	"grimm.is/wingwifi/internal/unifi"
)

// Controller performs one endpoint call. *unifi.Client implements it.
type Controller interface {
	Do(ctx context.Context, r unifi.Request) (unifi.Records, error)
}

// Result is the outcome of one dispatched action.
type Result struct {
	Action  string
	Label   string
	Payload any
	Count   int
	// Empty is set when there is nothing to show, including failed calls.
	Empty bool
	Err   error
}

// Failed reports whether the controller call failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Lookup returns the action registered under name.
func Lookup(name string) (Action, bool) {
	a, ok := byName[name]
	return a, ok
}

// Actions returns all actions in menu order.
func Actions() []Action {
	return append([]Action(nil), actions...)
}

// MenuGroup is one section of the action dropdown.
type MenuGroup struct {
	Group   Group
	Actions []Action
}

// Menu returns the actions offered for a controller version, grouped.
// Gated actions are hidden unless version satisfies their minimum.
func Menu(version string) []MenuGroup {
	offered := lo.Filter(actions, func(a Action, _ int) bool {
		return a.MinVersion == "" || unifi.AtLeast(version, a.MinVersion)
	})
	grouped := lo.GroupBy(offered, func(a Action) Group { return a.Group })

	menu := make([]MenuGroup, 0, len(Groups))
	for _, g := range Groups {
		if items := grouped[g]; len(items) > 0 {
			menu = append(menu, MenuGroup{Group: g, Actions: items})
		}
	}
	return menu
}

// Dispatcher runs actions against a controller.
type Dispatcher struct {
	ctl    Controller
	clock  clock.Clock
	logger *logging.Logger
}

// New creates a Dispatcher.
func New(ctl Controller, clk clock.Clock, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.WithComponent("dispatch")
	}
	return &Dispatcher{ctl: ctl, clock: clock.OrDefault(clk), logger: logger}
}

// Dispatch runs the named action. Unknown and empty names yield an empty
// result without error. sites is the session's cached site list.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, sites []unifi.Site) Result {
	action, ok := Lookup(name)
	if !ok {
		return Result{Action: name, Empty: true}
	}

	res := Result{Action: name, Label: action.Label}
	if action.Cached() {
		res.Payload = sites
		res.Count = len(sites)
		res.Empty = len(sites) == 0
		return res
	}

	records, err := d.ctl.Do(ctx, action.request(d.clock.Now()))
	if err != nil {
		d.logger.Warn("action failed", "action", name, "error", err)
		res.Err = err
		res.Empty = true
		return res
	}
	res.Payload = records
	res.Count = len(records)
	res.Empty = len(records) == 0
	return res
}
