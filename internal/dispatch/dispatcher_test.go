package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grimm.is/wingwifi/internal/clock"
	"grimm.is/wingwifi/internal/unifi"
)

type mockController struct {
	mock.Mock
}

func (m *mockController) Do(ctx context.Context, r unifi.Request) (unifi.Records, error) {
	args := m.Called(ctx, r)
	records, _ := args.Get(0).(unifi.Records)
	return records, args.Error(1)
}

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newDispatcher(ctl Controller) *Dispatcher {
	return New(ctl, clock.NewMockClock(now), nil)
}

func TestDispatch_ListSitesUsesCache(t *testing.T) {
	ctl := new(mockController)
	sites := []unifi.Site{{Name: "default"}, {Name: "b"}, {Name: "c"}}

	res := newDispatcher(ctl).Dispatch(context.Background(), "list_sites", sites)

	assert.Equal(t, 3, res.Count)
	assert.Equal(t, sites, res.Payload)
	assert.False(t, res.Empty)
	ctl.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestDispatch_Success(t *testing.T) {
	ctl := new(mockController)
	ctl.On("Do", mock.Anything, unifi.ListClients()).
		Return(unifi.Records{map[string]any{"mac": "aa"}, map[string]any{"mac": "bb"}}, nil)

	res := newDispatcher(ctl).Dispatch(context.Background(), "list_clients", nil)

	require.NoError(t, res.Err)
	assert.Equal(t, "Online clients", res.Label)
	assert.Equal(t, 2, res.Count)
	ctl.AssertExpectations(t)
}

func TestDispatch_TimeWindowUsesClock(t *testing.T) {
	ctl := new(mockController)
	ctl.On("Do", mock.Anything, unifi.StatSessions(now)).Return(unifi.Records{}, nil)

	res := newDispatcher(ctl).Dispatch(context.Background(), "stat_sessions", nil)

	assert.True(t, res.Empty)
	assert.Equal(t, 0, res.Count)
	ctl.AssertExpectations(t)
}

func TestDispatch_FailureIsEmptyResult(t *testing.T) {
	ctl := new(mockController)
	ctl.On("Do", mock.Anything, mock.Anything).
		Return(nil, &unifi.APIError{Path: "stat/device", Status: 500})

	res := newDispatcher(ctl).Dispatch(context.Background(), "list_devices", nil)

	assert.True(t, res.Failed())
	assert.True(t, res.Empty)
	assert.Nil(t, res.Payload)
	assert.True(t, errors.Is(res.Err, unifi.ErrRequestFailed))
	assert.Equal(t, "Devices", res.Label)
}

func TestDispatch_UnknownIsNoop(t *testing.T) {
	ctl := new(mockController)
	d := newDispatcher(ctl)

	for _, name := range []string{"", "drop_tables", "LIST_CLIENTS"} {
		res := d.Dispatch(context.Background(), name, nil)
		assert.True(t, res.Empty)
		assert.NoError(t, res.Err)
		assert.Empty(t, res.Label)
	}
	ctl.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestActionTable(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range Actions() {
		assert.False(t, seen[a.Name], "duplicate action %s", a.Name)
		seen[a.Name] = true
		assert.NotEmpty(t, a.Label, a.Name)
		assert.Contains(t, Groups, a.Group, a.Name)
		if a.Name != "list_sites" {
			assert.False(t, a.Cached(), a.Name)
		}
	}
	assert.Len(t, seen, 52)
}

func menuNames(menu []MenuGroup) map[string]bool {
	names := map[string]bool{}
	for _, g := range menu {
		for _, a := range g.Actions {
			names[a.Name] = true
		}
	}
	return names
}

func TestMenu_VersionGates(t *testing.T) {
	tests := []struct {
		version string
		offered []string
		hidden  []string
	}{
		{unifi.VersionUndetected, []string{"list_clients", "list_sites"}, []string{"list_tags", "stat_sites", "list_hourly_dashboard"}},
		{"5.4.18", []string{"stat_sites", "list_5minutes_dashboard"}, []string{"list_tags", "stat_daily_gateway"}},
		{"5.5.0", []string{"list_tags"}, []string{"list_radius_accounts"}},
		{"5.8.0", []string{"stat_hourly_gateway", "list_radius_profiles"}, []string{"stat_ips_events"}},
		{"5.10.21", []string{"stat_ips_events"}, nil},
	}
	for _, tt := range tests {
		names := menuNames(Menu(tt.version))
		for _, n := range tt.offered {
			assert.True(t, names[n], "%s should be offered on %s", n, tt.version)
		}
		for _, n := range tt.hidden {
			assert.False(t, names[n], "%s should be hidden on %s", n, tt.version)
		}
	}
}

func TestMenu_GroupOrder(t *testing.T) {
	menu := Menu("6.0.0")
	require.Len(t, menu, len(Groups))
	for i, g := range menu {
		assert.Equal(t, Groups[i], g.Group)
	}
}
