package unifi

import (
	"net/http"
	"time"
)

// Report attributes for site and access point history.
var (
	SiteReportAttrs = []string{"bytes", "wan-tx_bytes", "wan-rx_bytes", "wlan_bytes", "num_sta", "lan-num_sta", "wlan-num_sta", "time"}
	APReportAttrs   = []string{"bytes", "num_sta", "time"}
	GatewayAttrs    = []string{
		"time", "mem", "cpu", "loadavg_5",
		"lan-rx_errors", "lan-tx_errors", "lan-rx_bytes", "lan-tx_bytes",
		"lan-rx_packets", "lan-tx_packets", "lan-rx_dropped", "lan-tx_dropped",
	}
)

// Report intervals and their default look-back windows.
const (
	Interval5Minutes = "5minutes"
	IntervalHourly   = "hourly"
	IntervalDaily    = "daily"
)

var reportWindow = map[string]time.Duration{
	Interval5Minutes: 12 * time.Hour,
	IntervalHourly:   7 * 24 * time.Hour,
	IntervalDaily:    52 * 7 * 24 * time.Hour,
}

func get(path string) Request {
	return Request{Method: http.MethodGet, Path: path}
}

func post(path string, payload any) Request {
	return Request{Method: http.MethodPost, Path: path, Payload: payload}
}

func ms(t time.Time) int64 {
	return t.UnixMilli()
}

// Report returns a statistics report request ending at now.
// kind is "site", "ap" or "gw".
func Report(interval, kind string, attrs []string, now time.Time) Request {
	window, ok := reportWindow[interval]
	if !ok {
		window = reportWindow[IntervalHourly]
	}
	return post("stat/report/"+interval+"."+kind, map[string]any{
		"attrs": attrs,
		"start": ms(now.Add(-window)),
		"end":   ms(now),
	})
}

// Clients and users.

func ListClients() Request { return get("stat/sta") }

func StatAllUsers() Request {
	return post("stat/alluser", map[string]any{"type": "all", "conn": "all", "within": 8760})
}

func StatAuths(now time.Time) Request {
	return post("stat/authorization", map[string]any{
		"start": now.Add(-7 * 24 * time.Hour).Unix(),
		"end":   now.Unix(),
	})
}

func ListGuests() Request { return post("stat/guest", map[string]any{"within": 8760}) }

func ListUserGroups() Request { return get("list/usergroup") }

func StatSessions(now time.Time) Request {
	return post("stat/session", map[string]any{
		"type":  "all",
		"start": now.Add(-7 * 24 * time.Hour).Unix(),
		"end":   now.Unix(),
	})
}

func ListUsers() Request { return get("list/user") }

// Devices.

func ListDevices() Request { return get("stat/device") }
func ListTags() Request { return get("rest/tag") }
func ListWLANGroups() Request { return get("list/wlangroup") }
func ListRogueAPs() Request { return post("stat/rogueap", map[string]any{"within": 24}) }
func ListKnownRogueAPs() Request { return get("rest/rogueknown") }

// Statistics and system.

func StatSysinfo() Request { return get("stat/sysinfo") }
func ListHealth() Request { return get("stat/health") }

func Dashboard(fiveMinutes bool) Request {
	if fiveMinutes {
		return get("stat/dashboard?scale=5minutes")
	}
	return get("stat/dashboard")
}

func ListSelf() Request { return get("self") }
func ListSites() Request { return Request{Method: http.MethodGet, Path: "/api/self/sites", Global: true} }
func StatSites() Request { return Request{Method: http.MethodGet, Path: "/api/stat/sites", Global: true} }
func ListAdmins() Request { return post("cmd/sitemgr", map[string]any{"cmd": "get-admins"}) }
func ListCountryCodes() Request { return get("stat/ccode") }
func ListBackups() Request { return post("cmd/backup", map[string]any{"cmd": "list-backups"}) }

func StatIPSEvents(now time.Time) Request {
	return post("stat/ips/event", map[string]any{
		"start":  ms(now.Add(-24 * time.Hour)),
		"end":    ms(now),
		"_limit": 10000,
	})
}

// Hotspot.

func StatVouchers() Request { return get("stat/voucher") }

func StatVouchersCreatedAt(createTime int64) Request {
	return post("stat/voucher", map[string]any{"create_time": createTime})
}

func StatPayments() Request { return get("stat/payment") }
func ListHotspotOps() Request { return get("list/hotspotop") }

func CreateVoucher(spec VoucherSpec) Request { return post("cmd/hotspot", spec.payload()) }

func RevokeVoucher(id string) Request {
	return post("cmd/hotspot", map[string]any{"cmd": "delete-voucher", "_id": id})
}

// Configuration.

func ListWLANConf() Request { return get("list/wlanconf") }
func ListSettings() Request { return get("get/setting") }
func ListExtensions() Request { return get("list/extension") }
func ListPortConf() Request { return get("list/portconf") }
func ListNetworkConf() Request { return get("rest/networkconf") }
func ListDynamicDNS() Request { return get("rest/dynamicdns") }
func ListCurrentChannels() Request { return get("stat/current-channel") }
func ListPortForwarding() Request { return get("list/portforward") }
func ListPortForwardStats() Request { return get("stat/portforward") }
func ListDPIStats() Request { return get("stat/dpi") }
func ListFirewallGroups() Request { return get("rest/firewallgroup") }
func ListRadiusAccounts() Request { return get("rest/account") }
func ListRadiusProfiles() Request { return get("rest/radiusprofile") }

// Messages.

func ListEvents() Request {
	return post("stat/event", map[string]any{
		"_sort":  "-time",
		"within": 720,
		"type":   nil,
		"_start": 0,
		"_limit": 3000,
	})
}

func ListAlarms() Request { return get("list/alarm") }

func CountAlarms(activeOnly bool) Request {
	if activeOnly {
		return get("cnt/alarm?archived=false")
	}
	return get("cnt/alarm")
}
