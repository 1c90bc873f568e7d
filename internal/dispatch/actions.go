package dispatch

import (
	"time"

	"grimm.is/wingwifi/internal/unifi"
)

// Group is a menu section of the action dropdown.
type Group string

const (
	GroupClients       Group = "Clients"
	GroupDevices       Group = "Devices"
	GroupStatistics    Group = "Statistics"
	GroupHotspot       Group = "Hotspot"
	GroupConfiguration Group = "Configuration"
	GroupMessages      Group = "Messages"
)

// Groups lists menu sections in display order.
var Groups = []Group{GroupClients, GroupDevices, GroupStatistics, GroupHotspot, GroupConfiguration, GroupMessages}

// Action binds an action name to one controller endpoint.
type Action struct {
	Name       string
	Label      string
	Group      Group
	MinVersion string

	// request builds the endpoint call; nil means the cached site list is returned.
	request func(now time.Time) unifi.Request
}

// Cached reports whether the action is answered from the session's site cache.
func (a Action) Cached() bool {
	return a.request == nil
}

func fixed(r func() unifi.Request) func(time.Time) unifi.Request {
	return func(time.Time) unifi.Request { return r() }
}

func report(interval, kind string, attrs []string) func(time.Time) unifi.Request {
	return func(now time.Time) unifi.Request { return unifi.Report(interval, kind, attrs, now) }
}

const (
	minTags      = "5.5.0"
	minStatSites = "5.2.9"
	minGateway   = "5.8.0"
	minDashboard = "4.9.1"
	minRadius    = "5.5.19"
	minIPS       = "5.9.10"
)

// actions is the full action table in menu order.
var actions = []Action{
	{Name: "list_clients", Label: "Online clients", Group: GroupClients, request: fixed(unifi.ListClients)},
	{Name: "stat_allusers", Label: "Client history", Group: GroupClients, request: fixed(unifi.StatAllUsers)},
	{Name: "stat_auths", Label: "Client authorizations", Group: GroupClients, request: unifi.StatAuths},
	{Name: "list_guests", Label: "Guests", Group: GroupClients, request: fixed(unifi.ListGuests)},
	{Name: "list_usergroups", Label: "User groups", Group: GroupClients, request: fixed(unifi.ListUserGroups)},
	{Name: "stat_sessions", Label: "Client sessions", Group: GroupClients, request: unifi.StatSessions},
	{Name: "list_users", Label: "Known users", Group: GroupClients, request: fixed(unifi.ListUsers)},

	{Name: "list_devices", Label: "Devices", Group: GroupDevices, request: fixed(unifi.ListDevices)},
	{Name: "list_tags", Label: "Device tags", Group: GroupDevices, MinVersion: minTags, request: fixed(unifi.ListTags)},
	{Name: "list_wlan_groups", Label: "WLAN groups", Group: GroupDevices, request: fixed(unifi.ListWLANGroups)},
	{Name: "list_rogueaps", Label: "Rogue access points", Group: GroupDevices, request: fixed(unifi.ListRogueAPs)},
	{Name: "list_known_rogueaps", Label: "Known rogue access points", Group: GroupDevices, request: fixed(unifi.ListKnownRogueAPs)},

	{Name: "stat_5minutes_site", Label: "5 minute site stats", Group: GroupStatistics, request: report(unifi.Interval5Minutes, "site", unifi.SiteReportAttrs)},
	{Name: "stat_hourly_site", Label: "Hourly site stats", Group: GroupStatistics, request: report(unifi.IntervalHourly, "site", unifi.SiteReportAttrs)},
	{Name: "stat_daily_site", Label: "Daily site stats", Group: GroupStatistics, request: report(unifi.IntervalDaily, "site", unifi.SiteReportAttrs)},
	{Name: "stat_5minutes_aps", Label: "5 minute access point stats", Group: GroupStatistics, request: report(unifi.Interval5Minutes, "ap", unifi.APReportAttrs)},
	{Name: "stat_hourly_aps", Label: "Hourly access point stats", Group: GroupStatistics, request: report(unifi.IntervalHourly, "ap", unifi.APReportAttrs)},
	{Name: "stat_daily_aps", Label: "Daily access point stats", Group: GroupStatistics, request: report(unifi.IntervalDaily, "ap", unifi.APReportAttrs)},
	{Name: "stat_5minutes_gateway", Label: "5 minute gateway stats", Group: GroupStatistics, MinVersion: minGateway, request: report(unifi.Interval5Minutes, "gw", unifi.GatewayAttrs)},
	{Name: "stat_hourly_gateway", Label: "Hourly gateway stats", Group: GroupStatistics, MinVersion: minGateway, request: report(unifi.IntervalHourly, "gw", unifi.GatewayAttrs)},
	{Name: "stat_daily_gateway", Label: "Daily gateway stats", Group: GroupStatistics, MinVersion: minGateway, request: report(unifi.IntervalDaily, "gw", unifi.GatewayAttrs)},
	{Name: "list_5minutes_dashboard", Label: "5 minute dashboard metrics", Group: GroupStatistics, MinVersion: minDashboard, request: fixed(func() unifi.Request { return unifi.Dashboard(true) })},
	{Name: "list_hourly_dashboard", Label: "Hourly dashboard metrics", Group: GroupStatistics, MinVersion: minDashboard, request: fixed(func() unifi.Request { return unifi.Dashboard(false) })},
	{Name: "list_health", Label: "Site health", Group: GroupStatistics, request: fixed(unifi.ListHealth)},
	{Name: "stat_sysinfo", Label: "Controller sysinfo", Group: GroupStatistics, request: fixed(unifi.StatSysinfo)},
	{Name: "list_self", Label: "Logged in user", Group: GroupStatistics, request: fixed(unifi.ListSelf)},
	{Name: "stat_sites", Label: "All sites stats", Group: GroupStatistics, MinVersion: minStatSites, request: fixed(unifi.StatSites)},
	{Name: "list_sites", Label: "Sites", Group: GroupStatistics},
	{Name: "list_admins", Label: "Site admins", Group: GroupStatistics, request: fixed(unifi.ListAdmins)},
	{Name: "list_dpi_stats", Label: "DPI stats", Group: GroupStatistics, request: fixed(unifi.ListDPIStats)},
	{Name: "list_current_channels", Label: "Current channels", Group: GroupStatistics, request: fixed(unifi.ListCurrentChannels)},
	{Name: "list_country_codes", Label: "Country codes", Group: GroupStatistics, request: fixed(unifi.ListCountryCodes)},
	{Name: "list_portforward_stats", Label: "Port forwarding stats", Group: GroupStatistics, request: fixed(unifi.ListPortForwardStats)},

	{Name: "stat_voucher", Label: "Vouchers", Group: GroupHotspot, request: fixed(unifi.StatVouchers)},
	{Name: "stat_payment", Label: "Payments", Group: GroupHotspot, request: fixed(unifi.StatPayments)},
	{Name: "list_hotspotop", Label: "Hotspot operators", Group: GroupHotspot, request: fixed(unifi.ListHotspotOps)},

	{Name: "list_settings", Label: "Site settings", Group: GroupConfiguration, request: fixed(unifi.ListSettings)},
	{Name: "list_wlanconf", Label: "WLAN configuration", Group: GroupConfiguration, request: fixed(unifi.ListWLANConf)},
	{Name: "list_networkconf", Label: "Network configuration", Group: GroupConfiguration, request: fixed(unifi.ListNetworkConf)},
	{Name: "list_portconf", Label: "Port configuration", Group: GroupConfiguration, request: fixed(unifi.ListPortConf)},
	{Name: "list_portforwarding", Label: "Port forwarding rules", Group: GroupConfiguration, request: fixed(unifi.ListPortForwarding)},
	{Name: "list_firewallgroups", Label: "Firewall groups", Group: GroupConfiguration, request: fixed(unifi.ListFirewallGroups)},
	{Name: "list_dynamicdns", Label: "Dynamic DNS", Group: GroupConfiguration, request: fixed(unifi.ListDynamicDNS)},
	{Name: "list_extension", Label: "VoIP extensions", Group: GroupConfiguration, request: fixed(unifi.ListExtensions)},
	{Name: "list_radius_accounts", Label: "RADIUS accounts", Group: GroupConfiguration, MinVersion: minRadius, request: fixed(unifi.ListRadiusAccounts)},
	{Name: "list_radius_profiles", Label: "RADIUS profiles", Group: GroupConfiguration, MinVersion: minRadius, request: fixed(unifi.ListRadiusProfiles)},
	{Name: "list_backups", Label: "Auto backups", Group: GroupConfiguration, request: fixed(unifi.ListBackups)},

	{Name: "list_events", Label: "Events", Group: GroupMessages, request: fixed(unifi.ListEvents)},
	{Name: "list_alarms", Label: "Alarms", Group: GroupMessages, request: fixed(unifi.ListAlarms)},
	{Name: "count_alarms", Label: "Alarm count", Group: GroupMessages, request: fixed(func() unifi.Request { return unifi.CountAlarms(false) })},
	{Name: "count_active_alarms", Label: "Active alarm count", Group: GroupMessages, request: fixed(func() unifi.Request { return unifi.CountAlarms(true) })},
	{Name: "stat_ips_events", Label: "IPS/IDS events", Group: GroupMessages, MinVersion: minIPS, request: unifi.StatIPSEvents},
}

var byName = func() map[string]Action {
	m := make(map[string]Action, len(actions))
	for _, a := range actions {
		m[a.Name] = a
	}
	return m
}()
