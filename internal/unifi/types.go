package unifi

// Request describes one controller endpoint call.
type Request struct {
	Method string
	// Path is relative to /api/s/<site>/ unless Global is set,
	// in which case it is an absolute API path such as /api/self/sites.
	Path    string
	Global  bool
	Payload any
}

// Records is the decoded data array of a controller response.
type Records []any

// Site is a logical network managed by a controller.
type Site struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
	Role string `json:"role,omitempty"`
}

// Sysinfo is the subset of stat/sysinfo WingWifi reads.
type Sysinfo struct {
	Version  string `json:"version"`
	Build    string `json:"build,omitempty"`
	Hostname string `json:"hostname,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Voucher is a hotspot voucher as reported by stat/voucher.
type Voucher struct {
	ID             string `json:"_id"`
	SiteID         string `json:"site_id,omitempty"`
	Code           string `json:"code"`
	CreateTime     int64  `json:"create_time"`
	Duration       int    `json:"duration"`
	Quota          int    `json:"quota"`
	Used           int    `json:"used"`
	Note           string `json:"note,omitempty"`
	QosOverwrite   bool   `json:"qos_overwrite,omitempty"`
	QosRateMaxUp   int    `json:"qos_rate_max_up,omitempty"`
	QosRateMaxDown int    `json:"qos_rate_max_down,omitempty"`
	QosUsageQuota  int    `json:"qos_usage_quota,omitempty"`
	Status         string `json:"status,omitempty"`
	StatusExpires  int64  `json:"status_expires,omitempty"`
	AdminName      string `json:"admin_name,omitempty"`
}

// VoucherSpec are the parameters of a create-voucher command.
// Zero caps mean unlimited.
type VoucherSpec struct {
	Minutes  int
	Count    int
	Quota    int // uses per voucher; 0 is unlimited, 1 is single-use
	Note     string
	UpKbps   int
	DownKbps int
	MBytes   int
}

func (s VoucherSpec) payload() map[string]any {
	p := map[string]any{
		"cmd":    "create-voucher",
		"expire": s.Minutes,
		"n":      s.Count,
		"quota":  s.Quota,
	}
	if s.Note != "" {
		p["note"] = s.Note
	}
	if s.UpKbps > 0 {
		p["up"] = s.UpKbps
	}
	if s.DownKbps > 0 {
		p["down"] = s.DownKbps
	}
	if s.MBytes > 0 {
		p["bytes"] = s.MBytes
	}
	return p
}
