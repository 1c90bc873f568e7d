package voucher

import (
	"strings"

	"grimm.is/wingwifi/internal/i18n"
)

// FormatDuration renders a voucher duration given in minutes, e.g.
// "2 dana, 3 sata, 5 minuta" for "sr" or "2 days, 3 hours, 5 minutes"
// otherwise. Zero parts are omitted.
func FormatDuration(minutes int, lang string) string {
	if minutes < 0 {
		minutes = 0
	}
	days := minutes / (24 * 60)
	hours := minutes / 60 % 24
	mins := minutes % 60

	p := i18n.NewPrinter(i18n.Parse(lang))
	var parts []string
	if days > 0 {
		parts = append(parts, p.Sprintf(i18n.DaysKey, days))
	}
	if hours > 0 {
		parts = append(parts, p.Sprintf(i18n.HoursKey, hours))
	}
	if mins > 0 || len(parts) == 0 {
		parts = append(parts, p.Sprintf(i18n.MinutesKey, mins))
	}
	return strings.Join(parts, ", ")
}
