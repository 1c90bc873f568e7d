package render

import "time"

// Timing marks the phases of one request.
// Zero Login or Load marks mean the phase was skipped.
type Timing struct {
	Start time.Time
	Login time.Time
	Load  time.Time
	End   time.Time
}

// Breakdown splits total request time into login, load and remaining shares.
type Breakdown struct {
	Total     time.Duration
	LoginPct  float64
	LoadPct   float64
	RemainPct float64
	LoginTime time.Duration
	LoadTime  time.Duration
}

// Breakdown computes the percentage split. The three percentages always
// sum to 100; a non-positive total is reported as 100% remainder.
func (t Timing) Breakdown() Breakdown {
	login := t.Login
	if login.IsZero() {
		login = t.Start
	}
	load := t.Load
	if load.IsZero() {
		load = login
	}

	b := Breakdown{Total: t.End.Sub(t.Start)}
	if b.Total <= 0 {
		b.Total = 0
		b.RemainPct = 100
		return b
	}

	b.LoginTime = clamp(login.Sub(t.Start), b.Total)
	b.LoadTime = clamp(load.Sub(login), b.Total-b.LoginTime)

	total := float64(b.Total)
	b.LoginPct = float64(b.LoginTime) / total * 100
	b.LoadPct = float64(b.LoadTime) / total * 100
	b.RemainPct = 100 - b.LoginPct - b.LoadPct
	return b
}

func clamp(d, limit time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > limit {
		return limit
	}
	return d
}
