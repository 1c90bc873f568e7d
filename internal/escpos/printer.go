// Package escpos drives ESC/POS receipt printers over a byte stream.
//
// Printer adapts the escpos driver library to the receipt layout: it adds
// the commands the driver lacks (font selection, line spacing, drawer
// pulse), records the first write error, and owns the connection. Close
// flushes, closes the connection and reports that error.
package escpos

import (
	"context"
	"fmt"
	"image"
	"io"
	"net"
	"time"

	driver "github.com/justinmichaelvieira/escpos"
)

// Control bytes for the raw commands.
const (
	ESC = 0x1b
	GS  = 0x1d
	LF  = 0x0a
)

// Font selects one of the printer's built-in fonts.
type Font byte

const (
	FontA Font = 0
	FontB Font = 1
	FontC Font = 2
)

// DefaultPort is the raw printing port of network printers.
const DefaultPort = "9100"

// Printer writes ESC/POS commands to a connection.
type Printer struct {
	conn io.WriteCloser
	drv  *driver.Escpos
	err  error
}

// New wraps an open connection.
func New(conn io.WriteCloser) *Printer {
	return &Printer{conn: conn, drv: driver.New(conn)}
}

// Dial connects to a network printer. addr may omit the port.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Printer, error) {
	if addr == "" {
		return nil, fmt.Errorf("escpos: no printer address")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, DefaultPort)
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("escpos: dial %s: %w", addr, err)
	}
	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}
	return New(conn), nil
}

// Err returns the first write error, if any.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) record(_ int, err error) {
	if p.err == nil && err != nil {
		p.err = err
	}
}

func (p *Printer) raw(b ...byte) {
	if p.err != nil {
		return
	}
	p.record(p.drv.WriteRaw(b))
}

// Initialize resets the printer to its power-on state.
func (p *Printer) Initialize() {
	if p.err != nil {
		return
	}
	p.record(p.drv.Initialize())
}

// SetFont selects a built-in font.
func (p *Printer) SetFont(f Font) {
	p.raw(ESC, 'M', byte(f))
}

// Text prints s as-is. Line breaks must be part of s.
func (p *Printer) Text(s string) {
	if p.err != nil || s == "" {
		return
	}
	p.record(p.drv.Write(s))
}

// Feed prints the buffer and advances n lines, at least one.
func (p *Printer) Feed(n int) {
	for i := 0; i < max(n, 1) && p.err == nil; i++ {
		p.record(p.drv.LineFeed())
	}
}

// SetTextSize sets character magnification, 1 to 8 in each direction.
func (p *Printer) SetTextSize(width, height int) {
	if p.err != nil {
		return
	}
	p.drv.Size(clampByte(width, 1, 8), clampByte(height, 1, 8))
}

// SetLineSpacing sets line spacing in dots. Zero or less restores the default.
func (p *Printer) SetLineSpacing(dots int) {
	if dots <= 0 {
		p.raw(ESC, '2')
		return
	}
	p.raw(ESC, '3', clampByte(dots, 1, 255))
}

// Cut feeds past the cutter and cuts the paper.
func (p *Printer) Cut() {
	if p.err != nil {
		return
	}
	p.record(p.drv.Cut())
}

// Pulse opens the cash drawer on pin 2.
func (p *Printer) Pulse() {
	p.raw(ESC, 'p', 0, 60, 120)
}

// Image prints img as a bit image, scaled down to MaxDots wide.
func (p *Printer) Image(img image.Image) {
	if p.err != nil || img == nil {
		return
	}
	p.record(p.drv.PrintImage(Fit(img, MaxDots)))
}

// Close flushes pending commands and closes the connection.
func (p *Printer) Close() error {
	flushErr := p.drv.Print()
	closeErr := p.conn.Close()
	switch {
	case p.err != nil:
		return p.err
	case flushErr != nil:
		return flushErr
	default:
		return closeErr
	}
}

func clampByte(n, lo, hi int) byte {
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	return byte(n)
}
