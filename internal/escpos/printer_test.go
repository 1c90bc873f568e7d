package escpos

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufConn struct {
	bytes.Buffer
	closed bool
}

func (c *bufConn) Close() error {
	c.closed = true
	return nil
}

type failConn struct{}

func (failConn) Write([]byte) (int, error) { return 0, errors.New("paper jam") }
func (failConn) Close() error              { return nil }

func TestPrinter_Commands(t *testing.T) {
	conn := &bufConn{}
	p := New(conn)

	p.Initialize()
	p.SetFont(FontB)
	p.Text("hi\n")
	p.Feed(2)
	p.SetLineSpacing(70)
	p.Text("code")
	p.SetLineSpacing(0)
	p.Cut()
	p.Pulse()
	require.NoError(t, p.Close())
	require.True(t, conn.closed)

	out := conn.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte{ESC, '@'}), "job starts with a reset")

	font := bytes.Index(out, []byte{ESC, 'M', 1})
	text := bytes.Index(out, []byte("hi\n"))
	spacing := bytes.Index(out, []byte{ESC, '3', 70})
	code := bytes.Index(out, []byte("code"))
	reset := bytes.Index(out, []byte{ESC, '2'})
	cut := bytes.Index(out, []byte{GS, 'V'})
	pulse := bytes.Index(out, []byte{ESC, 'p', 0, 60, 120})

	for name, pos := range map[string]int{
		"font": font, "text": text, "spacing": spacing, "code": code,
		"reset": reset, "cut": cut, "pulse": pulse,
	} {
		assert.GreaterOrEqual(t, pos, 0, name)
	}
	assert.Less(t, font, text)
	assert.Less(t, text, spacing)
	assert.Less(t, spacing, code)
	assert.Less(t, code, reset)
	assert.Less(t, reset, cut)
	assert.Less(t, cut, pulse)
	assert.True(t, bytes.HasSuffix(out, []byte{ESC, 'p', 0, 60, 120}))
}

func TestPrinter_Image(t *testing.T) {
	plain := &bufConn{}
	p := New(plain)
	p.Image(nil)
	require.NoError(t, p.Close())
	assert.Zero(t, plain.Len())

	withLogo := &bufConn{}
	p = New(withLogo)
	p.Image(image.NewGray(image.Rect(0, 0, 16, 4)))
	require.NoError(t, p.Close())
	assert.NotZero(t, withLogo.Len())
}

func TestPrinter_StickyError(t *testing.T) {
	p := New(failConn{})
	p.Text(string(make([]byte, 8192)))
	p.Cut()
	err := p.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paper jam")
}

func TestFit(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 1))
	img.SetGray(7, 0, color.Gray{Y: 255})

	out := Fit(img, MaxDots)
	assert.Equal(t, image.Rect(0, 0, 8, 1), out.Bounds())
	assert.Equal(t, uint8(0), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), out.GrayAt(7, 0).Y)
}

func TestFit_ScalesWideImages(t *testing.T) {
	out := Fit(image.NewGray(image.Rect(0, 0, 1024, 100)), MaxDots)
	assert.Equal(t, MaxDots, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())
}

func TestFit_TransparentIsWhite(t *testing.T) {
	out := Fit(image.NewRGBA(image.Rect(0, 0, 8, 1)), MaxDots)
	assert.Equal(t, uint8(255), out.GrayAt(3, 0).Y)
}

func TestDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			received <- nil
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p, err := Dial(context.Background(), ln.Addr().String(), time.Second)
	require.NoError(t, err)
	p.Initialize()
	p.Text("WingWifi")
	p.Cut()
	require.NoError(t, p.Close())

	select {
	case data := <-received:
		assert.True(t, bytes.HasPrefix(data, []byte{ESC, '@'}))
		assert.Contains(t, string(data), "WingWifi")
		assert.Contains(t, string(data), string([]byte{GS, 'V'}))
	case <-time.After(2 * time.Second):
		t.Fatal("printer received nothing")
	}
}

func TestDial_Errors(t *testing.T) {
	_, err := Dial(context.Background(), "", time.Second)
	assert.Error(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), addr, 200*time.Millisecond)
	assert.Error(t, err)
}
