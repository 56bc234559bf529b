package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const jpegQuality = 75

// X11Capturer grabs the root window of the X display. It stands in for a
// webcam on machines where the camera feed is shown on screen.
type X11Capturer struct {
	mu     sync.Mutex
	conn   *xgb.Conn
	root   xproto.Window
	width  uint16
	height uint16
}

// NewX11Capturer connects to the display named by $DISPLAY.
func NewX11Capturer() (*X11Capturer, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	return &X11Capturer{
		conn:   conn,
		root:   screen.Root,
		width:  screen.WidthInPixels,
		height: screen.HeightInPixels,
	}, nil
}

// Capture grabs the screen and encodes it as JPEG.
func (x *X11Capturer) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.mu.Lock()
	if x.conn == nil {
		x.mu.Unlock()
		return nil, fmt.Errorf("x11 capturer is closed")
	}
	reply, err := xproto.GetImage(x.conn, xproto.ImageFormatZPixmap, xproto.Drawable(x.root),
		0, 0, x.width, x.height, 0xffffffff).Reply()
	width, height := int(x.width), int(x.height)
	x.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to get root window image: %w", err)
	}

	img, err := bgraToRGBA(reply.Data, width, height)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// bgraToRGBA converts a 32 bit ZPixmap into an RGBA image.
func bgraToRGBA(data []byte, width, height int) (*image.RGBA, error) {
	if len(data) < width*height*4 {
		return nil, fmt.Errorf("short image data: got %d bytes for %dx%d", len(data), width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		p := i * 4
		img.Pix[p] = data[p+2]
		img.Pix[p+1] = data[p+1]
		img.Pix[p+2] = data[p]
		img.Pix[p+3] = 0xff
	}
	return img, nil
}

func (x *X11Capturer) IsAvailable() bool {
	return os.Getenv("DISPLAY") != ""
}

func (x *X11Capturer) Name() string {
	return SourceX11
}

func (x *X11Capturer) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.conn != nil {
		x.conn.Close()
		x.conn = nil
	}
	return nil
}
