package screen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/cwhitesell/screengrab/internal/geometry"
	"github.com/cwhitesell/screengrab/internal/logger"
)

// X11Backend enumerates monitors via RandR and captures regions of the root
// window over the X protocol.
type X11Backend struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
	mu     sync.Mutex
}

// NewX11Backend connects to the X server and initializes the RandR extension
func NewX11Backend() (*X11Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("RandR extension not available: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	return &X11Backend{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
	}, nil
}

// Name returns the backend name
func (b *X11Backend) Name() string {
	return "x11"
}

// IsAvailable checks if the X connection is open
func (b *X11Backend) IsAvailable() bool {
	return b.conn != nil
}

// Close closes the X11 connection
func (b *X11Backend) Close() error {
	b.conn.Close()
	return nil
}

// Surfaces returns one Surface per active CRTC, in RandR enumeration order.
func (b *X11Backend) Surfaces() ([]Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := randr.GetScreenResourcesCurrent(b.conn, b.root).Reply()
	if err != nil {
		return nil, &EnumerationError{Reason: "failed to query screen resources", Err: err}
	}

	primaryCrtc := b.primaryCrtc(res.ConfigTimestamp)

	log := logger.WithComponent("x11-backend")
	surfaces := make([]Surface, 0, len(res.Crtcs))
	for _, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(b.conn, crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			log.Debug().Err(err).Uint32("crtc", uint32(crtc)).Msg("Skipping unreadable CRTC")
			continue
		}
		// CRTCs without an active mode are disabled outputs
		if info.Mode == 0 || info.Width == 0 || info.Height == 0 {
			continue
		}
		surfaces = append(surfaces, Surface{
			Index: len(surfaces),
			Bounds: geometry.Rect{
				X:      int(info.X),
				Y:      int(info.Y),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
			Primary: crtc == primaryCrtc,
		})
	}

	if len(surfaces) == 0 {
		return nil, &EnumerationError{Reason: "no active CRTCs reported by RandR"}
	}
	return surfaces, nil
}

// primaryCrtc resolves the CRTC driving the primary output, or 0 when the
// server does not report one.
func (b *X11Backend) primaryCrtc(ts xproto.Timestamp) randr.Crtc {
	primary, err := randr.GetOutputPrimary(b.conn, b.root).Reply()
	if err != nil || primary.Output == 0 {
		return 0
	}
	outputInfo, err := randr.GetOutputInfo(b.conn, primary.Output, ts).Reply()
	if err != nil {
		return 0
	}
	return outputInfo.Crtc
}

// CaptureRegion captures a region of the root window.
func (b *X11Backend) CaptureRegion(rect geometry.Rect) (*image.RGBA, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if rect.Empty() {
		return nil, &CaptureError{Rect: rect, Err: errors.New("non-positive dimensions")}
	}

	reply, err := xproto.GetImage(
		b.conn,
		xproto.ImageFormatZPixmap,
		xproto.Drawable(b.root),
		int16(rect.X), int16(rect.Y),
		uint16(rect.Width), uint16(rect.Height),
		0xffffffff,
	).Reply()

	if err != nil {
		return nil, &CaptureError{Rect: rect, Err: err}
	}
	if len(reply.Data) == 0 {
		return nil, &CaptureError{Rect: rect, Err: errors.New("server returned empty image data")}
	}

	return b.convertImageData(reply.Data, rect.Width, rect.Height), nil
}

// convertImageData converts X11 image data to RGBA
func (b *X11Backend) convertImageData(data []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	depth := int(b.screen.RootDepth)

	if depth == 24 || depth == 32 {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := (y*width + x) * 4
				if i+3 < len(data) {
					// BGRA to RGBA
					img.Set(x, y, color.RGBA{
						R: data[i+2],
						G: data[i+1],
						B: data[i],
						A: 255,
					})
				}
			}
		}
	} else {
		logger.WithComponent("x11-backend").Warn().
			Int("depth", depth).
			Msg("Unsupported color depth")
	}

	return img
}
