package window

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/cwhitesell/screengrab/internal/geometry"
	"github.com/cwhitesell/screengrab/internal/logger"
)

// X11Inspector implements the Inspector interface using X11
type X11Inspector struct {
	conn *xgb.Conn
	root xproto.Window
}

// NewX11Inspector connects to the X server
func NewX11Inspector() (*X11Inspector, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	return &X11Inspector{
		conn: conn,
		root: root,
	}, nil
}

// Name returns the backend name
func (b *X11Inspector) Name() string {
	return "x11"
}

// Close closes the X11 connection
func (b *X11Inspector) Close() error {
	b.conn.Close()
	return nil
}

// ListWindows returns all visible windows using EWMH _NET_CLIENT_LIST with
// QueryTree fallback.
func (b *X11Inspector) ListWindows() ([]*Info, error) {
	log := logger.WithComponent("x11-inspector")

	windows, err := b.listWindowsEWMH()
	if err == nil && len(windows) > 0 {
		return windows, nil
	}
	if err != nil {
		log.Debug().Err(err).Msg("EWMH listing failed, falling back to QueryTree")
	}

	return b.listWindowsQueryTree()
}

// listWindowsEWMH gets windows from _NET_CLIENT_LIST (EWMH standard)
func (b *X11Inspector) listWindowsEWMH() ([]*Info, error) {
	clientListAtom, err := b.getAtom("_NET_CLIENT_LIST")
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST atom: %w", err)
	}

	reply, err := xproto.GetProperty(
		b.conn,
		false,
		b.root,
		clientListAtom,
		xproto.GetPropertyTypeAny,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get _NET_CLIENT_LIST property: %w", err)
	}
	if reply.ValueLen == 0 {
		return nil, fmt.Errorf("_NET_CLIENT_LIST is empty")
	}

	// The property value is an array of 32-bit window IDs
	windows := make([]*Info, 0, reply.ValueLen)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		winID := xproto.Window(uint32(reply.Value[i]) |
			uint32(reply.Value[i+1])<<8 |
			uint32(reply.Value[i+2])<<16 |
			uint32(reply.Value[i+3])<<24)

		info, err := b.getWindowInfo(winID)
		if err != nil {
			continue
		}
		if info.Title == "" {
			continue
		}
		windows = append(windows, info)
	}

	return windows, nil
}

// listWindowsQueryTree gets windows by querying root window children
func (b *X11Inspector) listWindowsQueryTree() ([]*Info, error) {
	tree, err := xproto.QueryTree(b.conn, b.root).Reply()
	if err != nil {
		return nil, err
	}

	windows := make([]*Info, 0)
	for _, child := range tree.Children {
		info, err := b.getWindowInfo(child)
		if err != nil {
			continue
		}
		// Skip untitled windows (usually not user windows)
		if info.Title == "" {
			continue
		}
		windows = append(windows, info)
	}

	return windows, nil
}

// getWindowInfo retrieves title, class, PID and root-relative geometry
func (b *X11Inspector) getWindowInfo(win xproto.Window) (*Info, error) {
	info := &Info{ID: uint32(win)}

	geom, err := xproto.GetGeometry(b.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get window geometry: %w", err)
	}

	// GetGeometry coordinates are relative to the parent; translate the
	// window origin into root coordinates so the rectangle is usable for
	// desktop-space capture.
	x, y := int(geom.X), int(geom.Y)
	if trans, err := xproto.TranslateCoordinates(b.conn, win, b.root, 0, 0).Reply(); err == nil {
		x, y = int(trans.DstX), int(trans.DstY)
	}

	info.Bounds = geometry.Rect{
		X:      x,
		Y:      y,
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}

	if titleAtom, err := b.getAtom("_NET_WM_NAME"); err == nil {
		if title, err := b.getProperty(win, titleAtom); err == nil {
			info.Title = title
		}
	}
	if info.Title == "" {
		if titleAtom, err := b.getAtom("WM_NAME"); err == nil {
			if title, err := b.getProperty(win, titleAtom); err == nil {
				info.Title = title
			}
		}
	}

	if classAtom, err := b.getAtom("WM_CLASS"); err == nil {
		if classRaw, err := b.getProperty(win, classAtom); err == nil {
			info.Class = parseClass(classRaw)
		}
	}

	if pidAtom, err := b.getAtom("_NET_WM_PID"); err == nil {
		pidReply, err := xproto.GetProperty(
			b.conn,
			false,
			win,
			pidAtom,
			xproto.AtomCardinal,
			0,
			1,
		).Reply()
		if err == nil && len(pidReply.Value) >= 4 {
			info.PID = int(uint32(pidReply.Value[0]) |
				uint32(pidReply.Value[1])<<8 |
				uint32(pidReply.Value[2])<<16 |
				uint32(pidReply.Value[3])<<24)
		}
	}

	return info, nil
}

// parseClass extracts the class name from a raw WM_CLASS property, which is
// two null-terminated strings: instance\0class\0. Falls back to the instance
// when the class is empty.
func parseClass(raw string) string {
	parts := strings.Split(raw, "\x00")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}
	if len(parts) >= 1 && parts[0] != "" {
		return parts[0]
	}
	return ""
}

// getAtom gets an atom ID by name
func (b *X11Inspector) getAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(b.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

// getProperty gets a property value as a string
func (b *X11Inspector) getProperty(win xproto.Window, atom xproto.Atom) (string, error) {
	reply, err := xproto.GetProperty(
		b.conn,
		false,
		win,
		atom,
		xproto.GetPropertyTypeAny,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil {
		return "", err
	}
	if reply.ValueLen == 0 {
		return "", fmt.Errorf("empty property")
	}
	return string(reply.Value), nil
}
