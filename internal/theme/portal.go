package theme

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	portalName      = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	portalSettings  = "org.freedesktop.portal.Settings"
	appearanceGroup = "org.freedesktop.appearance"
	colorSchemeKey  = "color-scheme"
)

// Portal reads the desktop color scheme from the freedesktop settings portal.
type Portal struct {
	conn *dbus.Conn
}

func NewPortal(conn *dbus.Conn) *Portal {
	return &Portal{conn: conn}
}

// ConnectPortal opens a private session bus connection for the portal.
func ConnectPortal() (*Portal, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Portal{conn: conn}, nil
}

func (p *Portal) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

func (p *Portal) PrefersDark(ctx context.Context) (bool, error) {
	var value dbus.Variant
	obj := p.conn.Object(portalName, dbus.ObjectPath(portalPath))
	err := obj.CallWithContext(ctx, portalSettings+".Read", 0, appearanceGroup, colorSchemeKey).Store(&value)
	if err != nil {
		return false, fmt.Errorf("failed to read color scheme: %w", err)
	}

	scheme, err := colorScheme(value)
	if err != nil {
		return false, err
	}
	return scheme == 1, nil
}

// colorScheme unwraps the portal reply. Read returns the uint32 wrapped in
// one or two variants depending on the portal version.
func colorScheme(value dbus.Variant) (uint32, error) {
	for i := 0; i < 3; i++ {
		switch v := value.Value().(type) {
		case uint32:
			return v, nil
		case dbus.Variant:
			value = v
		default:
			return 0, fmt.Errorf("unexpected color scheme type %s", value.Signature())
		}
	}
	return 0, fmt.Errorf("color scheme nested too deeply")
}
