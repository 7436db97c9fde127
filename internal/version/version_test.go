package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	original := Version
	t.Cleanup(func() { Version = original })

	Version = "1.2.3"
	if got := String(); !strings.HasPrefix(got, "iot-dashboard 1.2.3 (") {
		t.Errorf("String() = %q", got)
	}
	if got := UserAgent(); got != "IoT Dashboard Client/1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
}
