package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variable (set via ldflags)
var Version = "dev"

func GetVersion() string {
	return Version
}

// Revision is the VCS commit the binary was built from, if recorded.
func Revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			if len(setting.Value) > 12 {
				return setting.Value[:12]
			}
			return setting.Value
		}
	}
	return ""
}

// UserAgent identifies the dashboard to the device API.
func UserAgent() string {
	return "IoT Dashboard Client/" + Version
}

func String() string {
	if revision := Revision(); revision != "" {
		return fmt.Sprintf("iot-dashboard %s (%s, %s)", Version, revision, runtime.Version())
	}
	return fmt.Sprintf("iot-dashboard %s (%s)", Version, runtime.Version())
}
