// Package platform identifies the host system for the default os variable.
package platform

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// Info contains detected host information
type Info struct {
	OS       string // kernel family: linux, darwin, windows
	Platform string // distribution or product: fedora, ubuntu, darwin
	Version  string
	Arch     string
}

// infoFunc is replaced in tests.
var infoFunc = host.Info

// Detect detects the current host. Fields that cannot be determined fall
// back to the values known to the Go runtime.
func Detect() Info {
	info := Info{
		OS:       runtime.GOOS,
		Platform: runtime.GOOS,
		Arch:     runtime.GOARCH,
	}

	stat, err := infoFunc()
	if err != nil || stat == nil {
		return info
	}
	if stat.OS != "" {
		info.OS = stat.OS
	}
	if stat.Platform != "" {
		info.Platform = stat.Platform
	}
	info.Version = stat.PlatformVersion
	if stat.KernelArch != "" {
		info.Arch = stat.KernelArch
	}
	return info
}

// SystemName returns the identifier used as the default os variable, e.g.
// "fedora" or "ubuntu" on Linux and "darwin" on macOS.
func SystemName() string {
	return Name(Detect())
}

// Name normalises the platform of info into a single lower-case word.
func Name(info Info) string {
	name := strings.ToLower(strings.TrimSpace(info.Platform))
	if name == "" {
		name = strings.ToLower(info.OS)
	}
	// Windows reports a product name such as "Microsoft Windows 11 Pro".
	if strings.Contains(name, "windows") {
		return "windows"
	}
	return strings.Join(strings.Fields(name), "-")
}
