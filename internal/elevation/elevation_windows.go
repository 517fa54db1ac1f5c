//go:build windows

package elevation

import "golang.org/x/sys/windows"

// IsElevated reports whether the process token is elevated (UAC "Run as administrator").
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
