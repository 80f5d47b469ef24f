package profile

import "syscall"

// systemMemoryGB reads total system memory via sysctl.
func systemMemoryGB() (float64, bool) {
	bytes, err := syscall.SysctlUint64("hw.memsize")
	if err != nil || bytes == 0 {
		return 0, false
	}
	return float64(bytes) / (1024 * 1024 * 1024), true
}
