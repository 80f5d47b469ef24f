//go:build !linux && !darwin

package profile

// systemMemoryGB reports no device memory hint on platforms without a
// supported probe; tier detection falls back to hosting classification.
func systemMemoryGB() (float64, bool) {
	return 0, false
}
