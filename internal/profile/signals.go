// Package profile detects the runtime environment and resolves the
// operational configuration used for model serving requests.
package profile

import (
	"net/url"
	"strings"
)

// Tier is the coarse memory classification of the runtime environment.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Hosting classifies the serving environment. Static means the endpoint
// is served over HTTPS from a non-local hostname; local covers every
// other serving environment.
type Hosting string

const (
	HostingLocal  Hosting = "local"
	HostingStatic Hosting = "static"
)

// Device memory boundaries in gigabytes. Hints at or below the boundary
// fall into the smaller tier.
const (
	lowMemoryMaxGB    = 4
	mediumMemoryMaxGB = 8
)

// Signals exposes the ambient readings used for tier detection.
// Implementations must be side-effect free. A missing reading is a
// defined input reported through the ok return, never an error.
type Signals interface {
	// DeviceMemoryGB returns the device memory hint in gigabytes.
	// ok is false when the runtime exposes no usable hint.
	DeviceMemoryGB() (mem float64, ok bool)

	// Hosting returns the hosting classification of the serving endpoint.
	Hosting() Hosting
}

// DetectTier derives the memory tier from the available signals, in
// priority order: the device memory hint when present, otherwise the
// hosting classification (static defaults to low, everything else to
// medium). Pure function of the signals; never fails.
func DetectTier(s Signals) Tier {
	if mem, ok := s.DeviceMemoryGB(); ok {
		switch {
		case mem <= lowMemoryMaxGB:
			return TierLow
		case mem <= mediumMemoryMaxGB:
			return TierMedium
		default:
			return TierHigh
		}
	}
	if s.Hosting() == HostingStatic {
		return TierLow
	}
	return TierMedium
}

// SystemSignals reads signals from the host system: device memory from
// the operating system, hosting classified from the serving base URL.
type SystemSignals struct {
	baseURL string
}

// NewSystemSignals creates system signals for the given serving base URL.
func NewSystemSignals(baseURL string) *SystemSignals {
	return &SystemSignals{baseURL: baseURL}
}

func (s *SystemSignals) DeviceMemoryGB() (float64, bool) {
	return systemMemoryGB()
}

func (s *SystemSignals) Hosting() Hosting {
	return ClassifyHosting(s.baseURL)
}

// StaticSignals is a fixed-value Signals implementation for tests and
// explicit overrides.
type StaticSignals struct {
	MemoryGB  float64
	HasMemory bool
	Host      Hosting
}

func (s StaticSignals) DeviceMemoryGB() (float64, bool) {
	return s.MemoryGB, s.HasMemory
}

func (s StaticSignals) Hosting() Hosting {
	return s.Host
}

// ClassifyHosting classifies a serving base URL. HTTPS endpoints on
// non-local hostnames classify as static hosting; everything else,
// including unparseable URLs, classifies as local.
func ClassifyHosting(rawURL string) Hosting {
	u, err := url.Parse(rawURL)
	if err != nil {
		return HostingLocal
	}
	if u.Scheme != "https" {
		return HostingLocal
	}
	if isLocalHostname(u.Hostname()) {
		return HostingLocal
	}
	return HostingStatic
}

func isLocalHostname(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasSuffix(host, ".local")
}
