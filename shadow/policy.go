// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shadow

// CapDumbPreferShadow is the kernel capability telling whether dumb
// buffers should be accessed through a shadow copy.
const CapDumbPreferShadow = 0x4

// CapQuerier reads a kernel capability value.
type CapQuerier interface {
	GetCap(capability uint64) (uint64, error)
}

// Decision is the outcome of TryEnable.
type Decision struct {
	// Preferred is what the kernel asked for (true when unknown).
	Preferred bool

	// Enabled is whether the shadow layer is used.
	Enabled bool

	// Forced is set when a packed 24 bpp front buffer made the shadow
	// mandatory.
	Forced bool

	// Double is whether diffing against a previous frame is used.
	Double bool
}

// TryEnable decides whether to use a shadow buffer.
//
// A 24 bpp packed front buffer behind a 32 bpp screen always needs one.
// Otherwise the kernel's preference is taken, unless shadowFB overrides it.
// When the shadow is on, double buffering is decided by ShouldDouble.
func TryEnable(k CapQuerier, force24 bool, shadowFB *bool, driverName string, double *bool) Decision {
	d := Decision{Preferred: true}

	if force24 {
		d.Enabled = true
		d.Forced = true
	} else {
		if k != nil {
			if v, err := k.GetCap(CapDumbPreferShadow); err == nil {
				d.Preferred = v != 0
			}
		}
		d.Enabled = d.Preferred
		if shadowFB != nil {
			d.Enabled = *shadowFB
		}
	}

	enabled := yesNo(d.Enabled)
	if d.Forced {
		enabled = "FORCE"
	}
	slogger().Info("ShadowFB: preferred "+yesNo(d.Preferred)+", enabled "+enabled,
		"preferred", d.Preferred, "enabled", d.Enabled, "forced", d.Forced)

	if d.Enabled {
		d.Double = ShouldDouble(driverName, double)
	}
	return d
}

// ShouldDouble reports whether double-buffered shadow updates should be
// used. Drivers behind slow or uncached links (mgag200, ast) default to on;
// override, when set, wins.
func ShouldDouble(driverName string, override *bool) bool {
	on := false
	switch driverName {
	case "mgag200", "ast":
		on = true
	}

	from := "default"
	if override != nil {
		on = *override
		from = "config"
	}

	state := "off"
	if on {
		state = "on"
	}
	slogger().Info("Double-buffered shadow updates: "+state, "driver", driverName, "source", from)
	return on
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
