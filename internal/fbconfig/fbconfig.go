// Package fbconfig picks the framebuffer configuration closest to a
// requested pixel format from a driver-reported candidate set. The same
// policy serves every context backend, so selection behaves identically
// whichever API enumerated the candidates.
package fbconfig

// DontCare marks a channel the caller has no preference for.
const DontCare = -1

// Config describes one framebuffer configuration, either requested by
// the application or reported by a driver.
type Config struct {
	RedBits     int
	GreenBits   int
	BlueBits    int
	AlphaBits   int
	DepthBits   int
	StencilBits int
	Samples     int

	DoubleBuffer bool
	SRGB         bool
	Transparent  bool
	Stereo       bool

	// Handle is the backend-opaque native config this candidate was
	// derived from. Unused for requests.
	Handle uintptr
}

// Choose returns the candidate closest to desired. Stereo and double
// buffering are hard constraints; for everything else, candidates
// missing a requested feature always rank behind candidates that have
// it, then color channel closeness decides, then the remaining
// channels. Ties keep the earliest candidate, so selection over a fixed
// candidate order is deterministic.
func Choose(desired Config, alternatives []Config) (Config, bool) {
	leastMissing := int(^uint(0) >> 1)
	leastColorDiff := int(^uint(0) >> 1)
	leastExtraDiff := int(^uint(0) >> 1)

	var closest Config
	found := false

	for _, current := range alternatives {
		if desired.Stereo != current.Stereo {
			continue
		}
		if desired.DoubleBuffer != current.DoubleBuffer {
			continue
		}

		missing := 0
		if desired.AlphaBits > 0 && current.AlphaBits == 0 {
			missing++
		}
		if desired.DepthBits > 0 && current.DepthBits == 0 {
			missing++
		}
		if desired.StencilBits > 0 && current.StencilBits == 0 {
			missing++
		}
		if desired.Samples > 0 && current.Samples == 0 {
			missing++
		}
		if desired.Transparent != current.Transparent {
			missing++
		}

		colorDiff := 0
		colorDiff += channelDiff(desired.RedBits, current.RedBits)
		colorDiff += channelDiff(desired.GreenBits, current.GreenBits)
		colorDiff += channelDiff(desired.BlueBits, current.BlueBits)

		extraDiff := 0
		extraDiff += channelDiff(desired.AlphaBits, current.AlphaBits)
		extraDiff += channelDiff(desired.DepthBits, current.DepthBits)
		extraDiff += channelDiff(desired.StencilBits, current.StencilBits)
		extraDiff += channelDiff(desired.Samples, current.Samples)
		if desired.SRGB && !current.SRGB {
			extraDiff++
		}

		better := false
		switch {
		case missing < leastMissing:
			better = true
		case missing == leastMissing && colorDiff < leastColorDiff:
			better = true
		case missing == leastMissing && colorDiff == leastColorDiff && extraDiff < leastExtraDiff:
			better = true
		}
		if better {
			closest = current
			leastMissing = missing
			leastColorDiff = colorDiff
			leastExtraDiff = extraDiff
			found = true
		}
	}

	return closest, found
}

func channelDiff(desired, current int) int {
	if desired == DontCare {
		return 0
	}
	d := desired - current
	return d * d
}
