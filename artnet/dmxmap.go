package artnet

import (
	"math"

	"github.com/lumenctl/lumen/registry"
	"github.com/lumenctl/lumen/value"
)

// clampUnit clamps to 0..1.
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampBipolar clamps to -1..1.
func clampBipolar(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// to8BitUnit maps 0..1 to 0..255, per spec.md §4.7.
func to8BitUnit(v float64) byte {
	return byte(math.Round(clampUnit(v) * 255))
}

// to8BitBipolar maps -1..1 to 0..255, per spec.md §4.7: exactly -1 -> 0,
// exactly 1 -> 255.
func to8BitBipolar(v float64) byte {
	return byte(math.Round((clampBipolar(v) + 1) / 2 * 255))
}

// writeBundle projects a fixture's attribute bundle into its universe's
// DMX buffer, one present field at a time, per spec.md §4.7 step 2. Each
// present field is looked up in the fixture model's channel map; a field
// with no matching channel is skipped.
func writeBundle(dmx *[dmxChannels]byte, startChannel int, model registry.FixtureModel, b value.AttributeBundle) {
	writeChannel := func(name string, v float64, bipolar bool) {
		offset, ok := model.Channels[name]
		if !ok {
			return
		}
		index := startChannel + offset - 2
		if index < 0 || index >= dmxChannels {
			return
		}
		if bipolar {
			dmx[index] = to8BitBipolar(v)
		} else {
			dmx[index] = to8BitUnit(v)
		}
	}

	if b.Intensity != nil {
		writeChannel(registry.ChanDimmer, *b.Intensity, false)
	}
	if b.ColorR != nil {
		writeChannel(registry.ChanRed, *b.ColorR, false)
	}
	if b.ColorG != nil {
		writeChannel(registry.ChanGreen, *b.ColorG, false)
	}
	if b.ColorB != nil {
		writeChannel(registry.ChanBlue, *b.ColorB, false)
	}
	if b.HasColor() {
		if _, ok := model.Channels[registry.ChanWhite]; ok {
			var r, g, bl float64
			if b.ColorR != nil {
				r = *b.ColorR
			}
			if b.ColorG != nil {
				g = *b.ColorG
			}
			if b.ColorB != nil {
				bl = *b.ColorB
			}
			writeChannel(registry.ChanWhite, minOf3(r, g, bl), false)
		}
	}
	if b.Zoom != nil {
		writeChannel(registry.ChanZoom, *b.Zoom, false)
	}
	if b.Pan != nil {
		writeChannel(registry.ChanPan, *b.Pan, true)
		// panFine/tiltFine are not synthesised: this subsystem does not
		// produce 16-bit pan/tilt resolution yet (spec.md §4.7, documented
		// limitation). Writing 0 here is a no-op against a zeroed buffer,
		// included for clarity that it is a deliberate choice, not an
		// omission.
		writeChannel(registry.ChanPanFine, 0, false)
	}
	if b.Tilt != nil {
		writeChannel(registry.ChanTilt, *b.Tilt, true)
		writeChannel(registry.ChanTiltFine, 0, false)
	}
}

func minOf3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
