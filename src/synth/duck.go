package synth

// ----- Ducking Bus ----- //

// duckBus is the external sidechain layer: it owns one automated gain per
// track and splices them into the voices' output chains once, at session
// start. The voices never compute ducking curves themselves; this bus ramps
// the gains when the trigger source fires.
type duckBus struct {
	clock *clock
	gains [numTracks]*param
}

// which track drives the duck (the kick by convention)
const duckSourceTrack = 0

func newDuckBus(c *clock, voices [numTracks]*Voice) *duckBus {
	b := &duckBus{clock: c}
	for i := range b.gains {
		b.gains[i] = newParam(1)
		if i != duckSourceTrack {
			voices[i].ConnectSidechainGain(b.gains[i])
		}
	}
	return b
}

// trigger dips every other track's gain by that track's own ducking amount
// and ramps it back to unity over the track's ducking release.
func (b *duckBus) trigger(source int, tracks [numTracks]*trackParams) {
	if source != duckSourceTrack {
		return
	}
	t := b.clock.now()
	for i, track := range tracks {
		if i == duckSourceTrack {
			continue
		}
		amount := clamp(track.duckAmount, 0, 1)
		if amount <= 0 {
			continue
		}
		release := atLeastZero(track.duckRelease)
		g := b.gains[i]
		g.cancelAfter(t)
		g.setValueAt(t, 1-amount)
		g.linearRampTo(t+secondsToSamples(release), 1)
	}
}
