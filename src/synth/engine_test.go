package synth

import (
	"io/ioutil"
	"math"
	"os"
	"testing"
)

func TestChanges(t *testing.T) {
	c := &Changes{dict: make(map[string]struct{})}
	expectEqual(t, c.Has("data"), false)
	c.Add("data")
	expectEqual(t, c.Has("data"), true)
	c.Delete("data")
	expectEqual(t, c.Has("data"), false)
}

func TestUpdateSetBpm(t *testing.T) {
	e := newEngine()
	expectNoError(t, e.update([]string{"set", "bpm", "140"}))
	expectNearlyEqual(t, e.state.sequencer.bpm, 140)
	expectEqual(t, e.Changes.Has("data"), true)
}

func TestUpdateSetTrackParams(t *testing.T) {
	e := newEngine()
	expectNoError(t, e.update([]string{"set", "track", "1", "frequency", "200"}))
	expectNearlyEqual(t, e.state.tracks[1].frequency, 200)
	expectNoError(t, e.update([]string{"set", "track", "1", "algorithm", "hybrid2"}))
	expectEqual(t, e.state.tracks[1].algorithm, algorithmHybrid2)
	expectNoError(t, e.update([]string{"set", "track", "1", "muted", "true"}))
	expectEqual(t, e.state.tracks[1].muted, true)
	expectNoError(t, e.update([]string{"set", "track", "1", "op", "2", "level", "0.5"}))
	expectNearlyEqual(t, e.state.tracks[1].operators[2].level, 0.5)
	expectNoError(t, e.update([]string{"set", "track", "1", "op", "0", "noise", "true"}))
	expectEqual(t, e.state.tracks[1].operators[0].noise, true)
	expectNoError(t, e.update([]string{"set", "track", "1", "lfo", "freq", "6"}))
	expectNearlyEqual(t, e.state.tracks[1].lfo.freq, 6)
	expectNoError(t, e.update([]string{"set", "track", "1", "pitch_env", "depth", "2"}))
	expectNearlyEqual(t, e.state.tracks[1].pitchEnv.depth, 2)
}

func TestUpdateRejectsBadCommands(t *testing.T) {
	e := newEngine()
	expectError(t, e.update([]string{"bogus"}))
	expectError(t, e.update([]string{"set", "bogus", "1"}))
	expectError(t, e.update([]string{"set", "bpm", "fast"}))
	expectError(t, e.update([]string{"set", "track", "9", "frequency", "100"}))
	expectError(t, e.update([]string{"set", "track", "0", "op", "9", "level", "1"}))
	expectError(t, e.update([]string{"trigger", "9"}))
	expectError(t, e.update([]string{"step", "0", "99", "on"}))
	expectError(t, e.update([]string{"apply", "garbage"}))
}

func TestStepVelPitchCommands(t *testing.T) {
	e := newEngine()
	expectNoError(t, e.update([]string{"step", "0", "3", "on"}))
	expectEqual(t, e.state.tracks[0].stepActive(3), true)
	expectNoError(t, e.update([]string{"step", "0", "3", "off"}))
	expectEqual(t, e.state.tracks[0].stepActive(3), false)
	expectNoError(t, e.update([]string{"vel", "0", "3", "0.5"}))
	expectNearlyEqual(t, e.state.tracks[0].stepVel[3], 0.5)
	expectNoError(t, e.update([]string{"pitch", "0", "3", "-5"}))
	expectEqual(t, e.state.tracks[0].stepPitch[3], -5)
	expectNoError(t, e.update([]string{"pitch", "0", "3", "12"}))
	expectEqual(t, e.state.tracks[0].stepPitch[3], 7)
}

func TestTriggerAndNoteOffCommands(t *testing.T) {
	e := newEngine()
	expectNoError(t, e.update([]string{"trigger", "1", "0.5"}))
	expectEqual(t, e.state.voices[1].state, voiceSounding)
	expectNoError(t, e.update([]string{"note_off", "1"}))
	expectEqual(t, e.state.voices[1].state, voiceReleasing)
}

func TestPlayStopCommands(t *testing.T) {
	e := newEngine()
	expectNoError(t, e.update([]string{"play"}))
	expectEqual(t, e.state.sequencer.playing, true)
	expectNoError(t, e.update([]string{"stop"}))
	expectEqual(t, e.state.sequencer.playing, false)
}

func TestApplyCommandRestoresState(t *testing.T) {
	e := newEngine()
	expectNoError(t, e.update([]string{"set", "track", "0", "frequency", "75"}))
	expectNoError(t, e.update([]string{"step", "0", "0", "on"}))
	encoded := e.EncodeState()

	e2 := newEngine()
	expectNoError(t, e2.update([]string{"apply", encoded}))
	expectNearlyEqual(t, e2.state.tracks[0].frequency, 75)
	expectEqual(t, e2.state.tracks[0].stepActive(0), true)
	// decoded values sit on the quantization grid, so re-encoding is stable
	expectEqual(t, e2.EncodeState(), encoded)
}

func TestJSONRoundTrip(t *testing.T) {
	e := newEngine()
	expectNoError(t, e.update([]string{"set", "bpm", "140"}))
	expectNoError(t, e.update([]string{"set", "track", "2", "algorithm", "parallel"}))
	data := e.ToJSON()

	e2 := newEngine()
	e2.ApplyJSON(data)
	expectNearlyEqual(t, e2.state.sequencer.bpm, 140)
	expectEqual(t, e2.state.tracks[2].algorithm, algorithmParallel)
	expectEqual(t, string(e2.ToJSON()), string(data))
}

func TestReadRendersTriggeredNote(t *testing.T) {
	e := newEngine()
	expectNoError(t, e.update([]string{"trigger", "0"}))
	buf := make([]byte, samplesPerCycle*bytesPerSample)
	n, err := e.Read(buf)
	expectNoError(t, err)
	expectEqual(t, n, len(buf))
	silent := true
	for _, b := range buf {
		if b != 0 {
			silent = false
			break
		}
	}
	if silent {
		t.Errorf("expected the kick to produce samples")
	}
	if e.Levels()[0] <= 0 {
		t.Errorf("expected the track meter to register the hit")
	}
	expectEqual(t, e.pos, int64(samplesPerCycle))
}

func TestReadAdvancesSequencer(t *testing.T) {
	e := newEngine()
	expectNoError(t, e.update([]string{"step", "1", "0", "on"}))
	expectNoError(t, e.update([]string{"play"}))
	buf := make([]byte, samplesPerCycle*bytesPerSample)
	_, err := e.Read(buf)
	expectNoError(t, err)
	expectEqual(t, e.state.voices[1].Active(), true)
}

func TestGetFFTFindsTheDominantBin(t *testing.T) {
	e := newEngine()
	const bin = 64
	for i := range e.state.out {
		e.state.out[i] = math.Sin(2 * math.Pi * bin * float64(i) / fftSize)
	}
	result := e.GetFFT()
	expectEqual(t, len(result), fftSize/2)
	peak := 0
	for i, v := range result {
		if v > result[peak] {
			peak = i
		}
	}
	expectEqual(t, peak, bin)
}

func TestKitNamesReportsTheKitsOnDisk(t *testing.T) {
	dir, err := ioutil.TempDir("", "kits")
	expectNoError(t, err)
	defer os.RemoveAll(dir)
	list := `{"items": [{"name": "deep"}, {"name": "dusty"}]}`
	expectNoError(t, ioutil.WriteFile(dir+"/_list.json", []byte(list), 0644))

	e := newEngine()
	e.state.kits = newKitManager(dir)
	names, err := e.KitNames()
	expectNoError(t, err)
	expectEqual(t, len(names), 2)
	expectEqual(t, names[0], "deep")
	expectEqual(t, names[1], "dusty")
}

func TestKitNamesFailsWithoutKitDir(t *testing.T) {
	e := newEngine()
	e.state.kits = newKitManager("no-such-dir")
	_, err := e.KitNames()
	expectError(t, err)
}

func TestMidiEventsMapToTracks(t *testing.T) {
	e := newEngine()
	e.AddMidiEvent([]byte{0x90, 36, 100}) // kick note-on
	expectEqual(t, e.state.voices[0].state, voiceSounding)
	expectNearlyEqual(t, e.state.voices[0].graph.ops[3].level, 0.9*100/127)
	e.AddMidiEvent([]byte{0x80, 36, 0})
	expectEqual(t, e.state.voices[0].state, voiceReleasing)

	e.AddMidiEvent([]byte{0x90, 42, 127}) // closed hat
	expectEqual(t, e.state.voices[2].state, voiceSounding)
	e.AddMidiEvent([]byte{0x90, 38, 0}) // velocity 0 acts as note-off
	expectEqual(t, e.state.voices[1].state, voiceIdle)
}

func TestTrackForNote(t *testing.T) {
	expectEqual(t, trackForNote(35), 0)
	expectEqual(t, trackForNote(36), 0)
	expectEqual(t, trackForNote(38), 1)
	expectEqual(t, trackForNote(42), 2)
	expectEqual(t, trackForNote(49), 3)
	expectEqual(t, trackForNote(61), 1)
}
