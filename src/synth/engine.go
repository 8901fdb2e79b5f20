package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"

	"github.com/hajimehoshi/oto"
)

// ----- Changes ----- //

// Changes ...
type Changes struct {
	sync.Mutex
	dict map[string]struct{}
}

// Add ...
func (c *Changes) Add(key string) {
	c.Lock()
	c.dict[key] = struct{}{}
	c.Unlock()
}

// Has ...
func (c *Changes) Has(key string) bool {
	c.Lock()
	_, ok := c.dict[key]
	c.Unlock()
	return ok
}

// Delete ...
func (c *Changes) Delete(key string) {
	c.Lock()
	delete(c.dict, key)
	c.Unlock()
}

// ----- State ----- //

type state struct {
	sync.Mutex
	clock     *clock
	tracks    [numTracks]*trackParams
	voices    [numTracks]*Voice
	meters    [numTracks]*levelMeter
	sequencer *sequencer
	duck      *duckBus
	kits      *kitManager
	out       []float64 // length: fftSize
}

func newState() *state {
	s := &state{
		clock: &clock{},
		kits:  newKitManager("kits"),
		out:   make([]float64, fftSize),
	}
	for i := range s.tracks {
		s.tracks[i] = newTrackParams()
	}
	defaultKit(s.tracks)
	for i := range s.voices {
		s.voices[i] = NewVoice(s.clock)
		s.meters[i] = &levelMeter{}
		s.voices[i].ConnectAnalyzer(s.meters[i])
	}
	s.duck = newDuckBus(s.clock, s.voices)
	s.sequencer = newSequencer(s.clock)
	return s
}

type stateJSON struct {
	Bpm    float64           `json:"bpm"`
	Tracks []json.RawMessage `json:"tracks"`
}

func (s *state) applyJSON(data json.RawMessage) {
	var j stateJSON
	err := json.Unmarshal(data, &j)
	if err != nil {
		log.Println("failed to apply JSON to state")
		return
	}
	if j.Bpm > 0 {
		s.sequencer.setBpm(j.Bpm)
	}
	if len(j.Tracks) == len(s.tracks) {
		for i, data := range j.Tracks {
			s.tracks[i].applyJSON(data)
		}
	} else {
		log.Println("failed to apply JSON to track params")
	}
}
func (s *state) toJSON() json.RawMessage {
	tracks := make([]json.RawMessage, len(s.tracks))
	for i, t := range s.tracks {
		tracks[i] = t.toJSON()
	}
	return toRawMessage(&stateJSON{
		Bpm:    s.sequencer.bpm,
		Tracks: tracks,
	})
}

// renderSample advances the transport and sums all voices for one sample.
func (s *state) renderSample() float64 {
	s.sequencer.advance(s.tracks, s.voices, s.duck)
	value := 0.0
	for _, v := range s.voices {
		value += v.step()
	}
	s.clock.tick()
	return value * masterGain
}

// ----- Engine ----- //

// Engine owns the four track voices, the transport and the output device.
// It renders on demand: the oto player pulls samples through Read.
type Engine struct {
	ctx        context.Context
	otoContext *oto.Context
	CommandCh  chan []string
	state      *state
	Changes    *Changes
	fftResult  []float64 // length: fftSize
	pos        int64
	fft        *fft
}

var _ io.Reader = (*Engine)(nil)

func newEngine() *Engine {
	return &Engine{
		ctx:       context.Background(),
		CommandCh: make(chan []string, 256),
		state:     newState(),
		Changes: &Changes{
			dict: make(map[string]struct{}),
		},
		fftResult: make([]float64, fftSize),
		fft:       newFFT(fftSize),
	}
}

// NewEngine ...
func NewEngine() (*Engine, error) {
	otoContext, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, err
	}
	e := newEngine()
	e.otoContext = otoContext
	go processCommands(e, e.CommandCh)
	return e, nil
}

func processCommands(e *Engine, commandCh <-chan []string) {
	for command := range commandCh {
		if err := e.update(command); err != nil {
			log.Printf("command failed: %v\n", err)
		}
	}
	log.Println("processCommands() ended.")
}

func (e *Engine) Read(buf []byte) (int, error) {
	select {
	case <-e.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
		e.state.Lock()
		defer e.state.Unlock()
		bufSamples := int64(len(buf) / bytesPerSample)
		offset := e.pos % fftSize
		out := e.state.out[offset : offset+bufSamples]
		for i := range out {
			out[i] = e.state.renderSample()
		}
		writeBuffer(e.state.out, offset, buf, 0)
		writeBuffer(e.state.out, offset, buf, 1)
		e.pos += bufSamples
		return len(buf), nil
	}
}

func writeBuffer(out []float64, outOffset int64, buf []byte, ch int) {
	sampleLength := int(len(buf) / bytesPerSample)
	for i := 0; i < sampleLength; i++ {
		value := out[outOffset+int64(i)]
		switch bitDepthInBytes {
		case 1:
			const max = 127
			b := int(value * max)
			buf[bytesPerSample*i+ch] = byte(b + 128)
		case 2:
			const max = 32767
			b := int16(value * max)
			buf[bytesPerSample*i+2*ch] = byte(b)
			buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
		}
	}
}

func (e *Engine) update(command []string) error {
	e.state.Lock()
	defer e.state.Unlock()

	switch command[0] {
	case "set":
		if err := e.updateSet(command[1:]); err != nil {
			return err
		}
		e.Changes.Add("data")
	case "step":
		track, step, err := parseTrackStep(command[1:])
		if err != nil {
			return err
		}
		e.state.tracks[track].setStep(step, command[3] == "on")
		e.Changes.Add("data")
	case "vel":
		track, step, err := parseTrackStep(command[1:])
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(command[3], 64)
		if err != nil {
			return err
		}
		e.state.tracks[track].stepVel[step] = clamp(v, 0, 1)
		e.Changes.Add("data")
	case "pitch":
		track, step, err := parseTrackStep(command[1:])
		if err != nil {
			return err
		}
		v, err := strconv.ParseInt(command[3], 10, 64)
		if err != nil {
			return err
		}
		e.state.tracks[track].stepPitch[step] = int(clamp(float64(v), -8, 7))
		e.Changes.Add("data")
	case "play":
		e.state.sequencer.play()
	case "stop":
		e.state.sequencer.stop()
	case "trigger":
		track, err := parseTrackIndex(command[1])
		if err != nil {
			return err
		}
		velocity := 1.0
		if len(command) > 2 {
			velocity, err = strconv.ParseFloat(command[2], 64)
			if err != nil {
				return err
			}
		}
		e.triggerTrack(track, velocity)
	case "note_off":
		track, err := parseTrackIndex(command[1])
		if err != nil {
			return err
		}
		e.state.voices[track].NoteOff()
	case "apply":
		if err := decodeState(command[1], e.state.tracks); err != nil {
			return err
		}
		e.Changes.Add("data")
	case "kit":
		if err := e.state.kits.applyToTracks(command[1], e.state.tracks); err != nil {
			return err
		}
		e.Changes.Add("data")
	default:
		return fmt.Errorf("unknown command %v", command[0])
	}
	return nil
}

func (e *Engine) updateSet(command []string) error {
	switch command[0] {
	case "bpm":
		v, err := strconv.ParseFloat(command[1], 64)
		if err != nil {
			return err
		}
		e.state.sequencer.setBpm(v)
		return nil
	case "track":
		track, err := parseTrackIndex(command[1])
		if err != nil {
			return err
		}
		t := e.state.tracks[track]
		command = command[2:]
		switch command[0] {
		case "op":
			index, err := strconv.ParseInt(command[1], 10, 64)
			if err != nil {
				return err
			}
			if index < 0 || index >= numOperators {
				return fmt.Errorf("operator index out of range: %v", index)
			}
			if len(command) != 4 {
				return fmt.Errorf("invalid key-value pair %v", command[2:])
			}
			return t.operators[index].set(command[2], command[3])
		case "lfo":
			if len(command) != 3 {
				return fmt.Errorf("invalid key-value pair %v", command[1:])
			}
			return t.lfo.set(command[1], command[2])
		case "pitch_env":
			if len(command) != 3 {
				return fmt.Errorf("invalid key-value pair %v", command[1:])
			}
			return t.pitchEnv.set(command[1], command[2])
		default:
			if len(command) != 2 {
				return fmt.Errorf("invalid key-value pair %v", command)
			}
			return t.set(command[0], command[1])
		}
	}
	return fmt.Errorf("unknown target %v", command[0])
}

func parseTrackIndex(s string) (int, error) {
	track, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if track < 0 || track >= numTracks {
		return 0, fmt.Errorf("track index out of range: %v", track)
	}
	return int(track), nil
}

func parseTrackStep(command []string) (int, int, error) {
	if len(command) < 3 {
		return 0, 0, fmt.Errorf("invalid step command %v", command)
	}
	track, err := parseTrackIndex(command[0])
	if err != nil {
		return 0, 0, err
	}
	step, err := strconv.ParseInt(command[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	if step < 0 || step >= numSteps {
		return 0, 0, fmt.Errorf("step index out of range: %v", step)
	}
	return track, int(step), nil
}

// triggerTrack plays a pad hit with the track's current params.
// Caller must hold the state lock.
func (e *Engine) triggerTrack(track int, velocity float64) {
	t := e.state.tracks[track]
	e.state.voices[track].Trigger(
		t.frequency,
		t.noteLength,
		t.operators,
		t.lfo,
		t.algorithm,
		t.pitchEnv,
		velocity,
	)
	e.state.duck.trigger(track, e.state.tracks)
}

// ----- External surfaces ----- //

// ApplyJSON ...
func (e *Engine) ApplyJSON(data []byte) {
	e.state.Lock()
	defer e.state.Unlock()
	e.state.applyJSON(data)
}

// ToJSON ...
func (e *Engine) ToJSON() []byte {
	e.state.Lock()
	defer e.state.Unlock()
	bytes, err := json.Marshal(e.state.toJSON())
	if err != nil {
		panic(err)
	}
	return bytes
}

// EncodeState returns the compact URL-safe snapshot of all tracks.
func (e *Engine) EncodeState() string {
	e.state.Lock()
	defer e.state.Unlock()
	return encodeState(e.state.tracks)
}

// KitNames returns the names of the kit presets available on disk.
func (e *Engine) KitNames() ([]string, error) {
	e.state.Lock()
	defer e.state.Unlock()
	list, err := e.state.kits.getList()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(list))
	for i, kit := range list {
		names[i] = kit.name
	}
	return names, nil
}

// Levels returns the per-track peak levels since the last call.
func (e *Engine) Levels() [numTracks]float64 {
	e.state.Lock()
	defer e.state.Unlock()
	var levels [numTracks]float64
	for i, m := range e.state.meters {
		levels[i] = m.Peak()
	}
	return levels
}

// GetFFT ...
func (e *Engine) GetFFT() []float64 {
	e.state.Lock()
	// out:       | 4 | 1 | 2 | 3 |
	// offset:        ^
	// fftResult: | 1 | 2 | 3 | 4 |
	// return:    |<----->|
	offset := e.pos % fftSize
	copy(e.fftResult, e.state.out[offset:])
	copy(e.fftResult[fftSize-offset:], e.state.out[:offset])
	e.state.Unlock()
	hanWindow(e.fftResult)
	e.fft.calcAbs(e.fftResult)
	for i, value := range e.fftResult {
		e.fftResult[i] = value * 2 / fftSize
	}
	return e.fftResult[:fftSize/2]
}

// AddMidiEvent maps incoming MIDI to pad hits: note-on triggers the mapped
// track, note-off releases it.
func (e *Engine) AddMidiEvent(data []byte) {
	if len(data) < 3 {
		return
	}
	e.state.Lock()
	defer e.state.Unlock()
	if data[0]>>4 == 8 || data[0]>>4 == 9 && data[2] == 0 {
		e.state.voices[trackForNote(int(data[1]))].NoteOff()
	} else if data[0]>>4 == 9 && data[2] > 0 {
		e.triggerTrack(trackForNote(int(data[1])), float64(data[2])/127)
	}
}

// trackForNote follows the GM drum map for the usual pads and falls back to
// a modulo spread for everything else.
func trackForNote(note int) int {
	switch note {
	case 35, 36: // kick
		return 0
	case 38, 40: // snare
		return 1
	case 42, 44: // closed hat
		return 2
	case 46, 49: // open hat / crash
		return 3
	default:
		return note % numTracks
	}
}

// Close ...
func (e *Engine) Close() error {
	log.Println("Closing Engine...")
	close(e.CommandCh)
	if e.otoContext == nil {
		return nil
	}
	return e.otoContext.Close()
}

// Start ...
func (e *Engine) Start(ctx context.Context) error {
	p := e.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	e.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, e, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}
