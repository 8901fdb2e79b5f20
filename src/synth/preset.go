package synth

import (
	"encoding/json"
	"io/ioutil"
)

// ----- Kit Presets ----- //

type kitMetaJSON struct {
	Name string `json:"name"`
}
type kitMetaListJSON struct {
	Items []kitMetaJSON `json:"items"`
}
type kitMeta struct {
	name string
}
type kitManager struct {
	dir  string
	list []*kitMeta
}

func newKitManager(dir string) *kitManager {
	return &kitManager{dir: dir}
}

func (km *kitManager) getList() ([]*kitMeta, error) {
	if km.list == nil {
		if err := km.loadList(); err != nil {
			return nil, err
		}
	}
	return km.list, nil
}

// applyToTracks loads a named kit file (the tracks section of the engine's
// JSON form) onto the given tracks.
func (km *kitManager) applyToTracks(name string, tracks [numTracks]*trackParams) error {
	bytes, err := ioutil.ReadFile(km.dir + "/" + name + ".json")
	if err != nil {
		return err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(bytes, &items); err != nil {
		return err
	}
	for i, t := range tracks {
		if i < len(items) {
			t.applyJSON(items[i])
		}
	}
	return nil
}

func (km *kitManager) loadList() error {
	bytes, err := ioutil.ReadFile(km.dir + "/_list.json")
	if err != nil {
		return err
	}
	metaList := &kitMetaListJSON{}
	if err := json.Unmarshal(bytes, metaList); err != nil {
		return err
	}
	km.list = make([]*kitMeta, len(metaList.Items))
	for i, item := range metaList.Items {
		km.list[i] = &kitMeta{name: item.Name}
	}
	return nil
}

// defaultKit programs the built-in kick/snare/hat/perc kit used before any
// preset or saved state is applied.
func defaultKit(tracks [numTracks]*trackParams) {
	kick := tracks[0]
	kick.frequency = 50
	kick.noteLength = 0.4
	kick.algorithm = algorithmSerial
	kick.operators[0] = &operatorParams{ratio: 1, level: 0, attack: 0.001, decay: 0.1, sustain: 0, release: 0.05}
	kick.operators[1] = &operatorParams{ratio: 1, level: 0, attack: 0.001, decay: 0.1, sustain: 0, release: 0.05}
	kick.operators[2] = &operatorParams{ratio: 1, level: 0.4, attack: 0.001, decay: 0.12, sustain: 0, release: 0.05, feedback: 0.2}
	kick.operators[3] = &operatorParams{ratio: 1, level: 0.9, attack: 0.001, decay: 0.3, sustain: 0, release: 0.08}
	kick.pitchEnv.attack = 0.01
	kick.pitchEnv.decay = 0.08
	kick.pitchEnv.depth = 2.5

	snare := tracks[1]
	snare.frequency = 180
	snare.noteLength = 0.25
	snare.algorithm = algorithmHybrid1
	snare.operators[0] = &operatorParams{noise: true, ratio: 1, level: 0.7, attack: 0.001, decay: 0.15, sustain: 0, release: 0.06}
	snare.operators[1] = &operatorParams{ratio: 1, level: 0.5, attack: 0.001, decay: 0.12, sustain: 0, release: 0.05}
	snare.operators[2] = &operatorParams{ratio: 2.4, level: 0.3, attack: 0.001, decay: 0.08, sustain: 0, release: 0.04}
	snare.operators[3] = &operatorParams{ratio: 1.7, level: 0.4, attack: 0.001, decay: 0.1, sustain: 0, release: 0.05}
	snare.duckAmount = 0.4
	snare.duckRelease = 0.15

	hat := tracks[2]
	hat.frequency = 320
	hat.noteLength = 0.08
	hat.algorithm = algorithmSerial
	hat.operators[0] = &operatorParams{noise: true, ratio: 1, level: 0.6, attack: 0.001, decay: 0.04, sustain: 0, release: 0.02}
	hat.operators[1] = &operatorParams{ratio: 5.1, level: 0.5, attack: 0.001, decay: 0.05, sustain: 0, release: 0.02}
	hat.operators[2] = &operatorParams{ratio: 3.3, level: 0.4, attack: 0.001, decay: 0.05, sustain: 0, release: 0.02}
	hat.operators[3] = &operatorParams{ratio: 1, level: 0.5, attack: 0.001, decay: 0.06, sustain: 0, release: 0.03}
	hat.duckAmount = 0.6
	hat.duckRelease = 0.12

	perc := tracks[3]
	perc.frequency = 220
	perc.noteLength = 0.2
	perc.algorithm = algorithmHybrid2
	perc.operators[0] = &operatorParams{ratio: 3.7, level: 0.4, attack: 0.001, decay: 0.07, sustain: 0, release: 0.04}
	perc.operators[1] = &operatorParams{ratio: 1.4, level: 0.5, attack: 0.001, decay: 0.12, sustain: 0, release: 0.06}
	perc.operators[2] = &operatorParams{ratio: 1, level: 0.7, attack: 0.001, decay: 0.16, sustain: 0, release: 0.07}
	perc.operators[3] = &operatorParams{ratio: 2, level: 0.3, attack: 0.001, decay: 0.1, sustain: 0, release: 0.05}
	perc.duckAmount = 0.3
	perc.duckRelease = 0.2
}
