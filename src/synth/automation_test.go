package synth

import "testing"

func TestParamHold(t *testing.T) {
	p := newParam(0.5)
	expectNearlyEqual(t, p.valueAt(0), 0.5)
	p.setValueAt(100, 0.2)
	expectNearlyEqual(t, p.valueAt(0), 0.5)
	expectNearlyEqual(t, p.valueAt(99), 0.5)
	expectNearlyEqual(t, p.valueAt(100), 0.2)
	expectNearlyEqual(t, p.valueAt(10000), 0.2)
}

func TestParamLinearRamp(t *testing.T) {
	p := newParam(0)
	p.setValueAt(100, 0)
	p.linearRampTo(200, 1)
	expectNearlyEqual(t, p.valueAt(100), 0)
	expectNearlyEqual(t, p.valueAt(150), 0.5)
	expectNearlyEqual(t, p.valueAt(175), 0.75)
	expectNearlyEqual(t, p.valueAt(200), 1)
	expectNearlyEqual(t, p.valueAt(300), 1)
}

func TestParamRampChain(t *testing.T) {
	p := newParam(0)
	p.setValueAt(0, 0)
	p.linearRampTo(100, 1)
	p.linearRampTo(300, 0.5)
	expectNearlyEqual(t, p.valueAt(50), 0.5)
	expectNearlyEqual(t, p.valueAt(100), 1)
	expectNearlyEqual(t, p.valueAt(200), 0.75)
	expectNearlyEqual(t, p.valueAt(300), 0.5)
}

func TestParamCancelAfter(t *testing.T) {
	p := newParam(0)
	p.setValueAt(100, 0.4)
	p.linearRampTo(200, 1)
	p.cancelAfter(150)
	expectNearlyEqual(t, p.valueAt(180), 0.4)
	expectNearlyEqual(t, p.valueAt(1000), 0.4)
}

func TestParamLastPointWinsAtSameTime(t *testing.T) {
	p := newParam(0)
	p.setValueAt(100, 0.3)
	p.setValueAt(100, 0.8)
	expectNearlyEqual(t, p.valueAt(100), 0.8)
}

func TestParamOutOfOrderInsertKeepsSorted(t *testing.T) {
	p := newParam(0)
	p.setValueAt(200, 0.2)
	p.setValueAt(100, 0.1)
	expectNearlyEqual(t, p.valueAt(150), 0.1)
	expectNearlyEqual(t, p.valueAt(250), 0.2)
}
