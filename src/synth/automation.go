package synth

// ----- Automation Schedule ----- //

const (
	pointHold = iota
	pointLinearRamp
)

type schedulePoint struct {
	time  int64
	value float64
	kind  int
}

// param is a scheduled automation value: a time-sorted list of hold and ramp
// points evaluated lazily by the render clock. Writers only append or truncate,
// the render side only reads, so a note's whole envelope can be installed
// up front and consumed sample by sample.
type param struct {
	initial float64
	points  []schedulePoint
}

func newParam(initial float64) *param {
	return &param{initial: initial}
}

func (p *param) insert(point schedulePoint) {
	i := len(p.points)
	for i > 0 && p.points[i-1].time > point.time {
		i--
	}
	p.points = append(p.points, schedulePoint{})
	copy(p.points[i+1:], p.points[i:])
	p.points[i] = point
}

// setValueAt holds the value from the given time until the next point.
func (p *param) setValueAt(time int64, value float64) {
	p.insert(schedulePoint{time: time, value: value, kind: pointHold})
}

// linearRampTo ramps from the chronologically previous point to the given
// value, reaching it exactly at the given time.
func (p *param) linearRampTo(time int64, value float64) {
	p.insert(schedulePoint{time: time, value: value, kind: pointLinearRamp})
}

// cancelAfter drops every point scheduled strictly after the given time.
func (p *param) cancelAfter(time int64) {
	kept := p.points[:0]
	for _, point := range p.points {
		if point.time <= time {
			kept = append(kept, point)
		}
	}
	p.points = kept
}

func (p *param) valueAt(time int64) float64 {
	prevValue := p.initial
	prevTime := int64(0)
	for _, point := range p.points {
		if point.time > time {
			if point.kind == pointLinearRamp {
				if point.time == prevTime {
					return point.value
				}
				t := float64(time-prevTime) / float64(point.time-prevTime)
				return prevValue + (point.value-prevValue)*t
			}
			return prevValue
		}
		prevValue = point.value
		prevTime = point.time
	}
	return prevValue
}
