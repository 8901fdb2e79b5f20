package synth

// ----- FM Algorithm ----- //

const (
	algorithmSerial = iota
	algorithmParallel
	algorithmHybrid1
	algorithmHybrid2
)

func algorithmFromString(s string) int {
	switch s {
	case "serial":
		return algorithmSerial
	case "parallel":
		return algorithmParallel
	case "hybrid1":
		return algorithmHybrid1
	case "hybrid2":
		return algorithmHybrid2
	default:
		// unknown tags fall back to serial
		return algorithmSerial
	}
}

func algorithmToString(algorithm int) string {
	switch algorithm {
	case algorithmParallel:
		return "parallel"
	case algorithmHybrid1:
		return "hybrid1"
	case algorithmHybrid2:
		return "hybrid2"
	default:
		return "serial"
	}
}

// Modulation index in Hz per unit of modulator output. Tuned by ear, not
// derived; the constant shrinks along a modulation chain.
const (
	modIndexStage1 = 1000.0
	modIndexStage2 = 800.0
	modIndexStage3 = 600.0
)

// opRoute describes one operator's role in the wiring: either a modulator
// feeding the frequency input of ops[target], or a carrier (target < 0)
// summed into the master output.
type opRoute struct {
	target   int
	modIndex float64
}

const carrier = -1

// routingPlan is a pure description of the wiring for an algorithm.
// Targets always have a higher index than their modulators, so rendering
// in operator order sees every modulation input fully accumulated.
func routingPlan(algorithm int) [numOperators]opRoute {
	switch algorithm {
	case algorithmParallel:
		return [numOperators]opRoute{
			{target: carrier},
			{target: carrier},
			{target: carrier},
			{target: carrier},
		}
	case algorithmHybrid1:
		return [numOperators]opRoute{
			{target: 1, modIndex: modIndexStage1},
			{target: carrier},
			{target: 3, modIndex: modIndexStage1},
			{target: carrier},
		}
	case algorithmHybrid2:
		return [numOperators]opRoute{
			{target: 1, modIndex: modIndexStage1},
			{target: 2, modIndex: modIndexStage2},
			{target: carrier},
			{target: carrier},
		}
	default: // serial
		return [numOperators]opRoute{
			{target: 1, modIndex: modIndexStage1},
			{target: 2, modIndex: modIndexStage2},
			{target: 3, modIndex: modIndexStage3},
			{target: carrier},
		}
	}
}
