package synth

import "testing"

func TestSerialPlan(t *testing.T) {
	plan := routingPlan(algorithmSerial)
	expectEqual(t, plan[0], opRoute{target: 1, modIndex: 1000})
	expectEqual(t, plan[1], opRoute{target: 2, modIndex: 800})
	expectEqual(t, plan[2], opRoute{target: 3, modIndex: 600})
	expectEqual(t, plan[3], opRoute{target: carrier})
}

func TestParallelPlan(t *testing.T) {
	plan := routingPlan(algorithmParallel)
	for i := 0; i < numOperators; i++ {
		expectEqual(t, plan[i].target, carrier)
	}
}

func TestHybridPlans(t *testing.T) {
	plan := routingPlan(algorithmHybrid1)
	expectEqual(t, plan[0], opRoute{target: 1, modIndex: 1000})
	expectEqual(t, plan[1], opRoute{target: carrier})
	expectEqual(t, plan[2], opRoute{target: 3, modIndex: 1000})
	expectEqual(t, plan[3], opRoute{target: carrier})

	plan = routingPlan(algorithmHybrid2)
	expectEqual(t, plan[0], opRoute{target: 1, modIndex: 1000})
	expectEqual(t, plan[1], opRoute{target: 2, modIndex: 800})
	expectEqual(t, plan[2], opRoute{target: carrier})
	expectEqual(t, plan[3], opRoute{target: carrier})
}

// every operator is either a modulator of a later operator or a carrier
func TestNoOperatorLeftUnconnected(t *testing.T) {
	for algorithm := 0; algorithm < 4; algorithm++ {
		plan := routingPlan(algorithm)
		carriers := 0
		for i, route := range plan {
			if route.target == carrier {
				carriers++
				continue
			}
			if route.target <= i || route.target >= numOperators {
				t.Errorf("algorithm %v: operator %v has invalid target %v", algorithm, i, route.target)
			}
			if route.modIndex <= 0 {
				t.Errorf("algorithm %v: operator %v has no modulation index", algorithm, i)
			}
		}
		if carriers == 0 {
			t.Errorf("algorithm %v: no carrier reaches the output", algorithm)
		}
	}
}

func TestUnknownAlgorithmFallsBackToSerial(t *testing.T) {
	expectEqual(t, algorithmFromString("serial"), algorithmSerial)
	expectEqual(t, algorithmFromString("parallel"), algorithmParallel)
	expectEqual(t, algorithmFromString("hybrid1"), algorithmHybrid1)
	expectEqual(t, algorithmFromString("hybrid2"), algorithmHybrid2)
	expectEqual(t, algorithmFromString("banana"), algorithmSerial)
	expectEqual(t, algorithmFromString(""), algorithmSerial)
	expectEqual(t, routingPlan(99), routingPlan(algorithmSerial))
}
