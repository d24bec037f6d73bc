// Package harness runs scripted battles and checks their outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: duel_victory
//	description: "Hero beats the rat in three rounds"
//	content: ../content/duel.yaml   # relative to the scenario file
//	frame_dt: 0.25                  # seconds per frame
//	frames: 20                      # frame limit
//	inputs:
//	  - frame: 1
//	    command: attack 1 1
//	  - frame: 5
//	    command: attack 3 1
//	    rejected: true               # the node must refuse this input
//	expect:
//	  node: Victory
//	  winner: players
//	  frames: 9
//	  history_len: 10
//	  health: { Hero: 14, Rat: 0 }
//	  log_contains: ["Rat falls"]
//
// # Deterministic Testing
//
// Every run uses a fixed frame delta instead of the wall clock, a fixed
// battle ID and a fresh in-memory journal, so two runs of one scenario
// produce identical traces. The trace has one line per input and one line
// per frame, and is what golden files under testdata/golden hold.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/duel_victory.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
