// Package harness provides conformance testing for the analysis pipeline.
//
// A scenario describes one or more task attempts by the same user, the
// drawing for each attempt, and what the analysis must conclude. The
// harness runs every step through the real pipeline, persists each
// analysis in a private in-memory store, and feeds the stored task
// records of earlier steps into later ones.
//
// # Scenario Format
//
//	name: circle_then_recall
//	description: "A clean circle followed by a partial recall"
//	user: u1
//	prior_records:
//	  - {task_id: word_recall, score: 0.4, accuracy: 0.4, response_time_ms: 9000, error_count: 3}
//	steps:
//	  - task: clock_circle
//	    draw:
//	      - {shape: circle, x: 200, y: 200, r: 120, samples: 72}
//	    expect:
//	      passed: true
//	      min_conformance: 0.9
//	  - task: word_recall
//	    responses: [apple, book]
//	    expect:
//	      deviations: ["missing_word:CAR"]
//	      task_evidence: 3
//
// A step either draws strokes with the built-in generators (circle,
// polygon, line, tap, points) or loads a captured session from a file
// (application JSON export or .rm page) relative to the scenario file.
//
// # Deterministic Testing
//
// Strokes are timed by testutil.SampleClock, analysis IDs come from
// testutil.SequenceIDGenerator, and the configuration is the built-in
// default unless the scenario names a config file. Identical scenarios
// therefore produce byte-identical canonical snapshots for golden file
// comparison.
package harness
