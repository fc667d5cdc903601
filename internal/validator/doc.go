// Package validator scores a task attempt against the task's reference
// definition.
//
// References live in one versioned Table keyed by task identifier. Three
// task kinds are supported:
//   - shape: the ink is fitted to a circle or regular polygon
//   - tokens: recorded responses are matched against expected words
//   - sequence: the visiting order of targets is compared with the expected order
//
// An unknown task identifier yields ir.ErrCodeUnsupportedTask, never a
// score of 0, so callers can tell "scored poorly" from "cannot be scored".
package validator
