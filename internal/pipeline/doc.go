// Package pipeline runs the analysis of one completed task attempt:
// normalize, extract features, validate against the task reference and
// aggregate with prior task records.
//
// The surrounding application calls Analyze once a task is marked
// complete. All tunables travel in the Analyzer value; nothing is read
// from process-wide state. Independent sessions may be analyzed in
// parallel with AnalyzeBatch.
//
// This is the only layer of the analysis path that logs.
package pipeline
