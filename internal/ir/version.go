package ir

// Version constants for the data model and the default tables.
const (
	// Version is the graphomotor module version.
	Version = "0.1.0"

	// FeatureVocabularyVersion names the feature key set produced by extraction.
	FeatureVocabularyVersion = "fv1"

	// WeightTableVersion is the version of the built-in risk weight table.
	WeightTableVersion = "w1"

	// ReferenceTableVersion is the version of the embedded task reference table.
	ReferenceTableVersion = "r1"
)
