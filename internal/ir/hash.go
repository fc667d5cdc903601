package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed digests.
// Version suffix enables future algorithm migration.
const (
	DomainSession = "graphomotor/session/v1"
	DomainResult  = "graphomotor/result/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SessionDigest computes the content digest of a normalized session.
// Two sessions with the same strokes, elapsed time and canvas share a digest.
func SessionDigest(s HandwritingSession) (string, error) {
	canonical, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("SessionDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSession, canonical), nil
}

// ResultDigest computes the content digest of an analysis result.
// Repeated analysis of the same inputs yields the same digest.
func ResultDigest(r SessionAnalysisResult) (string, error) {
	canonical, err := MarshalCanonical(r)
	if err != nil {
		return "", fmt.Errorf("ResultDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// MustSessionDigest is like SessionDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSessionDigest(s HandwritingSession) string {
	d, err := SessionDigest(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MustResultDigest is like ResultDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustResultDigest(r SessionAnalysisResult) string {
	d, err := ResultDigest(r)
	if err != nil {
		panic(err)
	}
	return d
}
