package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProgram  = "tapec/program/v1"
	DomainArtifact = "tapec/artifact/v1"
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

// ProgramHash computes the content address of an IR tree. Two sources that
// differ only in comments parse to the same tree and share a hash.
func ProgramHash(b Block) (string, error) {
	canonical, err := MarshalCanonical(Encode(b))
	if err != nil {
		return "", fmt.Errorf("ProgramHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProgram, canonical), nil
}

// ArtifactKey identifies one compilation: the parsed program, the backend
// and every parameter that changes the emitted code.
func ArtifactKey(b Block, backend string, params map[string]any) (string, error) {
	obj := map[string]any{
		"program": Encode(b),
		"backend": backend,
		"params":  params,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ArtifactKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainArtifact, canonical), nil
}

// MustProgramHash is like ProgramHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustProgramHash(b Block) string {
	h, err := ProgramHash(b)
	if err != nil {
		panic(err)
	}
	return h
}
