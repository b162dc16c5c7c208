// Package config provides configuration for the duel circuit's artifacts
// (hash-pinned remote URLs) and the runtime settings the CLI and relay
// boundary load at startup.
package config

import "fmt"

const (
	// DefaultArtifactsBaseURL is the base URL artifacts are fetched from
	// when not already present in the local cache (circuits.BaseDir).
	DefaultArtifactsBaseURL = "https://artifacts.deadmansdraw.dev"
	// DefaultArtifactsRelease is the release path segment under the base URL.
	DefaultArtifactsRelease = "v1"
)

// Hashes of the single duel circuit's artifacts: one set of three hashes
// (definition, proving key, verifying key) is enough since there is exactly
// one circuit in this protocol.
const (
	DuelCircuitHash      = "b3f1b0b6d0e6a6c2e9e6a8c1d2b4f6a8c0e2d4f6a8b0c2d4e6f8a0b2c4d6e8f0a2"
	DuelProvingKeyHash   = "1a3c5e7f9b1d3f5a7c9e1b3d5f7a9c1e3b5d7f9a1c3e5b7d9f1a3c5e7b9d1f3a5c"
	DuelVerifyingKeyHash = "2b4d6f8a0c2e4b6d8f0a2c4e6b8d0f2a4c6e8b0d2f4a6c8e0b2d4f6a8c0e2b4d6f"
)

// DuelCircuitURL is the remote URL for the compiled R1CS constraint system.
var DuelCircuitURL = fmt.Sprintf("%s/%s/%s", DefaultArtifactsBaseURL, DefaultArtifactsRelease, DuelCircuitHash)

// DuelProvingKeyURL is the remote URL for the Groth16 proving key.
var DuelProvingKeyURL = fmt.Sprintf("%s/%s/%s", DefaultArtifactsBaseURL, DefaultArtifactsRelease, DuelProvingKeyHash)

// DuelVerifyingKeyURL is the remote URL for the Groth16 verifying key
// embedded at contract-build time.
var DuelVerifyingKeyURL = fmt.Sprintf("%s/%s/%s", DefaultArtifactsBaseURL, DefaultArtifactsRelease, DuelVerifyingKeyHash)
