// Package model provides the shared identity and naming types for syscov.
//
// This package contains type definitions and pure helpers only. Other
// internal packages import model; model imports nothing internal. This keeps
// event identity, archive entry names and fingerprints in one foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Event identity is the (run, subrun, event, nu_id) tuple; nu_id -1 marks
//     a cosmic-origin record
//   - Archive entry names are built only through the helpers in names.go
//   - Fingerprints use SHA-256 with domain separation
package model
