// Package core defines the shared language of leaprecord.
//
// This package contains:
//   - Row values (Row, Kind, Normalize)
//   - Connection vocabulary (AdapterConfig, FetchShape, ErrorClass, StatementKind)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
