// Package ir provides the value algebra shared by the query pipeline.
//
// This package contains value types and their serialization only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// property representation the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Integers and floats are distinct types (IRInt, IRFloat) end to end
//   - Property maps are stored as canonical JSON (sorted keys, NFC strings)
//   - A null-valued property is the same as an absent property
//   - NaN and infinities are rejected at the conversion boundary
package ir
