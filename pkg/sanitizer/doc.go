// Package sanitizer normalizes client and catalog input before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result.
// Invalid input is handled by returning an empty value rather than an error,
// leaving the decision to the validator.
//
// Normalization includes:
//   - Phone numbers: E.164 format (+[country][number])
//   - Names and free text: collapsed whitespace, trimmed, control characters removed
//   - Categories: lowercase, non-letters collapsed to underscores ("Hair Color" becomes "hair_color")
//   - Id slices: duplicates and blanks removed, order kept
package sanitizer
