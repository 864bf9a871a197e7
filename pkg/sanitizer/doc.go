// Package sanitizer provides input normalization for scheduling data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Emails: lowercase, trim surrounding whitespace
//   - Time zones: canonical IANA form ("america/new_york" becomes "America/New_York")
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Slugs: lowercase, non-alphanumerics collapsed to single hyphens
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
