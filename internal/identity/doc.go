// Package identity persists enrolled identities and the append-only
// attendance ledger in SQLite.
//
// Each identity carries exactly one encoded fingerprint template keyed by its
// external key (the national ID in the original deployment). Upserts replace
// the template in place so re-enrollment never duplicates a person. Clockings
// reference identities by row ID and are only ever appended.
package identity
