// Package capture owns the fingerprint reader: enumeration, exclusive
// session acquisition, and the blocking enroll and identify operations.
//
// The reader itself is driven through the Device interface, implemented by an
// external helper binary so the pipeline never links against driver code.
// SessionManager enforces that exactly one session is open at a time, both
// in-process and across processes, and Session guarantees the device is
// closed exactly once on every exit path.
package capture
