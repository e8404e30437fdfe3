// Package attendance implements the enrollment and identification workflows
// and the attendance recorder they feed.
//
// Both workflows follow the same discipline: validate before touching
// hardware, acquire the capture session through the session manager, and
// guarantee the session closes on every exit path. Identification is the only
// writer of clocking records; a successful match produces exactly one.
package attendance
