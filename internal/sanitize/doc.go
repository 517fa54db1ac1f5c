// Package sanitize turns raw package-manager output lines into the short,
// readable form shown on the console.
//
// Sanitize is pure: it performs no I/O and keeps no state, so the same raw line
// always produces the same console line.
package sanitize
