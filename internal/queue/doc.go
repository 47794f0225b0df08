// Package queue holds pending traffic alerts between the intake and the
// single dispatcher goroutine. Entries are deduplicated by identifier and
// keep their original position when a newer report replaces them.
package queue
