// Package reaper deletes catalog titles.
//
// A deletion runs five phases strictly in order on the calling goroutine:
//
//	guard -> lookup -> reclaim artifact -> delete title row -> collect orphans
//
// The filesystem and the datastore do not share a transaction. A failure after
// the title row is gone leaves the collected set partial; Collector.Sweep
// repairs that state and is safe to run repeatedly.
//
// Every checkpoint emits one lifecycle event through an EventLogger, and every
// call ends in a Result that carries either a success or an error message.
package reaper
