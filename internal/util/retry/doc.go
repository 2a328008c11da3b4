// Package retry provides exponential backoff retry logic for transient failures.
//
// The [Do] function retries an operation under a fixed attempt budget with
// a configurable backoff curve. It is used for reachability test execs and
// other cluster API calls that may fail transiently.
package retry
