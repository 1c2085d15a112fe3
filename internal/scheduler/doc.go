// Package scheduler runs independent asynchronous tasks under a concurrency
// cap while preserving input order in the results.
//
// The first task failure rejects the whole batch immediately. In-flight
// siblings are not cancelled; they run to completion in the background and
// their results are discarded, which keeps failure reporting prompt without
// pretending the scheduler can abort arbitrary work. Retries are the
// caller's business, per task.
package scheduler
