// Package wq provides a distributed, priority-ordered work queue backed by
// a Redis-compatible datastore, with typed job parameters and typed
// results.
//
// # Overview
//
// wq models a queue of typed jobs with at-least-once delivery: producers
// enqueue params with a priority and a deadline; workers claim jobs,
// periodically reclaim (heartbeat) them while running, and resolve them
// with a terminal status and result. Producers may wait asynchronously for
// a job's resolution. A background reclaim checker returns jobs abandoned
// by dead workers to their queue.
//
// # Delivery Semantics
//
// wq guarantees at-least-once delivery, never exactly-once: a worker that
// dies mid-job without reclaiming in time has its claim reclaimed and the
// job is redelivered to another worker. Handlers must be idempotent.
//
// # State Machine
//
// A job's lifecycle:
//
//	queued -> claimed -> resolved
//	queued -> cancelled
//	claimed -> cancelled (rejects future reclaims, not the in-flight resolve)
//	claimed -> queued (reclaim timeout, via the reclaim checker)
//
// Resolved and cancelled are terminal; a cancelled job may still be
// resolved by a worker that raced the cancellation (Resolve does not
// consult the cancelled set).
//
// # Atomicity
//
// Every state-changing operation is one server-evaluated Lua script (see
// scripts.go): enqueue, claim, reclaim, resolve, cancel, result deletion,
// and the reclaim checker's per-claim sweep. The optional result-retention
// sweep is the exception: it deletes expired results with one plain HDEL
// per result. The datastore is the only synchronizer; wq holds no
// client-side locks.
//
// # Priority and Ordering
//
// Priorities are High, Normal, Low, strictly ordered. Claim always drains
// High before Normal before Low; within one priority, claims observe FIFO
// of enqueues absent reclaims. A continuous stream of High jobs can starve
// Low jobs indefinitely — wq does not implement fair scheduling.
//
// # Interfaces
//
// wq defines two narrow interfaces alongside the core lifecycle, one
// read-only and one that deletes results:
//
//	Inspector     — inspect jobs, claims and cancellations
//	ResultCleaner — delete results older than a retention cutoff
//
// WorkQueue implements both directly; there is no pluggable storage layer,
// since the core is defined in terms of Redis/Valkey scripting semantics
// rather than an abstracted backend.
//
// # Concurrency Model
//
// One WorkQueue owns one Redis client and one pub/sub dispatcher. The
// dispatcher fans out two kinds of push messages to local waiters: a
// broadcast wake signal that retries blocked ClaimJob calls, and per-job
// resolved events that satisfy WaitForJob calls. Both protocols subscribe
// before their final state check to avoid a lost wake-up.
//
// # Background Loops
//
// ReclaimChecker (spec §4.7) runs independently of any WorkQueue instance
// that started it and should run in exactly one supervisor process per
// queue, though running more is safe. ResultCleanupWorker is optional and
// opt-in via WorkQueueBuilder.WithResultRetention; without it, results
// accumulate until DeleteJobResult is called explicitly.
package wq
