// Package tasks runs collection uploads against a remote catalog with real-time progress reporting.
//
// # Pipeline
//
// [UploadEngine.Run] executes four stages in order for a single request:
//
//  1. [UploadEngine.Resolve] : find the target folder by exact name, creating it once when missing
//  2. [UploadEngine.Enumerate] : page through the folder (page size [PageSize]) into a set of release ids
//  3. [Plan] : tag each requested id Skip or Add, preserving request order
//  4. [UploadEngine.Apply] : add the pending releases one at a time, at least [AddDelay] apart
//
// Listing and enumeration failures abort the request with [shared.ErrRemoteUnavailable].
// A failed add is recorded on that release only and the batch continues.
//
// [UploadEngine.Preview] runs stages 1 to 3 without creating anything, for dry runs.
//
// # Pacing
//
// [Pacer] wraps a [rate.Limiter] and is driven by a [Clock], so tests substitute a fake clock and never sleep.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
