// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

// Package profilesync keeps the local profile cache converged with the remote
// profile store.
//
// The Coordinator owns all traffic to the remote store and enforces the sync
// discipline:
//
//   - Full profile syncs are single-flight: concurrent callers join the
//     in-flight sync and share its result instead of stacking requests.
//   - Transient failures retry with linear backoff; auth failures (401/403)
//     are terminal and tear the session down immediately.
//   - Bookmark toggles apply optimistically to the local cache, then push to
//     the remote store. The remote answer replaces the local set on success;
//     the optimistic state stands on failure.
//   - Toggles for the same course id are debounced while one is in flight,
//     with a short grace period after completion to absorb double-clicks.
//
// AutoSync runs the periodic background sync and plugs into the supervision
// tree as a suture service.
package profilesync
