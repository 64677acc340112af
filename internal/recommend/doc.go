// Coursegraph - Course Recommendation and Profile Sync Service
// Copyright 2026 SkillUp HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skilluphq/coursegraph

/*
Package recommend implements the preference-matching engine that ranks catalog
courses against a user's quiz-derived preferences.

The engine is pure: it holds only tuned scoring weights and depends solely on
the course list and quiz record passed in. Ranking proceeds in three stages:

 1. Filter: drop courses incompatible with the user's budget, mapped interest
    topics, and acceptable difficulty band.
 2. Score: additive relevance scoring over the survivors. Scores are a relative
    ranking signal only; there is no normalization bound.
 3. Sort: stable descending sort by score so equal-score courses keep their
    catalog order and rankings stay reproducible.

Empty results are actively avoided. With no completed quiz, an unparseable
record, or an over-constrained filter that rejects every course, the engine
falls back to the full input sorted by rating descending. The response reports
which branch produced the ranking so callers can tell an earned ranking from a
fallback.
*/
package recommend
