package dedupe

// Package dedupe provides shared singleflight groups used to collapse
// concurrent identical read requests into one database query.

import "golang.org/x/sync/singleflight"

// ScoreboardGroup deduplicates scoreboard queries keyed by "top:<limit>".
var ScoreboardGroup singleflight.Group
