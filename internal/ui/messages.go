// Package ui provides the Bubble Tea TUI for cardpool.
package ui

import (
	"github.com/abelbrown/cardpool/internal/ledger"
	"github.com/abelbrown/cardpool/internal/pool"
)

// PoolFetched is sent when a pool request settles. Result.Gen identifies
// the request it answers.
type PoolFetched struct {
	Result pool.Result
}

// InteractionRecorded is sent when the remote append of an interaction
// finishes. Err is informational; the interaction is never rolled back.
type InteractionRecorded struct {
	Interaction ledger.Interaction
	Err         error
}

// InteractionsCleared is sent when a clear request settles.
type InteractionsCleared struct {
	Err error
}
