package addresspool

import "fmt"

// ErrPoolExhausted is returned by LeaseAnAddress when a pool's arena has
// grown to its configured size and every slot is in use.
var ErrPoolExhausted = poolExhaustedError{}

type poolExhaustedError struct{}

func (poolExhaustedError) Error() string { return "no free address in addresspool" }

// PoolOverlapError is returned by Registry.Install/Find when a requested
// range partially overlaps an already-installed pool without matching it
// exactly. The pool is not installed.
type PoolOverlapError struct {
	New, Existing Range
}

func (e *PoolOverlapError) Error() string {
	return fmt.Sprintf("ERROR: partial overlap of addresspool: %s-%s overlaps existing %s-%s",
		e.New.Start, e.New.End, e.Existing.Start, e.Existing.End)
}
