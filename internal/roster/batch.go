package roster

import "context"

// Batch sign-in/out. The remote store has no multi-row transaction, so
// batches are processed strictly sequentially (interleaved appends
// would race the store's append semantics) and report partial results
// instead of failing atomically.

// BatchFailure records one failed child in a batch operation.
type BatchFailure struct {
	ChildID int
	Err     error
}

// BatchResult summarizes a batch sign-in or sign-out.
type BatchResult struct {
	Succeeded []int          // applied remotely
	Queued    []int          // applied to the projection, pending offline replay
	Failed    []BatchFailure // not applied
}

// OK reports whether every child in the batch was applied or queued.
func (r BatchResult) OK() bool {
	return len(r.Failed) == 0
}

// SignInAll signs in the given children one at a time.
func (c *Cache) SignInAll(ctx context.Context, childIDs []int) BatchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res BatchResult
	for _, id := range childIDs {
		_, err := c.signInLocked(ctx, id)
		res.record(id, err)
	}
	return res
}

// SignOutAll signs out the given children one at a time.
func (c *Cache) SignOutAll(ctx context.Context, childIDs []int) BatchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res BatchResult
	for _, id := range childIDs {
		_, err := c.signOutLocked(ctx, id)
		res.record(id, err)
	}
	return res
}

func (r *BatchResult) record(id int, err error) {
	switch {
	case err == nil:
		r.Succeeded = append(r.Succeeded, id)
	case patchable(err):
		r.Queued = append(r.Queued, id)
	default:
		r.Failed = append(r.Failed, BatchFailure{ChildID: id, Err: err})
	}
}
