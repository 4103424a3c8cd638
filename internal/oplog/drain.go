package oplog

import (
	"context"
	"log/slog"

	"github.com/sundaykids/rollcall/internal/sheets"
)

// Replayer executes queued operations against the remote store.
// Satisfied by (*sheets.Client).Direct(), which bypasses the offline
// queue so a replay that fails again is not enqueued a second time.
type Replayer interface {
	Write(ctx context.Context, sheet, rng string, rows [][]string) error
	Append(ctx context.Context, sheet string, rows [][]string) error
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
	Replayed int // operations confirmed applied and marked synced
	Failed   int // operations left pending for the next drain
}

// Drain replays unsynced operations in enqueue order.
//
// Successes are marked synced (retained, not deleted). Failures are
// left pending and do not stop the pass: a single bad operation must
// not block later independent writes. Drain is invoked on the
// offline-to-online transition and periodically while online.
func (l *Log) Drain(ctx context.Context, r Replayer) (DrainResult, error) {
	pending, err := l.Pending(ctx)
	if err != nil {
		return DrainResult{}, err
	}

	var res DrainResult
	for _, op := range pending {
		if err := replay(ctx, r, op); err != nil {
			slog.Warn("replay failed, leaving pending",
				"op", op.OpID, "kind", op.Kind, "sheet", op.Sheet, "error", err)
			res.Failed++
			continue
		}
		if err := l.MarkSynced(ctx, op.ID); err != nil {
			// Remote write landed but the local mark failed: the entry
			// stays pending and will replay again (at-least-once).
			return res, err
		}
		res.Replayed++
	}

	if res.Replayed > 0 || res.Failed > 0 {
		slog.Info("drained offline log", "replayed", res.Replayed, "failed", res.Failed)
	}
	return res, nil
}

func replay(ctx context.Context, r Replayer, op Operation) error {
	switch op.Kind {
	case sheets.OpAppend:
		return r.Append(ctx, op.Sheet, op.Rows)
	default:
		return r.Write(ctx, op.Sheet, op.Range, op.Rows)
	}
}
