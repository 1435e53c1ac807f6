package repositories

import "context"

// SequenceRepository hands out monotonically increasing integers per key.
// It backs the human-readable ids (transaction numbers, account numbers)
// that used to live in ad hoc global counters.
type SequenceRepository interface {
	Next(ctx context.Context, key string) (int64, error)
}
