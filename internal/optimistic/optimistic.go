// Package optimistic applies a tentative change to an in-memory value,
// commits it, and restores the previous value if the commit fails.
package optimistic

import "context"

// Apply sets *target to next, then runs commit. When commit fails the
// snapshot taken before the change is written back and the commit error is
// returned, so the caller can surface it while keeping a consistent view.
func Apply[T any](ctx context.Context, target *T, next T, commit func(ctx context.Context) error) error {
	prev := *target
	*target = next
	if err := commit(ctx); err != nil {
		*target = prev
		return err
	}
	return nil
}

// Toggle flips a boolean flag with Apply semantics and returns the value the
// flag holds afterwards.
func Toggle(ctx context.Context, flag *bool, commit func(ctx context.Context, value bool) error) (bool, error) {
	next := !*flag
	err := Apply(ctx, flag, next, func(ctx context.Context) error {
		return commit(ctx, next)
	})
	return *flag, err
}
