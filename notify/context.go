package notify

import "context"

type ctxKey struct{}

// WithNotifier returns a context whose notices go to n.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, ctxKey{}, n)
}

// FromContext returns the notifier stored in ctx, or Nop.
func FromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(ctxKey{}).(Notifier); ok && n != nil {
		return n
	}
	return Nop
}
