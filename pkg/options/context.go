package options

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying o.
func NewContext(ctx context.Context, o *Options) context.Context {
	return context.WithValue(ctx, ctxKey{}, o)
}

// FromContext returns the options stored in ctx, or Default() when none are.
func FromContext(ctx context.Context) *Options {
	if o, ok := ctx.Value(ctxKey{}).(*Options); ok && o != nil {
		return o
	}
	return Default()
}
