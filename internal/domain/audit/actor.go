package audit

import "context"

type actorKey struct{}

// SystemActor is recorded for actions the dashboard takes on its own.
const SystemActor = "system"

// WithActor returns a context that attributes audited actions to actor.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored in ctx, or "anonymous".
func ActorFrom(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok && a != "" {
		return a
	}
	return "anonymous"
}
