package handlers

import (
	"context"
	"net/http"

	"khidmaBack/internal/models"
)

type actorKey struct{}

// WithActor stores the authenticated user in ctx.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the authenticated user, if any.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(models.Actor)
	return actor, ok
}

func actorOf(r *http.Request) models.Actor {
	actor, _ := ActorFrom(r.Context())
	return actor
}

func viewerOf(r *http.Request) *models.Actor {
	if actor, ok := ActorFrom(r.Context()); ok {
		return &actor
	}
	return nil
}
