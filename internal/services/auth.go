package services

import (
	"context"
	"fmt"
)

// Authorizer checks that player approved the call being made. args are the
// call parameters the approval must cover.
type Authorizer interface {
	Authorize(ctx context.Context, player string, args ...any) error
}

type playerCtxKey struct{}

func WithPlayer(ctx context.Context, player string) context.Context {
	return context.WithValue(ctx, playerCtxKey{}, player)
}

func PlayerFromContext(ctx context.Context) (string, bool) {
	player, ok := ctx.Value(playerCtxKey{}).(string)
	return player, ok && player != ""
}

// ContextAuthorizer accepts a call when the identity authenticated for the
// request is the player the call acts for. The bearer token is the player's
// approval, so it covers every argument.
type ContextAuthorizer struct{}

func (ContextAuthorizer) Authorize(ctx context.Context, player string, _ ...any) error {
	caller, ok := PlayerFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no authenticated caller", ErrNotPlayer)
	}
	if caller != player {
		return fmt.Errorf("%w: %s", ErrNotPlayer, player)
	}
	return nil
}
