package api

import "context"

type ctxKey int

const currentNodeKey ctxKey = iota

// withCurrentNode records the node being dispatched so executors (and the
// resolvers they build) can attribute warnings without widening the
// Execute signature.
func withCurrentNode(ctx context.Context, node Node) context.Context {
	return context.WithValue(ctx, currentNodeKey, node)
}

// CurrentNode returns the node whose executor is running, if the context
// came through Registry.Dispatch.
func CurrentNode(ctx context.Context) (Node, bool) {
	node, ok := ctx.Value(currentNodeKey).(Node)
	return node, ok
}
