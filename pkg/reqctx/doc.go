// Package reqctx carries request-scoped data through context.Context.
//
// HTTP middleware sets RequestMeta on every request and an Identity on
// authenticated ones:
//
//	ctx = reqctx.WithIdentity(ctx, reqctx.Identity{UserID: id, Role: role})
//
//	if id, ok := reqctx.IdentityFromContext(ctx); ok && id.IsPractitioner() {
//	    ...
//	}
//
// All keys are unexported; access goes through the typed helpers.
package reqctx
