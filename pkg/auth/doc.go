// Package auth authenticates callers from signed session tokens.
//
// Tokens are HS256 JWTs carried either as "Authorization: Bearer <token>" or
// in the session cookie. Claims map onto User:
//
//	sub           user id
//	role          student | usuario | superadmin
//	empresa_id    tenant membership, optional
//	is_admin      admin flag scoped to that tenant
//	user_metadata.empresa_id  tenant id cached in session metadata
//
// Verifying a request:
//
//	authn, err := auth.NewTokenAuthenticator(cfg)
//	user, err := authn.Authenticate(r, auth.RoleUsuario, auth.RoleSuperAdmin)
//	switch {
//	case errors.Is(err, auth.ErrUnauthenticated):
//		// 401
//	case errors.Is(err, auth.ErrRoleNotAllowed):
//		// 403
//	}
//
// Middleware attaches the user to the request context for API routes;
// handlers read it back with UserFromContext.
package auth
