// Package access decides which tenant a caller acts for and whether that
// grants access to a requested tenant.
//
// Extractor.GetContext builds the per-request Context: superadmins may pick
// any tenant with the empresa_id query parameter; everyone else gets the
// tenant of their active membership, or the tenant cached in their session
// metadata when the membership lookup fails. Validate is a pure predicate
// over that Context.
//
// RequireAccess combines both for resource routes:
//
//	r.With(access.RequireAccess(extractor, func(r *http.Request) string {
//		return chi.URLParam(r, "empresa_id")
//	})).Get("/api/empresas/{empresa_id}/courses", listCourses)
package access
