package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/reciclaja/reciclaja-backend/api/middleware"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
)

// requireSelfOrAdmin rejects requests targeting another user's resources
// unless the actor is an admin.
func requireSelfOrAdmin(r *http.Request, userID uuid.UUID) error {
	role := middleware.RoleFromContext(r.Context())
	if role == string(enums.UserRoleAdmin) {
		return nil
	}
	if middleware.UserIDFromContext(r.Context()) != userID.String() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return nil
}

// actorID returns the authenticated user's id from the request context.
func actorID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return id, nil
}

// isAdmin reports whether the actor carries the admin role claim.
func isAdmin(r *http.Request) bool {
	return middleware.RoleFromContext(r.Context()) == string(enums.UserRoleAdmin)
}

func errAccessDenied() error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
}
