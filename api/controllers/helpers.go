package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thehassans/sial-backend/api/middleware"
	"github.com/thehassans/sial-backend/pkg/enums"
	pkgerrors "github.com/thehassans/sial-backend/pkg/errors"
)

// actorFromContext resolves the authenticated caller's id and role.
func actorFromContext(ctx context.Context) (uuid.UUID, enums.UserRole, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	actorID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "role context missing")
	}
	return actorID, role, nil
}

// workspaceFromContext resolves the caller's workspace. Workspace owner
// accounts carry no separate workspace claim, so their own id is the
// workspace.
func workspaceFromContext(ctx context.Context) (uuid.UUID, error) {
	if raw := middleware.WorkspaceIDFromContext(ctx); raw != "" {
		workspaceID, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid workspace id")
		}
		return workspaceID, nil
	}
	actorID, _, err := actorFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return actorID, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
