package domain

import "context"

// TemplateRenderer is the external template storage/rendering collaborator.
type TemplateRenderer interface {
	Render(templateName string, vars map[string]string) (subject, body string, err error)
}

// PermissionChecker is the external identity/permission collaborator.
type PermissionChecker interface {
	IsAllowed(ctx context.Context, actorID, resource, action string) bool
}

// ContactDirectory resolves a recipient's stored channel preference.
type ContactDirectory interface {
	GetContactPreference(ctx context.Context, userID string) (ContactPreference, error)
}
