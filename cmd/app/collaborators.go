package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// templateCatalog is the built-in template set. A dedicated template
// service can replace this without touching the dispatcher, which only
// sees the Render contract.
var templateCatalog = map[string]struct {
	subject string
	body    string
}{
	"attendance_absent": {
		subject: "Attendance notice for {{student_name}}",
		body:    "{{student_name}} was marked absent on {{date}}.",
	},
	"attendance_late": {
		subject: "Late arrival notice for {{student_name}}",
		body:    "{{student_name}} arrived late on {{date}}.",
	},
	"fee_reminder": {
		subject: "Fee reminder",
		body:    "A payment of {{amount}} is due on {{due_date}}.",
	},
	"leave_status": {
		subject: "Leave request {{status}}",
		body:    "Your leave request for {{date}} was {{status}}.",
	},
}

type catalogRenderer struct{}

func (catalogRenderer) Render(templateName string, vars map[string]string) (string, string, error) {
	tpl, ok := templateCatalog[templateName]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", templateName)
	}
	return substitute(tpl.subject, vars), substitute(tpl.body, vars), nil
}

func substitute(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// actorPermissions trusts the upstream gateway to authenticate staff and
// only requires that an acting user is identified for write operations.
type actorPermissions struct {
	logger *slog.Logger
}

func (p actorPermissions) IsAllowed(_ context.Context, actorID, resource, action string) bool {
	if action == "read" {
		return true
	}
	if actorID == "" {
		p.logger.Warn("rejected unidentified actor", "resource", resource, "action", action)
		return false
	}
	return true
}
