package service

import (
	"warden/models"
)

// Member is the invoking member's identity as delivered by the interaction
// transport. Role checks compare by stable role ID, never by name.
type Member struct {
	ID      string
	RoleIDs []string
	IsOwner bool
}

// DenyReason classifies why a command invocation was rejected.
type DenyReason string

const (
	DenyReasonNone        DenyReason = ""
	DenyReasonOwnerOnly   DenyReason = "owner_only"
	DenyReasonDisabled    DenyReason = "disabled"
	DenyReasonMissingRole DenyReason = "missing_role"
	DenyReasonInternal    DenyReason = "internal"
)

// Decision is the outcome of a permission evaluation.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// defaultRestricted commands are owner-only until a role allow-list is
// explicitly configured for them.
var defaultRestricted = map[string]struct{}{
	"clean":       {},
	"permissions": {},
	"disable":     {},
	"enable":      {},
	"logging":     {},
	"welcome":     {},
}

// IsDefaultRestricted reports whether command is owner-only by default.
func IsDefaultRestricted(command string) bool {
	_, ok := defaultRestricted[command]
	return ok
}

// EvaluatePermission decides whether member may run command under cfg. It is a
// pure function: no I/O, no mutation. Precedence, first match wins:
//
//  1. guild owner: allow
//  2. default-restricted command with no allow-list configured: deny
//  3. command disabled: deny
//  4. no allow-list configured: allow
//  5. allow-list configured but empty: allow (everyone)
//  6. member holds at least one listed role: allow, else deny
//
// A role ID that no longer exists in the guild simply never matches.
func EvaluatePermission(cfg *models.GuildConfig, command string, member Member) Decision {
	if member.IsOwner {
		return Decision{Allowed: true}
	}

	allowedRoles, configured := cfg.CommandPermissions[command]

	if !configured && IsDefaultRestricted(command) {
		return Decision{Reason: DenyReasonOwnerOnly}
	}

	if cfg.IsCommandDisabled(command) {
		return Decision{Reason: DenyReasonDisabled}
	}

	if !configured {
		return Decision{Allowed: true}
	}
	if len(allowedRoles) == 0 {
		return Decision{Allowed: true}
	}

	for _, roleID := range member.RoleIDs {
		for _, allowed := range allowedRoles {
			if roleID == allowed {
				return Decision{Allowed: true}
			}
		}
	}
	return Decision{Reason: DenyReasonMissingRole}
}
