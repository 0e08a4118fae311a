package bot

import (
	"context"

	log "github.com/sirupsen/logrus"

	"warden/service"
)

// Gate is the single admission-control checkpoint between receiving a command
// invocation and executing its logic. It loads the guild's configuration and
// asks the permission resolver; any internal error during resolution results in
// a deny, never a silent allow.
type Gate struct {
	settings service.GuildConfigService
}

// NewGate creates a dispatch gate over the given settings service.
func NewGate(settings service.GuildConfigService) *Gate {
	return &Gate{settings: settings}
}

// Check decides whether member may run command in the guild. Fail-closed: a
// configuration load error or a panic during resolution denies the invocation.
func (g *Gate) Check(ctx context.Context, guildID, command string, member service.Member) (decision service.Decision) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"guildID": guildID,
				"command": command,
				"panic":   r,
			}).Error("Permission resolution panicked, denying invocation")
			decision = service.Decision{Allowed: false, Reason: service.DenyReasonInternal}
		}
	}()

	cfg, err := g.settings.Get(ctx, guildID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guildID": guildID,
			"command": command,
		}).Error("Failed to load guild config, denying invocation")
		return service.Decision{Allowed: false, Reason: service.DenyReasonInternal}
	}

	return service.EvaluatePermission(cfg, command, member)
}

// denyMessage maps a deny reason to the short user-visible rejection. Internal
// errors never leak implementation detail to the user.
func denyMessage(command string, reason service.DenyReason) string {
	switch reason {
	case service.DenyReasonOwnerOnly:
		return "Only the server owner can use `/" + command + "` until roles are configured for it."
	case service.DenyReasonDisabled:
		return "`/" + command + "` is disabled on this server."
	case service.DenyReasonMissingRole:
		return "You don't have a role that is allowed to use `/" + command + "`."
	default:
		return "Something went wrong checking permissions. Please try again."
	}
}
