package bot

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/bwmarrin/discordgo"
)

// handleClean bulk-deletes recent messages in the invoking channel.
func (b *Bot) handleClean(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i.ApplicationCommandData().Options)
	count := int(opts["count"].IntValue())
	if count < 1 {
		count = 1
	}
	if count > 100 {
		count = 100
	}

	messages, err := s.ChannelMessages(i.ChannelID, count, "", "", "")
	if err != nil {
		return fmt.Errorf("failed to list channel messages: %w", err)
	}

	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	if len(ids) > 0 {
		if err := s.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
			return fmt.Errorf("failed to bulk delete messages: %w", err)
		}
	}

	respondEphemeral(s, i, fmt.Sprintf("🧹 Deleted %d messages.", len(ids)))
	return nil
}

// handleRoll rolls a die.
func (b *Bot) handleRoll(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sides := int64(6)
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["sides"]; ok {
		sides = opt.IntValue()
	}
	if sides < 2 {
		sides = 2
	}

	respond(s, i, fmt.Sprintf("🎲 You rolled a **%d** (d%d).", rand.Int63n(sides)+1, sides))
	return nil
}
