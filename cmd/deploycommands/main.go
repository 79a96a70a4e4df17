// Command deploycommands registers the bot's slash commands with Discord,
// replacing whatever the guild had before.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/bwmarrin/discordgo"

	"github.com/ericfisherdev/retrotracker/internal/adapter/driving/discord"
	"github.com/ericfisherdev/retrotracker/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DiscordAppID == "" {
		return errors.New("RETROTRACKER_DISCORD_APP_ID is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}

	// An empty guild id registers global commands.
	logger.Info("registering commands", "app_id", cfg.DiscordAppID, "guild_id", cfg.DiscordGuildID)
	registered, err := session.ApplicationCommandBulkOverwrite(cfg.DiscordAppID, cfg.DiscordGuildID, discord.Commands())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	for _, c := range registered {
		logger.Info("command registered", "name", c.Name, "id", c.ID)
	}
	return nil
}
