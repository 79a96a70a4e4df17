// Package discord is the Discord driving adapter: it serves the slash
// commands, renders embeds, and runs the confirm/cancel button prompts.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ericfisherdev/retrotracker/internal/application"
	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// handlerTimeout bounds the work done for one interaction, prompt wait included.
const handlerTimeout = 2 * time.Minute

const genericError = "Error interno del bot."

// GameUseCases is the application surface the commands drive.
type GameUseCases interface {
	Autofill(ctx context.Context, in model.GameInput) application.AutofillResult
	FindOrCreateGame(ctx context.Context, in model.GameInput) (model.Game, bool, error)
	LinkPlayer(ctx context.Context, player string, gameID int64, raUser, notes string) (*model.PlayerProgress, error)
	UpdateLinkDetails(ctx context.Context, player string, gameID int64, notes, raUser string) error
	UpdateProgress(ctx context.Context, player, title string, percent int) error
	SearchPlayerGames(ctx context.Context, player, keyword string) ([]model.ProgressView, error)
	GetPlayerGame(ctx context.Context, player, title string) (*model.ProgressView, error)
	ListPlayerProgress(ctx context.Context, player string) ([]model.ProgressView, error)
}

// MetadataResolver resolves merged metadata for /info.
type MetadataResolver interface {
	Resolve(ctx context.Context, title string) model.MergedGameRecord
}

// responder is the subset of *discordgo.Session used to answer interactions.
type responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot routes Discord interactions to the game use-cases.
type Bot struct {
	games    GameUseCases
	resolver MetadataResolver
	confirms *confirmations
	now      func() time.Time
	logger   *slog.Logger
}

// Option customizes a Bot.
type Option func(*Bot)

// WithConfirmTimeout overrides DefaultConfirmTimeout.
func WithConfirmTimeout(d time.Duration) Option {
	return func(b *Bot) { b.confirms = newConfirmations(d) }
}

// NewBot creates a Bot.
func NewBot(games GameUseCases, resolver MetadataResolver, logger *slog.Logger, opts ...Option) *Bot {
	b := &Bot{
		games:    games,
		resolver: resolver,
		confirms: newConfirmations(DefaultConfirmTimeout),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run connects to the gateway with token and serves interactions until ctx
// is cancelled.
func (b *Bot) Run(ctx context.Context, token string) error {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("discord connected", "user", r.User.Username, "guilds", len(r.Guilds))
	})
	session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
		defer cancel()
		b.handle(hctx, s, ic.Interaction)
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	<-ctx.Done()

	if err := session.Close(); err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}
	return nil
}

// handle dispatches one interaction. Command errors are logged and the user
// gets a generic ephemeral message.
func (b *Bot) handle(ctx context.Context, r responder, i *discordgo.Interaction) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		if err := b.command(ctx, r, i, name); err != nil {
			b.logger.Error("command failed", "command", name, "user", invoker(i).Username, "error", err)
			b.fail(r, i)
		}
	case discordgo.InteractionMessageComponent:
		b.component(r, i)
	}
}

func (b *Bot) command(ctx context.Context, r responder, i *discordgo.Interaction, name string) error {
	opts := newOptions(i.ApplicationCommandData().Options)

	switch name {
	case cmdAddGame:
		return b.addGame(ctx, r, i, opts)
	case cmdSearch:
		return b.searchGames(ctx, r, i, opts)
	case cmdGame:
		return b.showGame(ctx, r, i, opts)
	case cmdProgress:
		return b.listProgress(ctx, r, i)
	case cmdUpdate:
		return b.updateProgress(ctx, r, i, opts)
	case cmdInfo:
		return b.showInfo(ctx, r, i, opts)
	default:
		b.logger.Warn("unknown command", "command", name)
		return reply(r, i, ephemeral("Comando desconocido."))
	}
}

// component routes a button press to the prompt waiting for it.
func (b *Bot) component(r responder, i *discordgo.Interaction) {
	customID := i.MessageComponentData().CustomID

	var msg string
	switch b.confirms.click(customID, invoker(i).ID, i) {
	case clickAccepted:
		return
	case clickNotOwner:
		msg = "No puedes responder a esta acción."
	default:
		msg = "⌛ Esta confirmación ya no está activa."
	}
	if err := reply(r, i, ephemeral(msg)); err != nil {
		b.logger.Warn("answering button press failed", "custom_id", customID, "error", err)
	}
}

// fail answers i with the generic error, editing the response if one was
// already sent.
func (b *Bot) fail(r responder, i *discordgo.Interaction) {
	if err := reply(r, i, ephemeral(genericError)); err == nil {
		return
	}
	if err := edit(r, i, contentOnly(genericError)); err != nil {
		b.logger.Warn("reporting command failure failed", "error", err)
	}
}

// invoker returns the user who triggered i, in guilds or DMs.
func invoker(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

func reply(r responder, i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	return r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func deferReply(r responder, i *discordgo.Interaction) error {
	return r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func acknowledgeClick(r responder, i *discordgo.Interaction) error {
	return r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

func edit(r responder, i *discordgo.Interaction, e *discordgo.WebhookEdit) error {
	_, err := r.InteractionResponseEdit(i, e)
	return err
}

func ephemeral(content string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral}
}

// contentOnly replaces a response with plain text, clearing embeds and buttons.
func contentOnly(content string) *discordgo.WebhookEdit {
	return &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &[]*discordgo.MessageEmbed{},
		Components: &[]discordgo.MessageComponent{},
	}
}

func embedOnly(e *discordgo.MessageEmbed, components []discordgo.MessageComponent) *discordgo.WebhookEdit {
	empty := ""
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return &discordgo.WebhookEdit{
		Content:    &empty,
		Embeds:     &[]*discordgo.MessageEmbed{e},
		Components: &components,
	}
}
