package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ericfisherdev/retrotracker/internal/application"
	"github.com/ericfisherdev/retrotracker/internal/domain/model"
	"github.com/ericfisherdev/retrotracker/internal/domain/port/driven"
)

// addGame serves /addjuego. New catalog games need confirmation, games the
// player already has ask before their details are replaced, and everything
// else is linked straight away.
func (b *Bot) addGame(ctx context.Context, r responder, i *discordgo.Interaction, opts options) error {
	player := invoker(i)
	in := model.GameInput{
		Title:        strings.TrimSpace(opts.str(optTitle)),
		ReleaseYear:  opts.integer(optYear),
		Platform:     opts.str(optPlatform),
		Setting:      opts.str(optSetting),
		RetroArchURL: opts.str(optRetroArch),
		CoverURL:     opts.str(optImage),
	}
	notes := opts.str(optNotes)
	raUser := opts.str(optRAUser)

	if err := deferReply(r, i); err != nil {
		return fmt.Errorf("defer reply: %w", err)
	}

	view, err := b.games.GetPlayerGame(ctx, player.Username, in.Title)
	switch {
	case err == nil:
		return b.confirmDetailsUpdate(ctx, r, i, player, *view, notes, raUser)
	case errors.Is(err, driven.ErrGameNotFound):
		fill := b.games.Autofill(ctx, in)
		return b.confirmNewGame(ctx, r, i, player, fill, notes, raUser)
	case errors.Is(err, driven.ErrGameNotLinked):
		game, _, err := b.games.FindOrCreateGame(ctx, in)
		if err != nil {
			return err
		}
		return b.link(ctx, r, i, player, game, notes, raUser, nil)
	default:
		return err
	}
}

func (b *Bot) confirmNewGame(
	ctx context.Context,
	r responder,
	i *discordgo.Interaction,
	player *discordgo.User,
	fill application.AutofillResult,
	notes, raUser string,
) error {
	preview := fill.Metadata
	preview.Title = fill.Input.Title
	preview.ReleaseYear = fill.Input.ReleaseYear
	preview.Platform = fill.Input.Platform
	preview.Genre = fill.Input.Setting
	preview.CoverURL = fill.Input.CoverURL

	prompt := metadataEmbed(preview, b.now())
	prompt.Description = "¿Añadir este juego a la base global y vincularlo a tu perfil?"

	id := b.confirms.open(player.ID)
	if err := edit(r, i, embedOnly(prompt, buttons(id, "✅ Confirmar"))); err != nil {
		return fmt.Errorf("show confirmation: %w", err)
	}

	d, ok := b.confirms.wait(ctx, id)
	if !ok {
		return edit(r, i, contentOnly("⌛ Tiempo agotado. No se añadió el juego."))
	}
	if err := acknowledgeClick(r, d.interaction); err != nil {
		b.logger.Warn("acknowledging click failed", "error", err)
	}
	if !d.confirmed {
		return edit(r, i, contentOnly("❌ Cancelado."))
	}

	game, _, err := b.games.FindOrCreateGame(ctx, fill.Input)
	if err != nil {
		return err
	}
	return b.link(ctx, r, i, player, game, notes, raUser, fill.FilledBy())
}

func (b *Bot) confirmDetailsUpdate(
	ctx context.Context,
	r responder,
	i *discordgo.Interaction,
	player *discordgo.User,
	view model.ProgressView,
	notes, raUser string,
) error {
	id := b.confirms.open(player.ID)
	if err := edit(r, i, embedOnly(alreadyLinkedEmbed(view), buttons(id, "✅ Actualizar"))); err != nil {
		return fmt.Errorf("show confirmation: %w", err)
	}

	d, ok := b.confirms.wait(ctx, id)
	if !ok {
		return edit(r, i, contentOnly("⌛ Tiempo agotado. No se hicieron cambios."))
	}
	if err := acknowledgeClick(r, d.interaction); err != nil {
		b.logger.Warn("acknowledging click failed", "error", err)
	}
	if !d.confirmed {
		return edit(r, i, contentOnly("❌ Cancelado."))
	}

	if err := b.games.UpdateLinkDetails(ctx, player.Username, view.Game.ID, notes, raUser); err != nil {
		return err
	}
	return edit(r, i, contentOnly(fmt.Sprintf("✅ Datos actualizados para %s", view.Game.Title)))
}

func (b *Bot) link(
	ctx context.Context,
	r responder,
	i *discordgo.Interaction,
	player *discordgo.User,
	game model.Game,
	notes, raUser string,
	filled []model.SourceName,
) error {
	if _, err := b.games.LinkPlayer(ctx, player.Username, game.ID, raUser, notes); err != nil {
		return err
	}
	b.logger.Info("game linked", "player", player.Username, "game_id", game.ID, "title", game.Title)
	return edit(r, i, embedOnly(linkedEmbed(game, player.Username, notes, filled, b.now()), nil))
}

// searchGames serves /buscarjuego.
func (b *Bot) searchGames(ctx context.Context, r responder, i *discordgo.Interaction, opts options) error {
	keyword := opts.str(optKeyword)
	player := targetPlayer(i, opts)

	views, err := b.games.SearchPlayerGames(ctx, player, keyword)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		return reply(r, i, ephemeral(fmt.Sprintf("📭 No encontré juegos que coincidan con “%s” para **%s**.", keyword, player)))
	}
	return reply(r, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{searchEmbed(keyword, player, views, b.now())},
	})
}

// showGame serves /juego.
func (b *Bot) showGame(ctx context.Context, r responder, i *discordgo.Interaction, opts options) error {
	title := opts.str(optTitle)
	player := targetPlayer(i, opts)

	view, err := b.games.GetPlayerGame(ctx, player, title)
	switch {
	case errors.Is(err, driven.ErrGameNotFound):
		return reply(r, i, ephemeral(fmt.Sprintf("⚠️ No encontré ningún juego llamado **%s** en la base global.", title)))
	case errors.Is(err, driven.ErrGameNotLinked):
		return reply(r, i, ephemeral(fmt.Sprintf("📭 El jugador **%s** aún no tiene progreso registrado para **%s**.", player, title)))
	case err != nil:
		return err
	}
	return reply(r, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{gameEmbed(*view, player, b.now())},
	})
}

// listProgress serves /progreso.
func (b *Bot) listProgress(ctx context.Context, r responder, i *discordgo.Interaction) error {
	player := invoker(i).Username

	views, err := b.games.ListPlayerProgress(ctx, player)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		return reply(r, i, &discordgo.InteractionResponseData{Content: "📭 No tienes juegos registrados aún."})
	}
	return reply(r, i, &discordgo.InteractionResponseData{Content: progressList(player, views)})
}

// updateProgress serves /update.
func (b *Bot) updateProgress(ctx context.Context, r responder, i *discordgo.Interaction, opts options) error {
	title := opts.str(optTitle)
	percent := opts.integer(optPercentage)

	err := b.games.UpdateProgress(ctx, invoker(i).Username, title, percent)
	switch {
	case errors.Is(err, application.ErrInvalidProgress):
		return reply(r, i, ephemeral("⚠️ El progreso debe estar entre 0 y 100."))
	case errors.Is(err, driven.ErrGameNotLinked):
		return reply(r, i, ephemeral("⚠️ No encontré ese juego en tu registro."))
	case err != nil:
		return err
	}
	return reply(r, i, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("✅ Progreso actualizado: **%s** → %d%%", title, percent),
	})
}

// showInfo serves /info. The upstream lookups can outlast Discord's reply
// window, so the reply is deferred first.
func (b *Bot) showInfo(ctx context.Context, r responder, i *discordgo.Interaction, opts options) error {
	title := strings.TrimSpace(opts.str(optTitle))

	if err := deferReply(r, i); err != nil {
		return fmt.Errorf("defer reply: %w", err)
	}

	merged := b.resolver.Resolve(ctx, title)
	if !merged.Enriched() {
		return edit(r, i, contentOnly(fmt.Sprintf("📭 No encontré metadatos para **%s**.", title)))
	}
	return edit(r, i, embedOnly(metadataEmbed(merged, b.now()), nil))
}

// targetPlayer is the jugador option, defaulting to the invoking user.
func targetPlayer(i *discordgo.Interaction, opts options) string {
	if p := strings.TrimSpace(opts.str(optPlayer)); p != "" {
		return p
	}
	return invoker(i).Username
}
