package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// Embed colours.
const (
	colorInfo     = 0x00bfff
	colorWarn     = 0xffd700
	colorNone     = 0x808080
	colorHigh     = 0x00ff7f
	colorMid      = 0xffd700
	colorLow      = 0xff4500
	footerCatalog = "RetroTracker Bot • Base global"
	footerTracker = "RetroTracker Bot"
	notAvailable  = "N/A"
)

// progressColor picks the embed colour for a completion percentage.
func progressColor(p *int) int {
	switch {
	case p == nil:
		return colorNone
	case *p >= 80:
		return colorHigh
	case *p >= 50:
		return colorMid
	default:
		return colorLow
	}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func yearOrNA(y int) string {
	if y == 0 {
		return notAvailable
	}
	return strconv.Itoa(y)
}

// formatHours renders 24 as "24 h" and 39.5 as "39.5 h".
func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + " h"
}

// discordTime renders t with Discord's locale-aware timestamp markup.
func discordTime(t time.Time) string {
	return fmt.Sprintf("<t:%d:f>", t.Unix())
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

func thumbnail(url string) *discordgo.MessageEmbedThumbnail {
	if url == "" {
		return nil
	}
	return &discordgo.MessageEmbedThumbnail{URL: url}
}

// metadataEmbed shows a merged metadata record, used by /info and by the
// new-game confirmation prompt.
func metadataEmbed(m model.MergedGameRecord, now time.Time) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       "🎮 " + m.Title,
		Description: truncate(m.Description, 1024),
		Color:       colorInfo,
		Thumbnail:   thumbnail(m.CoverURL),
		Timestamp:   now.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			field("🕹️ Plataforma", orNA(m.Platform), true),
			field("🌍 Género", orNA(m.Genre), true),
			field("📅 Año", yearOrNA(m.ReleaseYear), true),
		},
	}

	if m.HoursMain > 0 || m.HoursMainExtra > 0 || m.HoursCompletionist > 0 {
		var parts []string
		if m.HoursMain > 0 {
			parts = append(parts, "Historia: "+formatHours(m.HoursMain))
		}
		if m.HoursMainExtra > 0 {
			parts = append(parts, "Extras: "+formatHours(m.HoursMainExtra))
		}
		if m.HoursCompletionist > 0 {
			parts = append(parts, "100%: "+formatHours(m.HoursCompletionist))
		}
		e.Fields = append(e.Fields, field("⏱️ Duración", strings.Join(parts, " • "), false))
	}
	if m.Rating > 0 {
		e.Fields = append(e.Fields, field("⭐ Valoración", strconv.FormatFloat(m.Rating, 'f', 2, 64)+" / 5", true))
	}

	footer := footerTracker
	if m.Enriched() {
		footer += " • " + m.SourceLabel()
	}
	e.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	return e
}

// linkedEmbed confirms a game was linked to a player.
func linkedEmbed(g model.Game, player, notes string, filledBy []model.SourceName, now time.Time) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       "🎮 " + g.Title,
		Description: fmt.Sprintf("Juego vinculado correctamente a **%s**", player),
		Color:       colorInfo,
		Thumbnail:   thumbnail(g.CoverURL),
		Timestamp:   now.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerCatalog},
		Fields: []*discordgo.MessageEmbedField{
			field("🕹️ Plataforma", orNA(g.Platform), true),
			field("🌍 Ambientación", orNA(g.Setting), true),
			field("📅 Año", yearOrNA(g.ReleaseYear), true),
		},
	}
	if g.RetroArchURL != "" {
		e.Fields = append(e.Fields, field("🔗 RetroArch", fmt.Sprintf("[Abrir juego](%s)", g.RetroArchURL), false))
	}
	if notes != "" {
		e.Fields = append(e.Fields, field("📝 Notas", truncate(notes, 1024), false))
	}
	if len(filledBy) > 0 {
		names := make([]string, 0, len(filledBy))
		for _, s := range filledBy {
			if s == model.SourceSheet {
				names = append(names, "hoja de Google Sheets")
				continue
			}
			names = append(names, string(s))
		}
		e.Fields = append(e.Fields, field("📋 Datos completados automáticamente",
			"Los datos del juego se han rellenado desde: "+strings.Join(names, ", ")+".", false))
	}
	return e
}

// alreadyLinkedEmbed asks whether to update an existing link.
func alreadyLinkedEmbed(v model.ProgressView) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("⚠️ Ya tienes vinculado \"%s\"", v.Game.Title),
		Description: "¿Quieres actualizar tus notas o tu usuario RA?",
		Color:       colorWarn,
		Fields: []*discordgo.MessageEmbedField{
			field("🕹️ Plataforma", orNA(v.Game.Platform), true),
			field("📈 Progreso", fmt.Sprintf("%d%%", v.Progress.ProgressPercent()), true),
		},
	}
}

// gameEmbed shows one player's progress on one game.
func gameEmbed(v model.ProgressView, player string, now time.Time) *discordgo.MessageEmbed {
	p := v.Progress
	e := &discordgo.MessageEmbed{
		Title:       "🎮 " + v.Game.Title,
		Description: fmt.Sprintf("Información del juego y progreso de **%s**", player),
		Color:       progressColor(p.Progress),
		Thumbnail:   thumbnail(v.Game.CoverURL),
		Timestamp:   now.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerTracker},
		Fields: []*discordgo.MessageEmbedField{
			field("🕹️ Plataforma", orNA(v.Game.Platform), true),
			field("🌍 Ambientación", orNA(v.Game.Setting), true),
			field("📈 Progreso", fmt.Sprintf("%d%%", p.ProgressPercent()), true),
		},
	}
	if p.RAProgress != nil {
		e.Fields = append(e.Fields, field("🏆 RetroAchievements", fmt.Sprintf("%d%%", *p.RAProgress), true))
	}
	e.Fields = append(e.Fields, field("🕓 Última actualización", discordTime(p.UpdatedAt), false))
	if v.Game.RetroArchURL != "" {
		e.Fields = append(e.Fields, field("🔗 RetroArch", fmt.Sprintf("[Abrir juego](%s)", v.Game.RetroArchURL), false))
	}
	if p.Notes != "" {
		e.Fields = append(e.Fields, field("📝 Notas", truncate(p.Notes, 1024), false))
	}
	return e
}

// searchEmbed lists search results. A single result with a cover gets it as
// the thumbnail.
func searchEmbed(keyword, player string, views []model.ProgressView, now time.Time) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔍 Resultados para “%s”", keyword),
		Description: fmt.Sprintf("Mostrando los %d juegos más recientes de **%s**.", len(views), player),
		Color:       colorInfo,
		Timestamp:   now.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerTracker},
	}
	for _, v := range views {
		progress := fmt.Sprintf("📈 %d%%", v.Progress.ProgressPercent())
		if v.Progress.RAProgress != nil {
			progress += fmt.Sprintf(" • 🏆 RA: %d%%", *v.Progress.RAProgress)
		}
		e.Fields = append(e.Fields, field(
			"🎮 "+v.Game.Title,
			fmt.Sprintf("%s\n🕹️ %s\n🕓 %s", progress, orNA(v.Game.Platform), discordTime(v.Progress.UpdatedAt)),
			false,
		))
	}
	if len(views) == 1 {
		e.Thumbnail = thumbnail(views[0].Game.CoverURL)
	}
	return e
}

// progressList renders /progreso as plain message content.
func progressList(player string, views []model.ProgressView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Progreso de %s:", player)
	for _, v := range views {
		fmt.Fprintf(&b, "\n🎮 **%s** — %d%% (última actualización: %s)",
			v.Game.Title, v.Progress.ProgressPercent(), discordTime(v.Progress.UpdatedAt))
	}
	return truncate(b.String(), 2000)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
