package discord

import "github.com/bwmarrin/discordgo"

// Slash command and option names.
const (
	cmdAddGame    = "addjuego"
	cmdSearch     = "buscarjuego"
	cmdGame       = "juego"
	cmdProgress   = "progreso"
	cmdUpdate     = "update"
	cmdInfo       = "info"
	optTitle      = "titulo"
	optYear       = "anio"
	optPlatform   = "plataforma"
	optSetting    = "ambientacion"
	optRetroArch  = "retroarch_url"
	optNotes      = "notas"
	optImage      = "imagen_url"
	optRAUser     = "ra_user"
	optKeyword    = "palabra"
	optPlayer     = "jugador"
	optPercentage = "progreso"
)

// Commands returns the slash command schemas served by the bot.
func Commands() []*discordgo.ApplicationCommand {
	minPercent := 0.0

	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdAddGame,
			Description: "Añade un juego a la base global y vincúlalo a tu perfil.",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optTitle, "Título del juego", true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        optYear,
					Description: "Año de lanzamiento",
				},
				stringOption(optPlatform, "Plataforma principal", false),
				stringOption(optSetting, "Ambientación o género", false),
				stringOption(optRetroArch, "URL del juego en RetroArch", false),
				stringOption(optNotes, "Notas adicionales", false),
				stringOption(optImage, "Imagen o portada del juego (opcional)", false),
				stringOption(optRAUser, "Tu usuario en RetroAchievements (opcional)", false),
			},
		},
		{
			Name:        cmdSearch,
			Description: "Busca juegos por palabra clave en tus registros o los de otro jugador.",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optKeyword, "Palabra o parte del título a buscar", true),
				stringOption(optPlayer, "Nombre del jugador (opcional)", false),
			},
		},
		{
			Name:        cmdGame,
			Description: "Muestra información detallada de un juego.",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optTitle, "Nombre del juego que quieres consultar", true),
				stringOption(optPlayer, "Nombre del jugador (opcional)", false),
			},
		},
		{
			Name:        cmdProgress,
			Description: "Muestra tu progreso en los juegos registrados.",
		},
		{
			Name:        cmdUpdate,
			Description: "Actualiza tu progreso de un juego.",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optTitle, "Título del juego", true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        optPercentage,
					Description: "Porcentaje completado (0–100)",
					Required:    true,
					MinValue:    &minPercent,
					MaxValue:    100,
				},
			},
		},
		{
			Name:        cmdInfo,
			Description: "Consulta los metadatos de un juego en IGDB, HowLongToBeat y RAWG.",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(optTitle, "Título del juego", true),
			},
		},
	}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

// options indexes command options by name.
type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func newOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o options) str(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o options) integer(name string) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}
