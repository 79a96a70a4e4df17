package jsonfile

import (
	"encoding/json"

	"github.com/ericfisherdev/retrotracker/internal/domain/model"
)

// legacyKeys are the field names of values written by the first version of
// the bot. "rating" is shared with the current format and is not listed.
var legacyKeys = []string{
	"titulo", "anio", "plataforma", "genero", "descripcion", "imagen_url",
	"duracion_main", "duracion_extra", "duracion_completo", "fuente",
}

// legacyValue is a cached record in the first bot's shape. Any field may be
// null.
type legacyValue struct {
	Titulo           *string  `json:"titulo"`
	Anio             *int     `json:"anio"`
	Plataforma       *string  `json:"plataforma"`
	Genero           *string  `json:"genero"`
	Descripcion      *string  `json:"descripcion"`
	ImagenURL        *string  `json:"imagen_url"`
	DuracionMain     *float64 `json:"duracion_main"`
	DuracionExtra    *float64 `json:"duracion_extra"`
	DuracionCompleto *float64 `json:"duracion_completo"`
	Rating           *float64 `json:"rating"`
	Fuente           *string  `json:"fuente"`
}

// upgradeValue rewrites a legacy cached value into the PartialGameRecord
// encoding. Values already in the current encoding, or that are not JSON
// objects, are returned unchanged.
func upgradeValue(raw json.RawMessage) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || !hasLegacyKey(fields) {
		return raw
	}

	var old legacyValue
	if err := json.Unmarshal(raw, &old); err != nil {
		return raw
	}

	rec := model.PartialGameRecord{
		Title:              deref(old.Titulo),
		ReleaseYear:        deref(old.Anio),
		Platform:           deref(old.Plataforma),
		Genre:              deref(old.Genero),
		Description:        deref(old.Descripcion),
		CoverURL:           deref(old.ImagenURL),
		HoursMain:          deref(old.DuracionMain),
		HoursMainExtra:     deref(old.DuracionExtra),
		HoursCompletionist: deref(old.DuracionCompleto),
		Rating:             deref(old.Rating),
		Source:             model.SourceName(deref(old.Fuente)),
	}
	upgraded, err := json.Marshal(rec)
	if err != nil {
		return raw
	}
	return upgraded
}

func hasLegacyKey(fields map[string]json.RawMessage) bool {
	for _, k := range legacyKeys {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
