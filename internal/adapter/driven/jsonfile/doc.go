// Package jsonfile implements the cache and token ports on plain JSON files,
// the formats the bot has always written:
//
//	cache_api.json   {"<source>_<title>": {"value": {...}, "timestamp": <epoch ms>}, ...}
//	igdb_token.json  {"token": "...", "expiration": <epoch ms>}
//
// Cached values in the first bot's Spanish field names (titulo, anio,
// duracion_main, imagen_url, ...) are read back as current records.
//
// Every read-modify-write holds an advisory file lock (<path>.lock) so two
// processes sharing the files cannot lose each other's updates.
package jsonfile
