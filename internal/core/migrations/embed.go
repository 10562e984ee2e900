// Package migrations embeds the goose SQL migrations for each backend.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the migrations for the pgx backend.
func Postgres() fs.FS {
	return sub("postgres")
}

// SQLite returns the migrations for the SQLite backend.
func SQLite() fs.FS {
	return sub("sqlite")
}

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(files, dir)
	if err != nil {
		// dir is a compile-time constant covered by the embed pattern.
		panic(err)
	}
	return fsys
}
