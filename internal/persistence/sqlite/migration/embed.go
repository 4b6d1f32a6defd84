package migration

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var embedded embed.FS

// Files returns the migrations shipped with the binary.
func Files() fs.FS {
	files, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return files
}
