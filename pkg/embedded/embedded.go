// Package embedded provides the static assets compiled into the binaries:
// the instrument catalog and the SQLite schemas.
package embedded

import (
	"embed"
	"fmt"
)

// Files holds instruments.yaml and schemas/*.sql.
//
//go:embed instruments.yaml schemas/*.sql
var Files embed.FS

// Instruments returns the raw instrument catalog YAML.
func Instruments() ([]byte, error) {
	data, err := Files.ReadFile("instruments.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}
	return data, nil
}

// Schema returns the SQL schema for the named database.
func Schema(name string) ([]byte, error) {
	data, err := Files.ReadFile("schemas/" + name + "_schema.sql")
	if err != nil {
		return nil, fmt.Errorf("no embedded schema for database %q: %w", name, err)
	}
	return data, nil
}
