package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// routesFile is the shape of the optional routes.toml:
//
//	[[route]]
//	path = "/"
//	body = "Welcome to the Home Page!"
type routesFile struct {
	Routes []routeDef `toml:"route"`
}

type routeDef struct {
	Path string `toml:"path"`
	Body string `toml:"body"`
}

// DefaultRoutes is the built-in greeting table.
func DefaultRoutes() map[string]string {
	return map[string]string{
		"/":      "Welcome to the Home Page!",
		"/hello": "Hello there!",
	}
}

// LoadRoutes reads the route table from a TOML file. A file replaces the
// defaults entirely, "" keeps them. Duplicate paths: last entry wins.
func LoadRoutes(path string) (map[string]string, error) {
	if path == "" {
		return DefaultRoutes(), nil
	}

	var rf routesFile
	if _, err := toml.DecodeFile(path, &rf); err != nil {
		return nil, fmt.Errorf("decode routes file %s: %w", path, err)
	}

	m := make(map[string]string, len(rf.Routes))
	for _, r := range rf.Routes {
		if r.Path == "" {
			return nil, fmt.Errorf("routes file %s: route with empty path", path)
		}
		m[r.Path] = r.Body
	}
	return m, nil
}
