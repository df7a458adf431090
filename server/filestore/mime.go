package filestore

import (
	"path/filepath"
	"strings"
)

// fixed extension table instead of the system mime registry so responses
// don't depend on the host's /etc/mime.types
var contentTypes = map[string]string{
	".txt":  "text/plain",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
}

// TypeOf maps a file name to a content type by extension,
// application/octet-stream when unrecognized.
func TypeOf(name string) string {
	if t, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return "application/octet-stream"
}
