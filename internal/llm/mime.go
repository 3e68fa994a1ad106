package llm

import (
	"net/http"
	"path/filepath"
	"strings"
)

var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".heic": "image/heic",
	".txt":  "text/plain",
	".html": "text/html",
	".htm":  "text/html",
	".eml":  "text/plain",
}

// MimeType picks the document type sent to the model, preferring the file
// extension and falling back to content sniffing.
func MimeType(name string, data []byte) string {
	if m, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return m
	}
	m := http.DetectContentType(data)
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	return m
}
