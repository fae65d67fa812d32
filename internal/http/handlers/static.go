package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Static serves the built browser client from Config.StaticDir. Unknown
// paths fall back to index.html so client-side routes resolve.
func (a *App) Static(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)
	if clean == "/api" || strings.HasPrefix(clean, "/api/") {
		a.error(w, http.StatusNotFound, "not_found", "Not found")
		return
	}
	if a.Config == nil || a.Config.StaticDir == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		a.error(w, http.StatusNotFound, "not_found", "Not found")
		return
	}

	root := a.Config.StaticDir
	if serveFile(w, r, filepath.Join(root, filepath.FromSlash(clean))) {
		return
	}
	if serveFile(w, r, filepath.Join(root, "index.html")) {
		return
	}
	a.error(w, http.StatusNotFound, "not_found", "Not found")
}

// serveFile writes name when it is a regular file and reports whether it did.
func serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}
