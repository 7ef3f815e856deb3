package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/RBozydar/arxiv2md/internal/cache"
)

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	digestID := chi.URLParam(r, "digestID")
	if digestID == "" || strings.ContainsAny(digestID, "/\\") || strings.Contains(digestID, "..") {
		jsonError(w, "invalid digest id", http.StatusBadRequest)
		return
	}

	data, err := os.ReadFile(cache.DigestPath(s.cfg.CachePath, digestID))
	if err != nil {
		jsonError(w, "digest not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+digestID+`.txt"`)
	w.Write(data)
}
