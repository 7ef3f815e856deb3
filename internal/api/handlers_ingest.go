package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/RBozydar/arxiv2md/internal/arxiv"
	"github.com/RBozydar/arxiv2md/internal/cache"
	"github.com/RBozydar/arxiv2md/internal/ingest"
	"github.com/RBozydar/arxiv2md/internal/sections"
)

type ingestRequest struct {
	InputText             string   `json:"input_text"`
	RemoveRefs            bool     `json:"remove_refs"`
	RemoveTOC             bool     `json:"remove_toc"`
	RemoveInlineCitations bool     `json:"remove_inline_citations"`
	SectionFilterMode     string   `json:"section_filter_mode"`
	Sections              []string `json:"sections"`
	ForceLatex            bool     `json:"force_latex"`
	DisableFallback       bool     `json:"disable_fallback"`
}

type ingestResponse struct {
	ArxivID   string `json:"arxiv_id"`
	Version   string `json:"version,omitempty"`
	Title     string `json:"title,omitempty"`
	SourceURL string `json:"source_url"`
	Summary   string `json:"summary"`
	Tree      string `json:"tree"`
	Content   string `json:"content"`
	DigestURL string `json:"digest_url"`
	Source    string `json:"source"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.InputText == "" {
		jsonError(w, "input_text is required", http.StatusBadRequest)
		return
	}

	query, err := arxiv.ParseInput(req.InputText)
	if err != nil {
		s.log.Warn("failed to parse arXiv input", "input_text", req.InputText, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode := sections.FilterMode(req.SectionFilterMode)
	if mode != sections.ModeInclude {
		mode = sections.ModeExclude
	}
	opts := ingest.Options{
		RemoveRefs:            req.RemoveRefs,
		RemoveTOC:             req.RemoveTOC,
		RemoveInlineCitations: req.RemoveInlineCitations,
		SectionFilterMode:     mode,
		Sections:              req.Sections,
		ForceLatex:            req.ForceLatex,
		DisableFallback:       req.DisableFallback,
	}

	result, meta, err := s.pipeline.Ingest(r.Context(), query, opts)
	if err != nil {
		s.log.Error("ingestion failed", "url", query.HTMLURL, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	digestID := cache.Key(query.ArxivID, query.Version)
	digest := result.SectionsTree + "\n" + result.Content
	if err := cache.WriteDigest(s.cfg.CachePath, digestID, digest); err != nil {
		s.log.Warn("failed to store digest", "digest_id", digestID, "error", err)
	}

	content := cropContent(result.Content, s.cfg.MaxDisplaySize)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ingestResponse{
		ArxivID:   query.ArxivID,
		Version:   query.Version,
		Title:     meta.Title,
		SourceURL: query.AbsURL,
		Summary:   result.Summary,
		Tree:      result.SectionsTree,
		Content:   content,
		DigestURL: "/api/download/file/" + digestID,
		Source:    meta.Source,
	})
}

// cropContent truncates oversized content with a notice line, backing
// off to a rune boundary so the cut never splits a UTF-8 sequence.
func cropContent(content string, maxSize int) string {
	if len(content) <= maxSize {
		return content
	}
	cut := maxSize
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return fmt.Sprintf(
		"(Content cropped to %dk characters, download full ingest to see more)\n",
		maxSize/1000,
	) + content[:cut]
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
