package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"coursecompass/internal/core/domain"
	"coursecompass/internal/core/ports"
)

// IngestUseCase scans the raw course-files tree, extracts text per file and
// persists one Document per extracted text. Tabular files (CSV, XLSX) yield
// one Document per row so schedule entries retrieve as individual passages.
type IngestUseCase struct {
	source    ports.CourseFileSource
	extractor ports.TextExtractor
	repo      ports.DocumentRepository
	baseURL   string
	logger    *slog.Logger
}

func NewIngestUseCase(
	source ports.CourseFileSource,
	extractor ports.TextExtractor,
	repo ports.DocumentRepository,
	baseURL string,
	logger *slog.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		source:    source,
		extractor: extractor,
		repo:      repo,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

func (uc *IngestUseCase) IngestAll(ctx context.Context) ([]domain.Document, error) {
	paths, err := uc.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list course files: %w", err)
	}

	now := time.Now().UTC()
	var docs []domain.Document
	for _, relPath := range paths {
		if !uc.extractor.Supports(relPath) {
			continue
		}
		texts, err := uc.extractFile(ctx, relPath)
		if err != nil {
			// A single unreadable file must not sink the whole corpus.
			uc.logger.Warn("skipping unreadable course file", "path", relPath, "error", err)
			continue
		}

		breadcrumb := breadcrumbFor(relPath)
		url := uc.courseURL(relPath)
		format := formatFor(relPath)
		for i, text := range texts {
			if strings.TrimSpace(text) == "" {
				continue
			}
			crumb := breadcrumb
			if len(texts) > 1 {
				crumb = fmt.Sprintf("%s (Row %d)", breadcrumb, i+1)
			}
			docs = append(docs, domain.Document{
				ID:         uuid.NewString(),
				Path:       relPath,
				Breadcrumb: crumb,
				URL:        url,
				Text:       text,
				Format:     format,
				CreatedAt:  now,
			})
		}
	}

	if err := uc.repo.ReplaceDocuments(ctx, docs); err != nil {
		return nil, fmt.Errorf("persist documents: %w", err)
	}
	uc.logger.Info("course ingestion complete", "files", len(paths), "documents", len(docs))
	return docs, nil
}

func (uc *IngestUseCase) extractFile(ctx context.Context, relPath string) ([]string, error) {
	r, err := uc.source.Open(ctx, relPath)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer r.Close()
	return uc.extractor.Extract(ctx, relPath, r)
}

// breadcrumbFor derives the human-readable hierarchical label from the file's
// location, e.g. "Week_02/rubric.md" -> "Week_02 > rubric". Files at the tree
// root sit under a synthetic "Modules" segment.
func breadcrumbFor(relPath string) string {
	dir, file := path.Split(path.Clean(relPath))
	stem := strings.TrimSuffix(file, path.Ext(file))

	segments := []string{}
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg != "" && seg != "." {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		segments = append(segments, "Modules")
	}
	segments = append(segments, stem)
	return strings.Join(segments, " > ")
}

func (uc *IngestUseCase) courseURL(relPath string) string {
	if uc.baseURL == "" {
		return ""
	}
	return uc.baseURL + "/modules/" + path.Clean(relPath)
}

func formatFor(relPath string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(relPath), "."))
	if ext == "" {
		return "txt"
	}
	return ext
}
