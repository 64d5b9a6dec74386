package culturegen

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eringen/culturegen/content"
)

// NormalizeReport counts the outcome of a NormalizeContent run.
type NormalizeReport struct {
	Scanned   int
	Rewritten int
	// Failed counts articles whose content does not decode. They are left
	// as stored.
	Failed int
}

// NormalizeContent rewrites every article's stored content into canonical
// form: legacy link fields are folded into wikiLinks and "content" payloads
// into "data". With dryRun set, nothing is written. Timestamps are kept.
func NormalizeContent(store *Store, logger *zap.Logger, dryRun bool) (NormalizeReport, error) {
	var report NormalizeReport
	articles, err := store.ListArticles()
	if err != nil {
		return report, fmt.Errorf("list articles: %w", err)
	}
	for _, art := range articles {
		report.Scanned++
		out, changed, err := content.Normalize(art.Content)
		if err != nil {
			report.Failed++
			logger.Warn("content does not decode, left as is", zap.Int64("id", art.ID), zap.String("slug", art.Slug), zap.Error(err))
			continue
		}
		if !changed {
			continue
		}
		report.Rewritten++
		logger.Info("normalize content", zap.Int64("id", art.ID), zap.String("slug", art.Slug), zap.Bool("dry_run", dryRun))
		if dryRun {
			continue
		}
		if err := store.SetArticleContent(art.ID, out); err != nil {
			return report, fmt.Errorf("article %d: %w", art.ID, err)
		}
	}
	return report, nil
}
