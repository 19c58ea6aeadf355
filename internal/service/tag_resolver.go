package service

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/alanyoungcy/polylens/internal/domain"
	"github.com/alanyoungcy/polylens/internal/query"
)

// TagResolver maps free text to a catalog tag. The tag list is fetched once
// on first use and kept for the lifetime of the resolver; concurrent first
// calls share one fetch, and a failed fetch is retried by the next call.
type TagResolver struct {
	catalog domain.Catalog
	logger  *slog.Logger

	tags  atomic.Pointer[[]domain.Tag]
	group singleflight.Group
}

// NewTagResolver creates a TagResolver with an empty cache.
func NewTagResolver(catalog domain.Catalog, logger *slog.Logger) *TagResolver {
	return &TagResolver{
		catalog: catalog,
		logger:  logger.With(slog.String("component", "tag_resolver")),
	}
}

// Resolve returns the tag whose name matches keyword: an exact match on the
// normalized name if there is one, otherwise the first tag in catalog order
// whose name contains the keyword or is contained in it.
func (r *TagResolver) Resolve(ctx context.Context, keyword string) (domain.Tag, bool) {
	kw := query.Normalize(keyword)
	if kw == "" {
		return domain.Tag{}, false
	}

	tags, err := r.load(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "tag_resolver: load tags failed",
			slog.String("error", err.Error()),
		)
		return domain.Tag{}, false
	}

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = tagName(t)
		if names[i] == kw {
			return t, true
		}
	}
	for i, t := range tags {
		if names[i] == "" {
			continue
		}
		if strings.Contains(kw, names[i]) || strings.Contains(names[i], kw) {
			return t, true
		}
	}
	return domain.Tag{}, false
}

// Tags returns the cached tag list, loading it if needed.
func (r *TagResolver) Tags(ctx context.Context) ([]domain.Tag, error) {
	return r.load(ctx)
}

func (r *TagResolver) load(ctx context.Context) ([]domain.Tag, error) {
	if p := r.tags.Load(); p != nil {
		return *p, nil
	}
	v, err, _ := r.group.Do("tags", func() (any, error) {
		if p := r.tags.Load(); p != nil {
			return *p, nil
		}
		tags, err := r.catalog.ListTags(ctx)
		if err != nil {
			return nil, err
		}
		r.tags.Store(&tags)
		r.logger.DebugContext(ctx, "tag_resolver: tags loaded", slog.Int("count", len(tags)))
		return tags, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Tag), nil
}

// tagName is the normalized label, or the normalized slug for unlabeled tags.
func tagName(t domain.Tag) string {
	if name := query.Normalize(t.Label); name != "" {
		return name
	}
	return query.Normalize(t.Slug)
}
