package seed

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-translatable/internal/posts"
)

// Apply creates every post in fx then writes its translations one locale
// at a time, each locale as a single batch.
func Apply(ctx context.Context, svc posts.Service, fx *Fixture) ([]*posts.Post, error) {
	if fx == nil {
		return nil, nil
	}

	created := make([]*posts.Post, 0, len(fx.Posts))
	for _, item := range fx.Posts {
		post, err := svc.Create(ctx, posts.CreatePostRequest{Slug: item.Slug, Body: item.Body})
		if err != nil {
			return created, fmt.Errorf("seed: create post %q: %w", item.Slug, err)
		}

		locales := make([]string, 0, len(item.Translations))
		for code := range item.Translations {
			locales = append(locales, code)
		}
		sort.Strings(locales)

		for _, code := range locales {
			values := make(map[string]any, len(item.Translations[code]))
			for attribute, value := range item.Translations[code] {
				if value == nil {
					values[attribute] = nil
					continue
				}
				values[attribute] = *value
			}
			if err := post.Capability().TranslateMany(ctx, values, code); err != nil {
				return created, fmt.Errorf("seed: translate post %q into %s: %w", item.Slug, code, err)
			}
		}
		created = append(created, post)
	}
	return created, nil
}
