package utils

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const fallbackSlug = "item"

// Slugify maps free text to a lowercase, hyphen separated, URL-safe identifier.
func Slugify(title string) string {
	s := slug.Make(title)
	if s == "" {
		return fallbackSlug
	}
	return s
}

// UniqueSlug returns base, or base-N with the smallest N >= 2, such that no row
// of model (soft-deleted rows included) already uses it. scope narrows the
// uniqueness domain, e.g. modules are unique per course; it may be nil.
//
// The check is advisory: callers still rely on a unique index and retry when
// a concurrent insert wins.
func UniqueSlug(tx *gorm.DB, model interface{}, base string, scope func(*gorm.DB) *gorm.DB) (string, error) {
	q := tx.Unscoped().Model(model).Where("slug = ? OR slug LIKE ?", base, base+"-%")
	if scope != nil {
		q = scope(q)
	}

	var taken []string
	if err := q.Pluck("slug", &taken).Error; err != nil {
		return "", errors.Wrap(err, "load existing slugs")
	}

	used := make(map[int]bool, len(taken))
	for _, s := range taken {
		if s == base {
			used[1] = true
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(s, base+"-"))
		if err == nil && n >= 2 {
			used[n] = true
		}
	}

	if !used[1] {
		return base, nil
	}
	for n := 2; ; n++ {
		if !used[n] {
			return base + "-" + strconv.Itoa(n), nil
		}
	}
}
