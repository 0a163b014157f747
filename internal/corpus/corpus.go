// Package corpus loads labelled review files from a two level directory tree:
// <root>/<class>/<file>. Every file is one review.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"sentiment/internal/domain"
)

// ErrEmptyCorpus is returned when root holds no review files.
var ErrEmptyCorpus = errors.New("corpus: no review files found")

// DefaultReaders bounds concurrent file reads in Load.
const DefaultReaders = 8

// Label maps a class directory name to a label: names containing "pos" are
// positive, everything else negative.
func Label(class string) float64 {
	if strings.Contains(class, "pos") {
		return domain.Positive
	}
	return domain.Negative
}

// Load reads every file matching <root>/*/* from src. Reviews are returned
// sorted by path, so the same tree always yields the same order.
func Load(ctx context.Context, src Source, root string, readers int) ([]domain.Review, error) {
	classes, err := src.ReadDir(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}
	var reviews []domain.Review
	for _, c := range classes {
		if !c.IsDir {
			continue
		}
		dir := src.Join(root, c.Name)
		files, err := src.ReadDir(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", dir, err)
		}
		label := Label(c.Name)
		for _, f := range files {
			if f.IsDir {
				continue
			}
			reviews = append(reviews, domain.Review{Path: src.Join(dir, f.Name), Label: label})
		}
	}
	if len(reviews) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrEmptyCorpus, root)
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].Path < reviews[j].Path })

	if readers <= 0 {
		readers = DefaultReaders
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readers)
	for i := range reviews {
		g.Go(func() error {
			data, err := src.ReadFile(gctx, reviews[i].Path)
			if err != nil {
				return fmt.Errorf("read %s: %w", reviews[i].Path, err)
			}
			reviews[i].Text = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reviews, nil
}
