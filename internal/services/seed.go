package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Seed creates indexName and loads paragraphs into it in batches. It is a
// no-op returning 0 when the index already exists. Paragraphs longer than
// docs.MaxDocRunes are clipped. If a batch fails the index is dropped again,
// so the next start retries the whole load.
func Seed(ctx context.Context, ixs *IndexService, docs *DocumentService, indexName string, paragraphs []string) (int, error) {
	if _, err := ixs.Create(ctx, indexName, nil); err != nil {
		if errors.Is(err, ErrIndexExists) {
			return 0, nil
		}
		return 0, err
	}

	batch := docs.MaxBatch
	if batch <= 0 {
		batch = 100
	}
	loaded := 0
	for start := 0; start < len(paragraphs); start += batch {
		end := min(start+batch, len(paragraphs))
		chunk := make([]string, 0, end-start)
		for _, p := range paragraphs[start:end] {
			if docs.MaxDocRunes > 0 && utf8.RuneCountInString(p) > docs.MaxDocRunes {
				p = string([]rune(p)[:docs.MaxDocRunes])
			}
			chunk = append(chunk, p)
		}
		res, err := docs.Add(ctx, "", indexName, "", chunk)
		if err != nil {
			if derr := ixs.Delete(context.WithoutCancel(ctx), indexName); derr != nil {
				return 0, errors.Join(err, fmt.Errorf("drop partial seed: %w", derr))
			}
			return 0, err
		}
		loaded += len(res.IDs)
	}
	return loaded, nil
}
