package store

import (
	"context"
	"fmt"

	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
	"golang.org/x/sync/errgroup"
)

type testimonialsStore struct {
	*MYSQLStore
}

// Testimonials returns an object implementing Testimonials interface
func (ms *MYSQLStore) Testimonials() dependency.Testimonials {
	return &testimonialsStore{
		MYSQLStore: ms,
	}
}

func (ms *testimonialsStore) ListPaged(ctx context.Context, limit, offset int, of entity.OrderFactor, publishedOnly bool) ([]entity.Testimonial, int, error) {
	conds := []string{}
	if publishedOnly {
		conds = append(conds, "is_published = true")
	}
	where := whereClause(conds)

	var (
		tms   []entity.Testimonial
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT id, author, company, body, is_published, created_at FROM testimonial %s ORDER BY created_at %s LIMIT :limit OFFSET :offset`, where, of)
		var err error
		tms, err = QueryListNamed[entity.Testimonial](gctx, ms.DB(), query,
			map[string]any{"limit": limit, "offset": offset})
		if err != nil {
			return fmt.Errorf("can't get testimonials page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = QueryCountNamed(gctx, ms.DB(), fmt.Sprintf(`SELECT COUNT(*) FROM testimonial %s`, where), map[string]any{})
		if err != nil {
			return fmt.Errorf("can't get testimonials total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return tms, total, nil
}

func (ms *testimonialsStore) Add(ctx context.Context, tm *entity.TestimonialInsert) (int, error) {
	id, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO testimonial (author, company, body, is_published)
		VALUES (:author, :company, :body, :isPublished)`,
		map[string]any{
			"author":      tm.Author,
			"company":     tm.Company,
			"body":        tm.Body,
			"isPublished": tm.IsPublished,
		})
	if err != nil {
		return 0, fmt.Errorf("can't add testimonial: %w", err)
	}
	return id, nil
}

func (ms *testimonialsStore) Update(ctx context.Context, id int, tm *entity.TestimonialInsert) error {
	n, err := ExecNamedRows(ctx, ms.DB(), `
		UPDATE testimonial
		SET author = :author, company = :company, body = :body, is_published = :isPublished
		WHERE id = :id`,
		map[string]any{
			"id":          id,
			"author":      tm.Author,
			"company":     tm.Company,
			"body":        tm.Body,
			"isPublished": tm.IsPublished,
		})
	if err != nil {
		return fmt.Errorf("can't update testimonial: %w", err)
	}
	if n == 0 {
		total, err := QueryCountNamed(ctx, ms.DB(),
			`SELECT COUNT(*) FROM testimonial WHERE id = :id`, map[string]any{"id": id})
		if err != nil {
			return fmt.Errorf("can't check testimonial: %w", err)
		}
		if total == 0 {
			return gerr.ErrNotFound
		}
	}
	return nil
}

func (ms *testimonialsStore) Delete(ctx context.Context, id int) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM testimonial WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete testimonial: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}
