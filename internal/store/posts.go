package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
	"golang.org/x/sync/errgroup"
)

type postsStore struct {
	*MYSQLStore
}

// Posts returns an object implementing Posts interface
func (ms *MYSQLStore) Posts() dependency.Posts {
	return &postsStore{
		MYSQLStore: ms,
	}
}

const postColumns = `id, title, body, cover_url, is_published, published_at, created_at`

func (ms *postsStore) ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, filters entity.PostFilters, publishedOnly bool) ([]entity.Post, int, error) {
	conds := []string{}
	args := map[string]any{}

	if filters.Search != "" {
		conds = append(conds, "title LIKE :search")
		args["search"] = "%" + filters.Search + "%"
	}
	if filters.Dates.From != nil {
		conds = append(conds, "published_at >= :dateFrom")
		args["dateFrom"] = *filters.Dates.From
	}
	if filters.Dates.To != nil {
		conds = append(conds, "published_at <= :dateTo")
		args["dateTo"] = *filters.Dates.To
	}
	if publishedOnly {
		conds = append(conds, "is_published = true")
	}
	where := whereClause(conds)

	listArgs := map[string]any{"limit": limit, "offset": offset}
	for k, v := range args {
		listArgs[k] = v
	}

	var (
		posts []entity.Post
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT %s FROM post %s ORDER BY %s %s LIMIT :limit OFFSET :offset`,
			postColumns, where, sortField, of)
		var err error
		posts, err = QueryListNamed[entity.Post](gctx, ms.DB(), query, listArgs)
		if err != nil {
			return fmt.Errorf("can't get posts page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = QueryCountNamed(gctx, ms.DB(), fmt.Sprintf(`SELECT COUNT(*) FROM post %s`, where), args)
		if err != nil {
			return fmt.Errorf("can't get posts total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (ms *postsStore) GetByID(ctx context.Context, id int) (*entity.Post, error) {
	post, err := QueryNamedOne[entity.Post](ctx, ms.DB(),
		fmt.Sprintf(`SELECT %s FROM post WHERE id = :id`, postColumns),
		map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrNotFound
		}
		return nil, fmt.Errorf("can't get post: %w", err)
	}
	return &post, nil
}

func (ms *postsStore) Add(ctx context.Context, post *entity.PostInsert) (int, error) {
	params := map[string]any{
		"title":       post.Title,
		"body":        post.Body,
		"coverUrl":    post.CoverURL,
		"isPublished": post.IsPublished,
		"publishedAt": sql.NullTime{},
	}
	if post.IsPublished {
		params["publishedAt"] = sql.NullTime{Time: ms.Now(), Valid: true}
	}
	id, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO post (title, body, cover_url, is_published, published_at)
		VALUES (:title, :body, :coverUrl, :isPublished, :publishedAt)`, params)
	if err != nil {
		return 0, fmt.Errorf("can't add post: %w", err)
	}
	return id, nil
}

func (ms *postsStore) Update(ctx context.Context, id int, post *entity.PostInsert) error {
	existing, err := ms.GetByID(ctx, id)
	if err != nil {
		return err
	}

	params := map[string]any{
		"id":          id,
		"title":       post.Title,
		"body":        post.Body,
		"coverUrl":    post.CoverURL,
		"isPublished": post.IsPublished,
		"publishedAt": sql.NullTime{},
	}
	// first publish stamps published_at, republish keeps the original stamp
	switch {
	case existing.PublishedAt != nil:
		params["publishedAt"] = sql.NullTime{Time: *existing.PublishedAt, Valid: true}
	case post.IsPublished:
		params["publishedAt"] = sql.NullTime{Time: ms.Now(), Valid: true}
	}

	if err := ExecNamed(ctx, ms.DB(), `
		UPDATE post
		SET title = :title, body = :body, cover_url = :coverUrl,
		    is_published = :isPublished, published_at = :publishedAt
		WHERE id = :id`, params); err != nil {
		return fmt.Errorf("can't update post: %w", err)
	}
	return nil
}

func (ms *postsStore) Delete(ctx context.Context, id int) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM post WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete post: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}
