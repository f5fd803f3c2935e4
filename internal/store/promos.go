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

type promosStore struct {
	*MYSQLStore
}

// Promos returns an object implementing Promos interface
func (ms *MYSQLStore) Promos() dependency.Promos {
	return &promosStore{
		MYSQLStore: ms,
	}
}

const promoColumns = `id, title, body, starts_at, ends_at, is_active, created_at`

func (ms *promosStore) ListPaged(ctx context.Context, limit, offset int, of entity.OrderFactor, runningOnly bool) ([]entity.Promo, int, error) {
	conds := []string{}
	args := map[string]any{}
	if runningOnly {
		conds = append(conds, "is_active = true", "starts_at <= :now", "ends_at >= :now")
		args["now"] = ms.Now()
	}
	where := whereClause(conds)

	listArgs := map[string]any{"limit": limit, "offset": offset}
	for k, v := range args {
		listArgs[k] = v
	}

	var (
		promos []entity.Promo
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT %s FROM promo %s ORDER BY starts_at %s LIMIT :limit OFFSET :offset`,
			promoColumns, where, of)
		var err error
		promos, err = QueryListNamed[entity.Promo](gctx, ms.DB(), query, listArgs)
		if err != nil {
			return fmt.Errorf("can't get promos page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = QueryCountNamed(gctx, ms.DB(), fmt.Sprintf(`SELECT COUNT(*) FROM promo %s`, where), args)
		if err != nil {
			return fmt.Errorf("can't get promos total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

func (ms *promosStore) GetByID(ctx context.Context, id int) (*entity.Promo, error) {
	promo, err := QueryNamedOne[entity.Promo](ctx, ms.DB(),
		fmt.Sprintf(`SELECT %s FROM promo WHERE id = :id`, promoColumns),
		map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrNotFound
		}
		return nil, fmt.Errorf("can't get promo: %w", err)
	}
	return &promo, nil
}

func (ms *promosStore) Add(ctx context.Context, promo *entity.PromoInsert) (int, error) {
	id, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO promo (title, body, starts_at, ends_at, is_active)
		VALUES (:title, :body, :startsAt, :endsAt, :isActive)`,
		map[string]any{
			"title":    promo.Title,
			"body":     promo.Body,
			"startsAt": promo.StartsAt,
			"endsAt":   promo.EndsAt,
			"isActive": promo.IsActive,
		})
	if err != nil {
		return 0, fmt.Errorf("can't add promo: %w", err)
	}
	return id, nil
}

func (ms *promosStore) Update(ctx context.Context, id int, promo *entity.PromoInsert) error {
	n, err := ExecNamedRows(ctx, ms.DB(), `
		UPDATE promo
		SET title = :title, body = :body, starts_at = :startsAt,
		    ends_at = :endsAt, is_active = :isActive
		WHERE id = :id`,
		map[string]any{
			"id":       id,
			"title":    promo.Title,
			"body":     promo.Body,
			"startsAt": promo.StartsAt,
			"endsAt":   promo.EndsAt,
			"isActive": promo.IsActive,
		})
	if err != nil {
		return fmt.Errorf("can't update promo: %w", err)
	}
	if n == 0 {
		if _, err := ms.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (ms *promosStore) Delete(ctx context.Context, id int) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM promo WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete promo: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}
