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

type callbacksStore struct {
	*MYSQLStore
}

// Callbacks returns an object implementing Callbacks interface
func (ms *MYSQLStore) Callbacks() dependency.Callbacks {
	return &callbacksStore{
		MYSQLStore: ms,
	}
}

const callbackColumns = `id, name, phone, comment, processed, created_at`

func (ms *callbacksStore) ListPaged(ctx context.Context, limit, offset int, of entity.OrderFactor, filters entity.CallbackFilters) ([]entity.CallbackRequest, int, error) {
	conds := []string{}
	args := map[string]any{}
	if filters.Search != "" {
		conds = append(conds, "(name LIKE :search OR phone LIKE :search)")
		args["search"] = "%" + filters.Search + "%"
	}
	if filters.Processed != nil {
		conds = append(conds, "processed = :processed")
		args["processed"] = *filters.Processed
	}
	where := whereClause(conds)

	listArgs := map[string]any{"limit": limit, "offset": offset}
	for k, v := range args {
		listArgs[k] = v
	}

	var (
		cbs   []entity.CallbackRequest
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT %s FROM callback_request %s ORDER BY created_at %s LIMIT :limit OFFSET :offset`,
			callbackColumns, where, of)
		var err error
		cbs, err = QueryListNamed[entity.CallbackRequest](gctx, ms.DB(), query, listArgs)
		if err != nil {
			return fmt.Errorf("can't get callbacks page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = QueryCountNamed(gctx, ms.DB(), fmt.Sprintf(`SELECT COUNT(*) FROM callback_request %s`, where), args)
		if err != nil {
			return fmt.Errorf("can't get callbacks total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return cbs, total, nil
}

func (ms *callbacksStore) GetByID(ctx context.Context, id int) (*entity.CallbackRequest, error) {
	cb, err := QueryNamedOne[entity.CallbackRequest](ctx, ms.DB(),
		fmt.Sprintf(`SELECT %s FROM callback_request WHERE id = :id`, callbackColumns),
		map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrNotFound
		}
		return nil, fmt.Errorf("can't get callback request: %w", err)
	}
	return &cb, nil
}

func (ms *callbacksStore) Add(ctx context.Context, cb *entity.CallbackRequestInsert) (int, error) {
	id, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO callback_request (name, phone, comment)
		VALUES (:name, :phone, :comment)`,
		map[string]any{
			"name":    cb.Name,
			"phone":   cb.Phone,
			"comment": cb.Comment,
		})
	if err != nil {
		return 0, fmt.Errorf("can't add callback request: %w", err)
	}
	return id, nil
}

func (ms *callbacksStore) SetProcessed(ctx context.Context, id int, processed bool) (*entity.CallbackRequest, error) {
	cb, err := ms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ExecNamed(ctx, ms.DB(),
		`UPDATE callback_request SET processed = :processed WHERE id = :id`,
		map[string]any{"id": id, "processed": processed}); err != nil {
		return nil, fmt.Errorf("can't update callback request: %w", err)
	}
	cb.Processed = processed
	return cb, nil
}

func (ms *callbacksStore) Delete(ctx context.Context, id int) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM callback_request WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete callback request: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}
