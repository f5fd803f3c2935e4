package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
	"golang.org/x/sync/errgroup"
)

type solutionsStore struct {
	*MYSQLStore
}

// Solutions returns an object implementing Solutions interface
func (ms *MYSQLStore) Solutions() dependency.Solutions {
	return &solutionsStore{
		MYSQLStore: ms,
	}
}

const solutionColumns = `id, title, description, price, is_published, created_at`

func (ms *solutionsStore) ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, search string, publishedOnly bool) ([]entity.Solution, int, error) {
	conds := []string{}
	args := map[string]any{}
	if search != "" {
		conds = append(conds, "title LIKE :search")
		args["search"] = "%" + search + "%"
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
		sols  []entity.Solution
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT %s FROM solution %s ORDER BY %s %s LIMIT :limit OFFSET :offset`,
			solutionColumns, where, sortField, of)
		var err error
		sols, err = QueryListNamed[entity.Solution](gctx, ms.DB(), query, listArgs)
		if err != nil {
			return fmt.Errorf("can't get solutions page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = QueryCountNamed(gctx, ms.DB(), fmt.Sprintf(`SELECT COUNT(*) FROM solution %s`, where), args)
		if err != nil {
			return fmt.Errorf("can't get solutions total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return sols, total, nil
}

func (ms *solutionsStore) GetByID(ctx context.Context, id int) (*entity.Solution, error) {
	sol, err := QueryNamedOne[entity.Solution](ctx, ms.DB(),
		fmt.Sprintf(`SELECT %s FROM solution WHERE id = :id`, solutionColumns),
		map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrNotFound
		}
		return nil, fmt.Errorf("can't get solution: %w", err)
	}
	return &sol, nil
}

func (ms *solutionsStore) Add(ctx context.Context, sol *entity.SolutionInsert) (int, error) {
	id, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO solution (title, description, price, is_published)
		VALUES (:title, :description, :price, :isPublished)`,
		map[string]any{
			"title":       sol.Title,
			"description": sol.Description,
			"price":       sol.Price,
			"isPublished": sol.IsPublished,
		})
	if err != nil {
		return 0, fmt.Errorf("can't add solution: %w", err)
	}
	return id, nil
}

func (ms *solutionsStore) Update(ctx context.Context, id int, sol *entity.SolutionInsert) error {
	n, err := ExecNamedRows(ctx, ms.DB(), `
		UPDATE solution
		SET title = :title, description = :description, price = :price, is_published = :isPublished
		WHERE id = :id`,
		map[string]any{
			"id":          id,
			"title":       sol.Title,
			"description": sol.Description,
			"price":       sol.Price,
			"isPublished": sol.IsPublished,
		})
	if err != nil {
		return fmt.Errorf("can't update solution: %w", err)
	}
	if n == 0 {
		if _, err := ms.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (ms *solutionsStore) Delete(ctx context.Context, id int) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM solution WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete solution: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}

// Order records an order for a published solution under a fresh uuid
// reference the visitor can quote to a manager.
func (ms *solutionsStore) Order(ctx context.Context, solutionID int, ord *entity.SolutionOrderInsert) (*entity.SolutionOrder, error) {
	var placed entity.SolutionOrder
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		sol, err := rep.Solutions().GetByID(ctx, solutionID)
		if err != nil {
			return err
		}
		if !sol.IsPublished {
			return gerr.ErrNotFound
		}
		reference := uuid.New().String()
		id, err := ExecNamedLastId(ctx, rep.DB(), `
			INSERT INTO solution_order (reference, solution_id, name, email, phone, comment)
			VALUES (:reference, :solutionId, :name, :email, :phone, :comment)`,
			map[string]any{
				"reference":  reference,
				"solutionId": solutionID,
				"name":       ord.Name,
				"email":      ord.Email,
				"phone":      ord.Phone,
				"comment":    ord.Comment,
			})
		if err != nil {
			return fmt.Errorf("can't add solution order: %w", err)
		}
		placed = entity.SolutionOrder{
			ID:                  id,
			Reference:           reference,
			SolutionID:          solutionID,
			CreatedAt:           rep.Now(),
			SolutionOrderInsert: *ord,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &placed, nil
}

func (ms *solutionsStore) ListOrders(ctx context.Context, limit, offset int, of entity.OrderFactor, search string) ([]entity.SolutionOrder, int, error) {
	conds := []string{}
	args := map[string]any{}
	if search != "" {
		conds = append(conds, "(name LIKE :search OR email LIKE :search OR reference LIKE :search)")
		args["search"] = "%" + search + "%"
	}
	where := whereClause(conds)

	listArgs := map[string]any{"limit": limit, "offset": offset}
	for k, v := range args {
		listArgs[k] = v
	}

	var (
		orders []entity.SolutionOrder
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT id, reference, solution_id, name, email, phone, comment, created_at FROM solution_order %s ORDER BY created_at %s LIMIT :limit OFFSET :offset`, where, of)
		var err error
		orders, err = QueryListNamed[entity.SolutionOrder](gctx, ms.DB(), query, listArgs)
		if err != nil {
			return fmt.Errorf("can't get orders page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = QueryCountNamed(gctx, ms.DB(), fmt.Sprintf(`SELECT COUNT(*) FROM solution_order %s`, where), args)
		if err != nil {
			return fmt.Errorf("can't get orders total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (ms *solutionsStore) DeleteOrder(ctx context.Context, id int) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM solution_order WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete solution order: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}
