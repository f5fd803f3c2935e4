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

type programsStore struct {
	*MYSQLStore
}

// Programs returns an object implementing Programs interface
func (ms *MYSQLStore) Programs() dependency.Programs {
	return &programsStore{
		MYSQLStore: ms,
	}
}

const programColumns = `id, kind, name, vendor_code, description, price, is_published, created_at, updated_at`

func (ms *programsStore) ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, filters entity.ProgramFilters, publishedOnly bool) ([]entity.Program, int, error) {
	conds := []string{}
	args := map[string]any{}

	if filters.Search != "" {
		conds = append(conds, "(name LIKE :search OR vendor_code LIKE :search)")
		args["search"] = "%" + filters.Search + "%"
	}
	if filters.Kind != "" {
		conds = append(conds, "kind = :kind")
		args["kind"] = string(filters.Kind)
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
		programs []entity.Program
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT %s FROM program %s ORDER BY %s %s LIMIT :limit OFFSET :offset`,
			programColumns, where, sortField, of)
		var err error
		programs, err = QueryListNamed[entity.Program](gctx, ms.DB(), query, listArgs)
		if err != nil {
			return fmt.Errorf("can't get programs page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = QueryCountNamed(gctx, ms.DB(), fmt.Sprintf(`SELECT COUNT(*) FROM program %s`, where), args)
		if err != nil {
			return fmt.Errorf("can't get programs total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return programs, total, nil
}

func (ms *programsStore) GetByID(ctx context.Context, id int) (*entity.Program, error) {
	prg, err := QueryNamedOne[entity.Program](ctx, ms.DB(),
		fmt.Sprintf(`SELECT %s FROM program WHERE id = :id`, programColumns),
		map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrNotFound
		}
		return nil, fmt.Errorf("can't get program: %w", err)
	}
	return &prg, nil
}

func (ms *programsStore) Add(ctx context.Context, prg *entity.ProgramInsert) (int, error) {
	id, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO program (kind, name, vendor_code, description, price, is_published)
		VALUES (:kind, :name, :vendorCode, :description, :price, :isPublished)`,
		map[string]any{
			"kind":        string(prg.Kind),
			"name":        prg.Name,
			"vendorCode":  prg.VendorCode,
			"description": prg.Description,
			"price":       prg.Price,
			"isPublished": prg.IsPublished,
		})
	if err != nil {
		return 0, fmt.Errorf("can't add program: %w", err)
	}
	return id, nil
}

func (ms *programsStore) Update(ctx context.Context, id int, prg *entity.ProgramInsert) error {
	n, err := ExecNamedRows(ctx, ms.DB(), `
		UPDATE program
		SET kind = :kind, name = :name, vendor_code = :vendorCode,
		    description = :description, price = :price, is_published = :isPublished
		WHERE id = :id`,
		map[string]any{
			"id":          id,
			"kind":        string(prg.Kind),
			"name":        prg.Name,
			"vendorCode":  prg.VendorCode,
			"description": prg.Description,
			"price":       prg.Price,
			"isPublished": prg.IsPublished,
		})
	if err != nil {
		return fmt.Errorf("can't update program: %w", err)
	}
	if n == 0 {
		// distinguish "missing" from "update matched the current values"
		if _, err := ms.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (ms *programsStore) Delete(ctx context.Context, id int) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM program WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete program: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}
