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

type eventsStore struct {
	*MYSQLStore
}

// Events returns an object implementing Events interface
func (ms *MYSQLStore) Events() dependency.Events {
	return &eventsStore{
		MYSQLStore: ms,
	}
}

const eventColumns = `id, title, description, location, starts_at, ends_at, is_published, created_at`

func (ms *eventsStore) ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, filters entity.EventFilters, publishedOnly bool) ([]entity.Event, int, error) {
	conds := []string{}
	args := map[string]any{}

	if filters.Search != "" {
		conds = append(conds, "(title LIKE :search OR location LIKE :search)")
		args["search"] = "%" + filters.Search + "%"
	}
	if filters.Dates.From != nil {
		conds = append(conds, "starts_at >= :dateFrom")
		args["dateFrom"] = *filters.Dates.From
	}
	if filters.Dates.To != nil {
		conds = append(conds, "starts_at <= :dateTo")
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
		events []entity.Event
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT %s FROM event %s ORDER BY %s %s LIMIT :limit OFFSET :offset`,
			eventColumns, where, sortField, of)
		var err error
		events, err = QueryListNamed[entity.Event](gctx, ms.DB(), query, listArgs)
		if err != nil {
			return fmt.Errorf("can't get events page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = QueryCountNamed(gctx, ms.DB(), fmt.Sprintf(`SELECT COUNT(*) FROM event %s`, where), args)
		if err != nil {
			return fmt.Errorf("can't get events total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (ms *eventsStore) GetByID(ctx context.Context, id int) (*entity.Event, error) {
	ev, err := QueryNamedOne[entity.Event](ctx, ms.DB(),
		fmt.Sprintf(`SELECT %s FROM event WHERE id = :id`, eventColumns),
		map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrNotFound
		}
		return nil, fmt.Errorf("can't get event: %w", err)
	}
	return &ev, nil
}

func (ms *eventsStore) Add(ctx context.Context, ev *entity.EventInsert) (int, error) {
	id, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO event (title, description, location, starts_at, ends_at, is_published)
		VALUES (:title, :description, :location, :startsAt, :endsAt, :isPublished)`,
		map[string]any{
			"title":       ev.Title,
			"description": ev.Description,
			"location":    ev.Location,
			"startsAt":    ev.StartsAt,
			"endsAt":      ev.EndsAt,
			"isPublished": ev.IsPublished,
		})
	if err != nil {
		return 0, fmt.Errorf("can't add event: %w", err)
	}
	return id, nil
}

func (ms *eventsStore) Update(ctx context.Context, id int, ev *entity.EventInsert) error {
	n, err := ExecNamedRows(ctx, ms.DB(), `
		UPDATE event
		SET title = :title, description = :description, location = :location,
		    starts_at = :startsAt, ends_at = :endsAt, is_published = :isPublished
		WHERE id = :id`,
		map[string]any{
			"id":          id,
			"title":       ev.Title,
			"description": ev.Description,
			"location":    ev.Location,
			"startsAt":    ev.StartsAt,
			"endsAt":      ev.EndsAt,
			"isPublished": ev.IsPublished,
		})
	if err != nil {
		return fmt.Errorf("can't update event: %w", err)
	}
	if n == 0 {
		if _, err := ms.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (ms *eventsStore) Delete(ctx context.Context, id int) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM event WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete event: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}

// Register stores a registration for a published event. The event lookup and
// the insert share a transaction so the event can't be unpublished in between.
func (ms *eventsStore) Register(ctx context.Context, eventID int, reg *entity.EventRegistrationInsert) (int, error) {
	var id int
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		ev, err := rep.Events().GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if !ev.IsPublished {
			return gerr.ErrNotFound
		}
		id, err = ExecNamedLastId(ctx, rep.DB(), `
			INSERT INTO event_registration (event_id, name, email, phone)
			VALUES (:eventId, :name, :email, :phone)`,
			map[string]any{
				"eventId": eventID,
				"name":    reg.Name,
				"email":   reg.Email,
				"phone":   reg.Phone,
			})
		if err != nil {
			return fmt.Errorf("can't add registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (ms *eventsStore) ListRegistrations(ctx context.Context, limit, offset int, of entity.OrderFactor, eventID int) ([]entity.EventRegistration, int, error) {
	conds := []string{}
	args := map[string]any{}
	if eventID > 0 {
		conds = append(conds, "event_id = :eventId")
		args["eventId"] = eventID
	}
	where := whereClause(conds)

	listArgs := map[string]any{"limit": limit, "offset": offset}
	for k, v := range args {
		listArgs[k] = v
	}

	var (
		regs  []entity.EventRegistration
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT id, event_id, name, email, phone, created_at FROM event_registration %s ORDER BY created_at %s LIMIT :limit OFFSET :offset`, where, of)
		var err error
		regs, err = QueryListNamed[entity.EventRegistration](gctx, ms.DB(), query, listArgs)
		if err != nil {
			return fmt.Errorf("can't get registrations page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = QueryCountNamed(gctx, ms.DB(), fmt.Sprintf(`SELECT COUNT(*) FROM event_registration %s`, where), args)
		if err != nil {
			return fmt.Errorf("can't get registrations total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (ms *eventsStore) DeleteRegistration(ctx context.Context, id int) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM event_registration WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete registration: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}
