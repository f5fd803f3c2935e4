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

type subscribersStore struct {
	*MYSQLStore
}

// Subscribers returns an object implementing Subscribers interface
func (ms *MYSQLStore) Subscribers() dependency.Subscribers {
	return &subscribersStore{
		MYSQLStore: ms,
	}
}

const subscriberColumns = `id, email, is_active, created_at`

// ListPaged fetches a page and the unpaginated total in parallel. sortField
// must already be resolved through the listquery allow-list; it is spliced
// into ORDER BY verbatim.
func (ms *subscribersStore) ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, filters entity.SubscriberFilters) ([]entity.Subscriber, int, error) {
	conds := []string{}
	args := map[string]any{}

	if filters.Search != "" {
		conds = append(conds, "email LIKE :search")
		args["search"] = "%" + filters.Search + "%"
	}
	if filters.IsActive != nil {
		conds = append(conds, "is_active = :isActive")
		args["isActive"] = *filters.IsActive
	}
	where := whereClause(conds)

	listArgs := map[string]any{"limit": limit, "offset": offset}
	for k, v := range args {
		listArgs[k] = v
	}

	var (
		subs  []entity.Subscriber
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf(`SELECT %s FROM subscriber %s ORDER BY %s %s LIMIT :limit OFFSET :offset`,
			subscriberColumns, where, sortField, of)
		var err error
		subs, err = QueryListNamed[entity.Subscriber](gctx, ms.DB(), query, listArgs)
		if err != nil {
			return fmt.Errorf("can't get subscribers page: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = QueryCountNamed(gctx, ms.DB(), fmt.Sprintf(`SELECT COUNT(*) FROM subscriber %s`, where), args)
		if err != nil {
			return fmt.Errorf("can't get subscribers total: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (ms *subscribersStore) GetByID(ctx context.Context, id int) (*entity.Subscriber, error) {
	sub, err := QueryNamedOne[entity.Subscriber](ctx, ms.DB(),
		fmt.Sprintf(`SELECT %s FROM subscriber WHERE id = :id`, subscriberColumns),
		map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrNotFound
		}
		return nil, fmt.Errorf("can't get subscriber: %w", err)
	}
	return &sub, nil
}

// Subscribe creates or reactivates a subscription for an already-normalized
// email. The whole flow runs in one transaction so two concurrent calls for
// the same new address cannot both pass the existence check; the loser of the
// race hits the unique constraint and is reported as already subscribed.
func (ms *subscribersStore) Subscribe(ctx context.Context, email string) (*entity.Subscriber, bool, error) {
	var (
		sub         entity.Subscriber
		reactivated bool
	)
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		existing, err := QueryNamedOne[entity.Subscriber](ctx, rep.DB(),
			fmt.Sprintf(`SELECT %s FROM subscriber WHERE email = :email`, subscriberColumns),
			map[string]any{"email": email})
		switch {
		case err == nil:
			if existing.IsActive {
				return gerr.ErrAlreadySubscribed
			}
			now := rep.Now()
			if err := ExecNamed(ctx, rep.DB(),
				`UPDATE subscriber SET is_active = true, created_at = :now WHERE id = :id`,
				map[string]any{"id": existing.ID, "now": now}); err != nil {
				return fmt.Errorf("can't reactivate subscriber: %w", err)
			}
			existing.IsActive = true
			existing.CreatedAt = now
			sub = existing
			reactivated = true
			return nil
		case errors.Is(err, sql.ErrNoRows):
			id, err := ExecNamedLastId(ctx, rep.DB(),
				`INSERT INTO subscriber (email, is_active) VALUES (:email, true)`,
				map[string]any{"email": email})
			if err != nil {
				if ms.IsErrUniqueViolation(err) {
					return gerr.ErrAlreadySubscribed
				}
				return fmt.Errorf("can't add subscriber: %w", err)
			}
			sub = entity.Subscriber{ID: id, Email: email, IsActive: true, CreatedAt: rep.Now()}
			return nil
		default:
			return fmt.Errorf("can't check subscriber: %w", err)
		}
	})
	if err != nil {
		if ms.IsErrUniqueViolation(err) {
			err = gerr.ErrAlreadySubscribed
		}
		return nil, false, err
	}
	return &sub, reactivated, nil
}

func (ms *subscribersStore) Unsubscribe(ctx context.Context, id int) (*entity.Subscriber, error) {
	sub, err := ms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.IsActive {
		return nil, gerr.ErrAlreadyUnsubscribed
	}
	if err := ExecNamed(ctx, ms.DB(),
		`UPDATE subscriber SET is_active = false WHERE id = :id`,
		map[string]any{"id": id}); err != nil {
		return nil, fmt.Errorf("can't unsubscribe: %w", err)
	}
	sub.IsActive = false
	return sub, nil
}

func (ms *subscribersStore) Update(ctx context.Context, id int, upd entity.SubscriberUpdate) (*entity.Subscriber, error) {
	var sub entity.Subscriber
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		existing, err := QueryNamedOne[entity.Subscriber](ctx, rep.DB(),
			fmt.Sprintf(`SELECT %s FROM subscriber WHERE id = :id`, subscriberColumns),
			map[string]any{"id": id})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return gerr.ErrNotFound
			}
			return fmt.Errorf("can't get subscriber: %w", err)
		}

		if upd.Email != nil {
			email := entity.NormalizeEmail(*upd.Email)
			taken, err := QueryCountNamed(ctx, rep.DB(),
				`SELECT COUNT(*) FROM subscriber WHERE email = :email AND id != :id`,
				map[string]any{"email": email, "id": id})
			if err != nil {
				return fmt.Errorf("can't check email uniqueness: %w", err)
			}
			if taken > 0 {
				return gerr.ErrEmailTaken
			}
			existing.Email = email
		}
		if upd.IsActive != nil {
			existing.IsActive = *upd.IsActive
		}

		if err := ExecNamed(ctx, rep.DB(),
			`UPDATE subscriber SET email = :email, is_active = :isActive WHERE id = :id`,
			map[string]any{"id": id, "email": existing.Email, "isActive": existing.IsActive}); err != nil {
			if ms.IsErrUniqueViolation(err) {
				return gerr.ErrEmailTaken
			}
			return fmt.Errorf("can't update subscriber: %w", err)
		}
		sub = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (ms *subscribersStore) Delete(ctx context.Context, id int) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM subscriber WHERE id = :id`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete subscriber: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}

func (ms *subscribersStore) GetActive(ctx context.Context) ([]entity.Subscriber, error) {
	subs, err := QueryListNamed[entity.Subscriber](ctx, ms.DB(),
		fmt.Sprintf(`SELECT %s FROM subscriber WHERE is_active = true`, subscriberColumns),
		map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get active subscribers: %w", err)
	}
	return subs, nil
}
