package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/softkom/site-manager/internal/entity"
)

type (
	Subscribers interface {
		// ListPaged returns a page of subscribers plus the total number of
		// rows matching the filters regardless of pagination.
		ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, filters entity.SubscriberFilters) ([]entity.Subscriber, int, error)
		GetByID(ctx context.Context, id int) (*entity.Subscriber, error)
		// Subscribe creates a subscription for a normalized email or
		// reactivates an inactive one. reactivated reports which path was
		// taken. An active duplicate yields gerr.ErrAlreadySubscribed.
		Subscribe(ctx context.Context, email string) (sub *entity.Subscriber, reactivated bool, err error)
		// Unsubscribe soft-deletes: flips is_active off, never removes the row.
		Unsubscribe(ctx context.Context, id int) (*entity.Subscriber, error)
		Update(ctx context.Context, id int, upd entity.SubscriberUpdate) (*entity.Subscriber, error)
		Delete(ctx context.Context, id int) error
		GetActive(ctx context.Context) ([]entity.Subscriber, error)
	}

	Programs interface {
		ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, filters entity.ProgramFilters, publishedOnly bool) ([]entity.Program, int, error)
		GetByID(ctx context.Context, id int) (*entity.Program, error)
		Add(ctx context.Context, prg *entity.ProgramInsert) (int, error)
		Update(ctx context.Context, id int, prg *entity.ProgramInsert) error
		Delete(ctx context.Context, id int) error
	}

	Events interface {
		ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, filters entity.EventFilters, publishedOnly bool) ([]entity.Event, int, error)
		GetByID(ctx context.Context, id int) (*entity.Event, error)
		Add(ctx context.Context, ev *entity.EventInsert) (int, error)
		Update(ctx context.Context, id int, ev *entity.EventInsert) error
		Delete(ctx context.Context, id int) error

		Register(ctx context.Context, eventID int, reg *entity.EventRegistrationInsert) (int, error)
		ListRegistrations(ctx context.Context, limit, offset int, of entity.OrderFactor, eventID int) ([]entity.EventRegistration, int, error)
		DeleteRegistration(ctx context.Context, id int) error
	}

	Posts interface {
		ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, filters entity.PostFilters, publishedOnly bool) ([]entity.Post, int, error)
		GetByID(ctx context.Context, id int) (*entity.Post, error)
		Add(ctx context.Context, post *entity.PostInsert) (int, error)
		Update(ctx context.Context, id int, post *entity.PostInsert) error
		Delete(ctx context.Context, id int) error
	}

	Promos interface {
		ListPaged(ctx context.Context, limit, offset int, of entity.OrderFactor, runningOnly bool) ([]entity.Promo, int, error)
		GetByID(ctx context.Context, id int) (*entity.Promo, error)
		Add(ctx context.Context, promo *entity.PromoInsert) (int, error)
		Update(ctx context.Context, id int, promo *entity.PromoInsert) error
		Delete(ctx context.Context, id int) error
	}

	Testimonials interface {
		ListPaged(ctx context.Context, limit, offset int, of entity.OrderFactor, publishedOnly bool) ([]entity.Testimonial, int, error)
		Add(ctx context.Context, tm *entity.TestimonialInsert) (int, error)
		Update(ctx context.Context, id int, tm *entity.TestimonialInsert) error
		Delete(ctx context.Context, id int) error
	}

	Solutions interface {
		ListPaged(ctx context.Context, limit, offset int, sortField string, of entity.OrderFactor, search string, publishedOnly bool) ([]entity.Solution, int, error)
		GetByID(ctx context.Context, id int) (*entity.Solution, error)
		Add(ctx context.Context, sol *entity.SolutionInsert) (int, error)
		Update(ctx context.Context, id int, sol *entity.SolutionInsert) error
		Delete(ctx context.Context, id int) error

		Order(ctx context.Context, solutionID int, ord *entity.SolutionOrderInsert) (*entity.SolutionOrder, error)
		ListOrders(ctx context.Context, limit, offset int, of entity.OrderFactor, search string) ([]entity.SolutionOrder, int, error)
		DeleteOrder(ctx context.Context, id int) error
	}

	Callbacks interface {
		ListPaged(ctx context.Context, limit, offset int, of entity.OrderFactor, filters entity.CallbackFilters) ([]entity.CallbackRequest, int, error)
		GetByID(ctx context.Context, id int) (*entity.CallbackRequest, error)
		Add(ctx context.Context, cb *entity.CallbackRequestInsert) (int, error)
		SetProcessed(ctx context.Context, id int, processed bool) (*entity.CallbackRequest, error)
		Delete(ctx context.Context, id int) error
	}

	Admin interface {
		AddAdmin(ctx context.Context, un, pwHash string) error
		DeleteAdmin(ctx context.Context, username string) error
		ChangePassword(ctx context.Context, un, newHash string) error
		PasswordHashByUsername(ctx context.Context, un string) (string, error)
		GetAdminByUsername(ctx context.Context, username string) (*entity.Admin, error)
		ListAdmins(ctx context.Context) ([]entity.Admin, error)
	}

	Mail interface {
		AddMail(ctx context.Context, ser *entity.SendEmailRequest) (int, error)
		GetAllUnsent(ctx context.Context, withError bool) ([]entity.SendEmailRequest, error)
		UpdateSent(ctx context.Context, id int) error
		AddError(ctx context.Context, id int, errMsg string) error
	}

	Repository interface {
		Subscribers() Subscribers
		Programs() Programs
		Events() Events
		Posts() Posts
		Promos() Promos
		Testimonials() Testimonials
		Solutions() Solutions
		Callbacks() Callbacks
		Admin() Admin
		Mail() Mail
		Tx(ctx context.Context, f func(context.Context, Repository) error) error
		TxBegin(ctx context.Context) (Repository, error)
		TxCommit(ctx context.Context) error
		TxRollback(ctx context.Context) error
		Now() time.Time
		InTx() bool
		Close()
		Ping(ctx context.Context) error
		IsErrUniqueViolation(err error) bool
		IsErrorRepeat(err error) bool
		DB() DB
	}

	// DB represents database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		NamedQuery(query string, arg interface{}) (*sqlx.Rows, error)
		PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
		PreparexContext(ctx context.Context, query string) (*sqlx.Stmt, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	Mailer interface {
		SendNewSubscriber(ctx context.Context, rep Repository, to string) error
		SendEventRegistration(ctx context.Context, rep Repository, to, eventTitle string) error
		SendOrderReceived(ctx context.Context, rep Repository, to, solutionTitle, reference string) error
		SendNewsletter(ctx context.Context, rep Repository, to, subject, html string) error
		Start(ctx context.Context) error
		Stop() error
	}
)
