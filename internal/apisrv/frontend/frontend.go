// Package frontend implements handlers for the public site: published
// content, the newsletter subscription flow and the lead-capture forms.
package frontend

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/softkom/site-manager/internal/apisrv/rest"
	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
	"github.com/softkom/site-manager/internal/listquery"
)

// Server implements handlers for frontend requests.
type Server struct {
	repo   dependency.Repository
	mailer dependency.Mailer
}

// New creates a new server with frontend handlers.
func New(r dependency.Repository, m dependency.Mailer) *Server {
	return &Server{
		repo:   r,
		mailer: m,
	}
}

// Routes mounts the public endpoints.
func (s *Server) Routes(r chi.Router) {
	r.Post("/subscribers", s.Subscribe)
	r.Patch("/subscribers/{id}", s.Unsubscribe)
	// kept for links already embedded in sent newsletters
	r.Patch("/subscribers/{id}/unsubscribe", s.Unsubscribe)

	r.Get("/programs", s.ListPrograms)
	r.Get("/programs/{id}", s.GetProgram)

	r.Get("/events", s.ListEvents)
	r.Get("/events/{id}", s.GetEvent)
	r.Post("/events/{id}/registrations", s.RegisterForEvent)

	r.Get("/posts", s.ListPosts)
	r.Get("/posts/{id}", s.GetPost)

	r.Get("/promos", s.ListPromos)
	r.Get("/testimonials", s.ListTestimonials)

	r.Get("/solutions", s.ListSolutions)
	r.Get("/solutions/{id}", s.GetSolution)
	r.Post("/solutions/{id}/orders", s.OrderSolution)

	r.Post("/callbacks", s.RequestCallback)
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe adds an email to the newsletter list. A brand-new address gets a
// 201, a reactivated one a 200, an already active one a 409.
func (s *Server) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req subscribeRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	email := entity.NormalizeEmail(req.Email)
	if !entity.IsValidEmail(email) {
		rest.WriteError(w, gerr.ErrInvalidEmail)
		return
	}

	sub, reactivated, err := s.repo.Subscribers().Subscribe(ctx, email)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	if err := s.mailer.SendNewSubscriber(ctx, s.repo, sub.Email); err != nil {
		slog.Default().ErrorContext(ctx, "can't queue subscription confirmation",
			slog.String("err", err.Error()),
		)
	}

	if reactivated {
		rest.WriteMessage(w, http.StatusOK, "Successfully resubscribed")
		return
	}
	rest.WriteJSON(w, http.StatusCreated, sub)
}

// Unsubscribe deactivates a subscription but keeps the row so the address can
// come back later.
func (s *Server) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	sub, err := s.repo.Subscribers().Unsubscribe(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, sub)
}

func (s *Server) ListPrograms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.PageLimit(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	filters := entity.ProgramFilters{
		Search: q.Get("q"),
		Kind:   entity.ProgramKind(q.Get("kind")),
	}
	if filters.Kind != "" && !filters.Kind.Valid() {
		rest.WriteMessage(w, http.StatusBadRequest, "unknown program kind")
		return
	}
	prgs, total, err := s.repo.Programs().ListPaged(r.Context(), limit, offset, "name", entity.Ascending, filters, true)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, prgs)
}

func (s *Server) GetProgram(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	prg, err := s.repo.Programs().GetByID(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if !prg.IsPublished {
		rest.WriteError(w, gerr.ErrNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, prg)
}

func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.PageLimit(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	dates, err := listquery.DateRangeParam(q, "from", "to")
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	filters := entity.EventFilters{Search: q.Get("q"), Dates: dates}
	evs, total, err := s.repo.Events().ListPaged(r.Context(), limit, offset, "starts_at", entity.Ascending, filters, true)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, evs)
}

func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	ev, err := s.repo.Events().GetByID(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if !ev.IsPublished {
		rest.WriteError(w, gerr.ErrNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ev)
}

// RegisterForEvent records a visitor registration for a published event and
// queues a confirmation mail.
func (s *Server) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	var reg entity.EventRegistrationInsert
	if err := rest.DecodeJSON(r, &reg); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := reg.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	reg.Email = entity.NormalizeEmail(reg.Email)

	id, err := s.repo.Events().Register(ctx, eventID, &reg)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	ev, err := s.repo.Events().GetByID(ctx, eventID)
	if err == nil {
		if err := s.mailer.SendEventRegistration(ctx, s.repo, reg.Email, ev.Title); err != nil {
			slog.Default().ErrorContext(ctx, "can't queue registration confirmation",
				slog.String("err", err.Error()),
			)
		}
	}

	rest.WriteJSON(w, http.StatusCreated, map[string]int{"id": id})
}

func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.PageLimit(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	dates, err := listquery.DateRangeParam(q, "from", "to")
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	filters := entity.PostFilters{Search: q.Get("q"), Dates: dates}
	posts, total, err := s.repo.Posts().ListPaged(r.Context(), limit, offset, "published_at", entity.Descending, filters, true)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, posts)
}

func (s *Server) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	post, err := s.repo.Posts().GetByID(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if !post.IsPublished {
		rest.WriteError(w, gerr.ErrNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, post)
}

// ListPromos returns only promotions whose window is currently open.
func (s *Server) ListPromos(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := listquery.PageLimit(r.URL.Query())
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	promos, total, err := s.repo.Promos().ListPaged(r.Context(), limit, offset, entity.Descending, true)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, promos)
}

func (s *Server) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := listquery.PageLimit(r.URL.Query())
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	tms, total, err := s.repo.Testimonials().ListPaged(r.Context(), limit, offset, entity.Descending, true)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, tms)
}

func (s *Server) ListSolutions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.PageLimit(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sols, total, err := s.repo.Solutions().ListPaged(r.Context(), limit, offset, "title", entity.Ascending, q.Get("q"), true)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, sols)
}

func (s *Server) GetSolution(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	sol, err := s.repo.Solutions().GetByID(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	if !sol.IsPublished {
		rest.WriteError(w, gerr.ErrNotFound)
		return
	}
	rest.WriteJSON(w, http.StatusOK, sol)
}

// OrderSolution places an order for a ready solution and hands the uuid
// reference back to the visitor.
func (s *Server) OrderSolution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	solutionID, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	var ord entity.SolutionOrderInsert
	if err := rest.DecodeJSON(r, &ord); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := ord.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	ord.Email = entity.NormalizeEmail(ord.Email)

	placed, err := s.repo.Solutions().Order(ctx, solutionID, &ord)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	sol, err := s.repo.Solutions().GetByID(ctx, solutionID)
	if err == nil {
		if err := s.mailer.SendOrderReceived(ctx, s.repo, placed.Email, sol.Title, placed.Reference); err != nil {
			slog.Default().ErrorContext(ctx, "can't queue order confirmation",
				slog.String("err", err.Error()),
			)
		}
	}

	rest.WriteJSON(w, http.StatusCreated, placed)
}

// RequestCallback stores a "call me back" form submission.
func (s *Server) RequestCallback(w http.ResponseWriter, r *http.Request) {
	var cb entity.CallbackRequestInsert
	if err := rest.DecodeJSON(r, &cb); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := cb.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.repo.Callbacks().Add(r.Context(), &cb)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, map[string]int{"id": id})
}
