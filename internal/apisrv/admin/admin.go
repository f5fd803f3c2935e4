// Package admin implements handlers for the back-office panel. List
// endpoints follow the grid convention: _start/_end row indexes, _sort and
// _order keys, the total row count in X-Total-Count.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/softkom/site-manager/internal/apisrv/rest"
	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
	"github.com/softkom/site-manager/internal/listquery"
)

// Server implements handlers for admin requests.
type Server struct {
	repo   dependency.Repository
	mailer dependency.Mailer
}

// New creates a new server with admin handlers.
func New(r dependency.Repository, m dependency.Mailer) *Server {
	return &Server{
		repo:   r,
		mailer: m,
	}
}

// Routes mounts the back-office endpoints.
func (s *Server) Routes(r chi.Router) {
	r.Get("/subscribers", s.ListSubscribers)
	r.Get("/subscribers/{id}", s.GetSubscriber)
	r.Patch("/subscribers/{id}", s.UpdateSubscriber)
	r.Put("/subscribers/{id}", s.UpdateSubscriber)
	r.Delete("/subscribers/{id}", s.DeleteSubscriber)
	r.Post("/newsletters", s.SendNewsletter)

	r.Get("/programs", s.ListPrograms)
	r.Get("/programs/{id}", s.GetProgram)
	r.Post("/programs", s.CreateProgram)
	r.Put("/programs/{id}", s.UpdateProgram)
	r.Delete("/programs/{id}", s.DeleteProgram)

	r.Get("/events", s.ListEvents)
	r.Get("/events/{id}", s.GetEvent)
	r.Post("/events", s.CreateEvent)
	r.Put("/events/{id}", s.UpdateEvent)
	r.Delete("/events/{id}", s.DeleteEvent)
	r.Get("/events/{id}/registrations", s.ListRegistrations)
	r.Delete("/registrations/{id}", s.DeleteRegistration)

	r.Get("/posts", s.ListPosts)
	r.Get("/posts/{id}", s.GetPost)
	r.Post("/posts", s.CreatePost)
	r.Put("/posts/{id}", s.UpdatePost)
	r.Delete("/posts/{id}", s.DeletePost)

	r.Get("/promos", s.ListPromos)
	r.Get("/promos/{id}", s.GetPromo)
	r.Post("/promos", s.CreatePromo)
	r.Put("/promos/{id}", s.UpdatePromo)
	r.Delete("/promos/{id}", s.DeletePromo)

	r.Get("/testimonials", s.ListTestimonials)
	r.Post("/testimonials", s.CreateTestimonial)
	r.Put("/testimonials/{id}", s.UpdateTestimonial)
	r.Delete("/testimonials/{id}", s.DeleteTestimonial)

	r.Get("/solutions", s.ListSolutions)
	r.Get("/solutions/{id}", s.GetSolution)
	r.Post("/solutions", s.CreateSolution)
	r.Put("/solutions/{id}", s.UpdateSolution)
	r.Delete("/solutions/{id}", s.DeleteSolution)
	r.Get("/orders", s.ListOrders)
	r.Delete("/orders/{id}", s.DeleteOrder)

	r.Get("/callbacks", s.ListCallbacks)
	r.Patch("/callbacks/{id}", s.SetCallbackProcessed)
	r.Delete("/callbacks/{id}", s.DeleteCallback)
}

var subscriberSort = listquery.SortMapping{
	Aliases: map[string]string{
		"subscribedAt": "created_at",
		"createdAt":    "created_at",
		"isActive":     "is_active",
	},
	Allowed: map[string]bool{
		"id": true, "email": true, "created_at": true, "is_active": true,
	},
	Default: "created_at",
}

var programSort = listquery.SortMapping{
	Aliases: map[string]string{
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
		"vendorCode":  "vendor_code",
		"isPublished": "is_published",
	},
	Allowed: map[string]bool{
		"id": true, "name": true, "kind": true, "price": true,
		"vendor_code": true, "created_at": true, "updated_at": true, "is_published": true,
	},
	Default: "created_at",
}

var eventSort = listquery.SortMapping{
	Aliases: map[string]string{
		"startsAt":    "starts_at",
		"endsAt":      "ends_at",
		"createdAt":   "created_at",
		"isPublished": "is_published",
	},
	Allowed: map[string]bool{
		"id": true, "title": true, "starts_at": true, "ends_at": true,
		"created_at": true, "is_published": true,
	},
	Default: "starts_at",
}

var postSort = listquery.SortMapping{
	Aliases: map[string]string{
		"createdAt":   "created_at",
		"publishedAt": "published_at",
		"isPublished": "is_published",
	},
	Allowed: map[string]bool{
		"id": true, "title": true, "created_at": true,
		"published_at": true, "is_published": true,
	},
	Default: "created_at",
}

var solutionSort = listquery.SortMapping{
	Aliases: map[string]string{
		"createdAt":   "created_at",
		"isPublished": "is_published",
	},
	Allowed: map[string]bool{
		"id": true, "title": true, "price": true,
		"created_at": true, "is_published": true,
	},
	Default: "created_at",
}

// ListSubscribers serves the subscriber grid: q searches the email, isActive
// narrows to one state, sort keys go through the subscriber sort mapping.
func (s *Server) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.GridPage(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	isActive, err := listquery.BoolParam(q, "isActive")
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	filters := entity.SubscriberFilters{
		Search:   q.Get("q"),
		IsActive: isActive,
	}
	subs, total, err := s.repo.Subscribers().ListPaged(r.Context(), limit, offset,
		subscriberSort.Field(q.Get("_sort")), listquery.Order(q.Get("_order")), filters)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, subs)
}

func (s *Server) GetSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	sub, err := s.repo.Subscribers().GetByID(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, sub)
}

// UpdateSubscriber applies a partial update. Changing the email to one
// already taken by another subscriber is a conflict.
func (s *Server) UpdateSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	var upd entity.SubscriberUpdate
	if err := rest.DecodeJSON(r, &upd); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if upd.Email != nil {
		email := entity.NormalizeEmail(*upd.Email)
		if !entity.IsValidEmail(email) {
			rest.WriteError(w, gerr.ErrInvalidEmail)
			return
		}
		upd.Email = &email
	}
	sub, err := s.repo.Subscribers().Update(r.Context(), id, upd)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, sub)
}

// DeleteSubscriber removes the row for good, unlike the public unsubscribe.
func (s *Server) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	if err := s.repo.Subscribers().Delete(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "subscriber deleted")
}

type newsletterRequest struct {
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

type newsletterResponse struct {
	Recipients int `json:"recipients"`
}

// SendNewsletter queues a campaign email for every active subscriber. Rows
// that don't go out on the first attempt are retried by the mail worker, so
// the response only reports how many recipients were queued.
func (s *Server) SendNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Subject == "" || req.Html == "" {
		rest.WriteMessage(w, http.StatusBadRequest, "subject and html are required")
		return
	}
	subs, err := s.repo.Subscribers().GetActive(r.Context())
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	for _, sub := range subs {
		if err := s.mailer.SendNewsletter(r.Context(), s.repo, sub.Email, req.Subject, req.Html); err != nil {
			rest.WriteError(w, err)
			return
		}
	}
	rest.WriteJSON(w, http.StatusAccepted, newsletterResponse{Recipients: len(subs)})
}

func (s *Server) ListPrograms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.GridPage(q)
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
	prgs, total, err := s.repo.Programs().ListPaged(r.Context(), limit, offset,
		programSort.Field(q.Get("_sort")), listquery.Order(q.Get("_order")), filters, false)
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
	rest.WriteJSON(w, http.StatusOK, prg)
}

func (s *Server) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var prg entity.ProgramInsert
	if err := rest.DecodeJSON(r, &prg); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := prg.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.repo.Programs().Add(r.Context(), &prg)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, map[string]int{"id": id})
}

func (s *Server) UpdateProgram(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	var prg entity.ProgramInsert
	if err := rest.DecodeJSON(r, &prg); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := prg.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.Programs().Update(r.Context(), id, &prg); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "program updated")
}

func (s *Server) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	if err := s.repo.Programs().Delete(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "program deleted")
}

func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.GridPage(q)
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
	evs, total, err := s.repo.Events().ListPaged(r.Context(), limit, offset,
		eventSort.Field(q.Get("_sort")), listquery.Order(q.Get("_order")), filters, false)
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
	rest.WriteJSON(w, http.StatusOK, ev)
}

func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev entity.EventInsert
	if err := rest.DecodeJSON(r, &ev); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := ev.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.repo.Events().Add(r.Context(), &ev)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, map[string]int{"id": id})
}

func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	var ev entity.EventInsert
	if err := rest.DecodeJSON(r, &ev); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := ev.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.Events().Update(r.Context(), id, &ev); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "event updated")
}

func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	if err := s.repo.Events().Delete(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "event deleted")
}

func (s *Server) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	q := r.URL.Query()
	limit, offset, err := listquery.GridPage(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	regs, total, err := s.repo.Events().ListRegistrations(r.Context(), limit, offset,
		listquery.Order(q.Get("_order")), eventID)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, regs)
}

func (s *Server) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	if err := s.repo.Events().DeleteRegistration(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "registration deleted")
}

func (s *Server) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.GridPage(q)
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
	posts, total, err := s.repo.Posts().ListPaged(r.Context(), limit, offset,
		postSort.Field(q.Get("_sort")), listquery.Order(q.Get("_order")), filters, false)
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
	rest.WriteJSON(w, http.StatusOK, post)
}

func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	var post entity.PostInsert
	if err := rest.DecodeJSON(r, &post); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := post.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.repo.Posts().Add(r.Context(), &post)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, map[string]int{"id": id})
}

func (s *Server) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	var post entity.PostInsert
	if err := rest.DecodeJSON(r, &post); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := post.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.Posts().Update(r.Context(), id, &post); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "post updated")
}

func (s *Server) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	if err := s.repo.Posts().Delete(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "post deleted")
}

func (s *Server) ListPromos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.GridPage(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	promos, total, err := s.repo.Promos().ListPaged(r.Context(), limit, offset,
		listquery.Order(q.Get("_order")), false)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, promos)
}

func (s *Server) GetPromo(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	promo, err := s.repo.Promos().GetByID(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, promo)
}

func (s *Server) CreatePromo(w http.ResponseWriter, r *http.Request) {
	var promo entity.PromoInsert
	if err := rest.DecodeJSON(r, &promo); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := promo.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.repo.Promos().Add(r.Context(), &promo)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, map[string]int{"id": id})
}

func (s *Server) UpdatePromo(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	var promo entity.PromoInsert
	if err := rest.DecodeJSON(r, &promo); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := promo.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.Promos().Update(r.Context(), id, &promo); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "promo updated")
}

func (s *Server) DeletePromo(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	if err := s.repo.Promos().Delete(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "promo deleted")
}

func (s *Server) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.GridPage(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	tms, total, err := s.repo.Testimonials().ListPaged(r.Context(), limit, offset,
		listquery.Order(q.Get("_order")), false)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, tms)
}

func (s *Server) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var tm entity.TestimonialInsert
	if err := rest.DecodeJSON(r, &tm); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := tm.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.repo.Testimonials().Add(r.Context(), &tm)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, map[string]int{"id": id})
}

func (s *Server) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	var tm entity.TestimonialInsert
	if err := rest.DecodeJSON(r, &tm); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := tm.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.Testimonials().Update(r.Context(), id, &tm); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "testimonial updated")
}

func (s *Server) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	if err := s.repo.Testimonials().Delete(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "testimonial deleted")
}

func (s *Server) ListSolutions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.GridPage(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	sols, total, err := s.repo.Solutions().ListPaged(r.Context(), limit, offset,
		solutionSort.Field(q.Get("_sort")), listquery.Order(q.Get("_order")), q.Get("q"), false)
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
	rest.WriteJSON(w, http.StatusOK, sol)
}

func (s *Server) CreateSolution(w http.ResponseWriter, r *http.Request) {
	var sol entity.SolutionInsert
	if err := rest.DecodeJSON(r, &sol); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := sol.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.repo.Solutions().Add(r.Context(), &sol)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, map[string]int{"id": id})
}

func (s *Server) UpdateSolution(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	var sol entity.SolutionInsert
	if err := rest.DecodeJSON(r, &sol); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := sol.Validate(); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.Solutions().Update(r.Context(), id, &sol); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "solution updated")
}

func (s *Server) DeleteSolution(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	if err := s.repo.Solutions().Delete(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "solution deleted")
}

func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.GridPage(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	orders, total, err := s.repo.Solutions().ListOrders(r.Context(), limit, offset,
		listquery.Order(q.Get("_order")), q.Get("q"))
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, orders)
}

func (s *Server) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	if err := s.repo.Solutions().DeleteOrder(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "order deleted")
}

func (s *Server) ListCallbacks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := listquery.GridPage(q)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	processed, err := listquery.BoolParam(q, "processed")
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	filters := entity.CallbackFilters{
		Search:    q.Get("q"),
		Processed: processed,
	}
	cbs, total, err := s.repo.Callbacks().ListPaged(r.Context(), limit, offset,
		listquery.Order(q.Get("_order")), filters)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.TotalCount(w, total)
	rest.WriteJSON(w, http.StatusOK, cbs)
}

type setProcessedRequest struct {
	Processed bool `json:"processed"`
}

func (s *Server) SetCallbackProcessed(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	var req setProcessedRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	cb, err := s.repo.Callbacks().SetProcessed(r.Context(), id, req.Processed)
	if err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, cb)
}

func (s *Server) DeleteCallback(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ID(r)
	if err != nil {
		rest.WriteMessage(w, http.StatusBadRequest, "malformed id")
		return
	}
	if err := s.repo.Callbacks().Delete(r.Context(), id); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteMessage(w, http.StatusOK, "callback deleted")
}
