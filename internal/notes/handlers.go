package notes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	gohttp "github.com/km-arc/go-lifespan/framework/http"
	"github.com/km-arc/go-lifespan/framework/lifespan"
	"github.com/km-arc/go-lifespan/framework/routing"
)

// Routes mounts the notes API on r. Handlers read the repository from the
// request's lifespan state.
//
//	GET  /notes        → list
//	POST /notes        → create
//	GET  /notes/{id}   → show
func Routes(r *routing.Router, repo lifespan.Accessor[*Repository]) {
	h := handlers{repo: repo}
	r.Get("/notes", h.list)
	r.Post("/notes", h.create)
	r.Get("/notes/{id}", h.show)
}

type handlers struct {
	repo lifespan.Accessor[*Repository]
}

func (h handlers) list(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	repo, err := h.repo.FromRequest(r)
	if err != nil {
		res.Fail(err)
		return
	}

	limit, err := strconv.Atoi(gohttp.NewRequest(r).Query("limit", "20"))
	if err != nil || limit <= 0 {
		res.Error(http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	notes, err := repo.List(r.Context(), limit)
	if err != nil {
		res.Fail(err)
		return
	}
	res.Success(notes)
}

func (h handlers) create(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	repo, err := h.repo.FromRequest(r)
	if err != nil {
		res.Fail(err)
		return
	}

	var body struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := gohttp.NewRequest(r).Bind(&body); err != nil {
		res.Fail(err)
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		res.Error(http.StatusUnprocessableEntity, "title is required")
		return
	}

	n := &Note{Title: body.Title, Body: body.Body}
	if err := repo.Create(r.Context(), n); err != nil {
		res.Fail(err)
		return
	}
	res.Created(n)
}

func (h handlers) show(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	repo, err := h.repo.FromRequest(r)
	if err != nil {
		res.Fail(err)
		return
	}

	id, err := strconv.ParseUint(routing.Param(r, "id"), 10, 64)
	if err != nil {
		res.NotFound()
		return
	}

	n, err := repo.Find(r.Context(), uint(id))
	switch {
	case errors.Is(err, ErrNotFound):
		res.NotFound()
	case err != nil:
		res.Fail(err)
	default:
		res.Success(n)
	}
}
