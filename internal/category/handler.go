package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio/service/internal/request"
	"github.com/portfolio/service/internal/response"
)

const notFoundMsg = "category not found"

// Handler holds HTTP handlers for category endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new category Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the category endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type nameRequest struct {
	Name string `json:"name" example:"Web"`
}

func decodeName(w http.ResponseWriter, r *http.Request) (string, error) {
	var req nameRequest
	err := request.Decode(w, r, &req, func(r *http.Request) {
		req.Name = r.FormValue("name")
	})
	return req.Name, err
}

// List godoc
//
//	@Summary	List categories
//	@Tags		categories
//	@Produce	json
//	@Success	200	{object}	response.Envelope{data=[]Category}
//	@Failure	500	{object}	response.Envelope
//	@Router		/category [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.List(r.Context())
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}
	response.OK(w, "List Data Category", cats)
}

// Create godoc
//
//	@Summary	Create category
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		request	body		nameRequest	true	"Category name"
//	@Success	200		{object}	response.Envelope{data=Category}
//	@Failure	422		{object}	response.Envelope
//	@Router		/category [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	name, err := decodeName(w, r)
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}

	c, err := h.svc.Create(r.Context(), name)
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}
	response.OK(w, "Category created", c)
}

// Show godoc
//
//	@Summary	Get category
//	@Tags		categories
//	@Produce	json
//	@Param		id	path		int	true	"Category ID"
//	@Success	200	{object}	response.Envelope{data=Category}
//	@Failure	404	{object}	response.Envelope
//	@Router		/category/{id} [get]
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, notFoundMsg)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}
	response.OK(w, "Detail Category", c)
}

// Update godoc
//
//	@Summary	Rename category
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int			true	"Category ID"
//	@Param		request	body		nameRequest	true	"Category name"
//	@Success	200		{object}	response.Envelope{data=Category}
//	@Failure	404		{object}	response.Envelope
//	@Failure	422		{object}	response.Envelope
//	@Router		/category/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, notFoundMsg)
		return
	}

	name, err := decodeName(w, r)
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}

	c, err := h.svc.Update(r.Context(), id, name)
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}
	response.OK(w, "Category updated", c)
}

// Delete godoc
//
//	@Summary		Delete category
//	@Description	Fails with 409 while any project still references the category.
//	@Tags			categories
//	@Produce		json
//	@Param			id	path		int	true	"Category ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		409	{object}	response.Envelope
//	@Router			/category/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, notFoundMsg)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}
	response.OK(w, "Category deleted", nil)
}
