package project

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio/service/internal/errs"
	"github.com/portfolio/service/internal/request"
	"github.com/portfolio/service/internal/response"
)

const (
	notFoundMsg = "project not found"

	// maxRequestBody caps a whole create/update request. The image limit
	// itself is enforced by the service so it can be reported per field.
	maxRequestBody = 10 << 20
	maxMemory      = 4 << 20
)

// Handler holds HTTP handlers for project endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new project Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the project endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}", h.Update)
	// Browsers cannot send multipart bodies with PUT from a plain form.
	r.Post("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// parseInput reads a multipart or urlencoded form, or a JSON body without image.
func parseInput(w http.ResponseWriter, r *http.Request) (Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" || mediaType == "application/x-www-form-urlencoded" {
		return parseForm(r)
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return Input{}, errs.Invalid("body", "invalid request body")
	}
	return in, nil
}

func parseForm(r *http.Request) (Input, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Input{}, errs.Invalid("body", "request body too large")
		}
		return Input{}, errs.Invalid("body", "malformed form body")
	}

	in := Input{
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		Bidang:     r.FormValue("bidang"),
		GithubLink: r.FormValue("github_link"),
		DemoLink:   r.FormValue("demo_link"),
	}

	verr := errs.NewValidationError()
	for _, raw := range append(r.Form["category_id[]"], r.Form["category_id"]...) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				verr.Add("category_id", "must contain numeric category ids")
				continue
			}
			in.CategoryIDs = append(in.CategoryIDs, id)
		}
	}

	if r.MultipartForm != nil {
		if fh := r.MultipartForm.File["image"]; len(fh) > 0 {
			f, err := fh[0].Open()
			if err != nil {
				return Input{}, errs.Invalid("image", "could not read uploaded file")
			}
			defer f.Close()

			// One byte past the limit is enough for the service to reject it.
			data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
			if err != nil {
				return Input{}, errs.Invalid("image", "could not read uploaded file")
			}
			in.Image = &Image{Data: data}
		}
	}

	in.formErrs = verr
	return in, nil
}

// List godoc
//
//	@Summary	List projects
//	@Tags		projects
//	@Produce	json
//	@Success	200	{object}	response.Envelope{data=[]Project}
//	@Failure	500	{object}	response.Envelope
//	@Router		/projects [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.List(r.Context())
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}
	response.OK(w, "List Data Project", projects)
}

// Create godoc
//
//	@Summary	Create project
//	@Tags		projects
//	@Accept		mpfd
//	@Produce	json
//	@Param		title		formData	string	true	"Title"
//	@Param		content		formData	string	true	"Content"
//	@Param		bidang		formData	string	true	"frontend, backend or fullstack"
//	@Param		github_link	formData	string	false	"Repository URL"
//	@Param		demo_link	formData	string	false	"Demo URL"
//	@Param		category_id	formData	[]int	true	"Category IDs"
//	@Param		image		formData	file	false	"Cover image, at most 2 MiB"
//	@Success	200			{object}	response.Envelope{data=Project}
//	@Failure	422			{object}	response.Envelope
//	@Failure	500			{object}	response.Envelope
//	@Router		/projects [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := parseInput(w, r)
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}

	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}
	response.OKWithImage(w, "Project saved", imageURL(p), p)
}

// Show godoc
//
//	@Summary	Get project
//	@Tags		projects
//	@Produce	json
//	@Param		id	path		int	true	"Project ID"
//	@Success	200	{object}	response.Envelope{data=Project}
//	@Failure	404	{object}	response.Envelope
//	@Router		/projects/{id} [get]
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, notFoundMsg)
		return
	}

	p, err := h.svc.Show(r.Context(), id)
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}
	response.OKWithImage(w, "Detail Project", imageURL(p), p)
}

// Update godoc
//
//	@Summary		Update project
//	@Description	Replaces every field. A new image replaces the old one only after the row is updated.
//	@Tags			projects
//	@Accept			mpfd
//	@Produce		json
//	@Param			id			path		int		true	"Project ID"
//	@Param			title		formData	string	true	"Title"
//	@Param			content		formData	string	true	"Content"
//	@Param			bidang		formData	string	true	"frontend, backend or fullstack"
//	@Param			github_link	formData	string	false	"Repository URL"
//	@Param			demo_link	formData	string	false	"Demo URL"
//	@Param			category_id	formData	[]int	true	"Category IDs"
//	@Param			image		formData	file	false	"Cover image, at most 2 MiB"
//	@Success		200			{object}	response.Envelope{data=Project}
//	@Failure		404			{object}	response.Envelope
//	@Failure		422			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/projects/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, notFoundMsg)
		return
	}

	in, err := parseInput(w, r)
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}

	p, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		response.Err(w, err, notFoundMsg)
		return
	}
	response.OKWithImage(w, "Project updated", imageURL(p), p)
}

// Delete godoc
//
//	@Summary	Delete project
//	@Tags		projects
//	@Produce	json
//	@Param		id	path		int	true	"Project ID"
//	@Success	200	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Router		/projects/{id} [delete]
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
	response.OK(w, "Project deleted", nil)
}

func imageURL(p *Project) string {
	if p.ImageURL == nil {
		return ""
	}
	return *p.ImageURL
}
