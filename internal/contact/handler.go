package contact

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio/service/internal/request"
	"github.com/portfolio/service/internal/response"
)

// Handler holds the HTTP handler for the contact form.
type Handler struct {
	svc *Service
}

// NewHandler creates a new contact Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the contact endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Send)
}

// Send godoc
//
//	@Summary	Send a contact message
//	@Tags		contact
//	@Accept		json
//	@Produce	json
//	@Param		request	body		Submission	true	"Contact form"
//	@Success	200		{object}	response.Envelope
//	@Failure	422		{object}	response.Envelope
//	@Failure	500		{object}	response.Envelope
//	@Router		/contact [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	err := request.Decode(w, r, &sub, func(r *http.Request) {
		sub.Name = r.FormValue("name")
		sub.Email = r.FormValue("email")
		sub.Message = r.FormValue("message")
	})
	if err != nil {
		response.Err(w, err, "")
		return
	}

	if err := h.svc.Send(r.Context(), sub.Name, sub.Email, sub.Message); err != nil {
		response.Err(w, err, "")
		return
	}
	response.OK(w, "Message sent successfully", nil)
}
