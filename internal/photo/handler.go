package photo

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumapix/service/internal/access"
	"github.com/lumapix/service/internal/artifact"
	"github.com/lumapix/service/internal/middleware"
	"github.com/lumapix/service/internal/response"
)

// Handler holds HTTP handlers for photo endpoints.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a new photo Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

func listParamsFromQuery(r *http.Request) ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return ListParams{
		Page:  page,
		Size:  size,
		Sort:  q.Get("sort"),
		Order: q.Get("order"),
	}.Normalize()
}

// List godoc
//
//	@Summary		List own photos
//	@Description	Returns one page of the authenticated user's photos.
//	@Tags			photos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query		int		false	"Page number"		default(1)
//	@Param			size	query		int		false	"Page size"			default(10)
//	@Param			sort	query		string	false	"Sort field"		Enums(date, title, size)
//	@Param			order	query		string	false	"Sort direction"	Enums(asc, desc)
//	@Success		200		{object}	response.Envelope{data=Page}
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/photos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r.Context())
	page, err := h.svc.ListOwn(r.Context(), callerID, listParamsFromQuery(r))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, page)
}

// Get godoc
//
//	@Summary		Get photo metadata
//	@Tags			photos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Photo ID"
//	@Success		200	{object}	response.Envelope{data=Photo}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/photos/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), middleware.CallerID(r.Context()))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "PHOTO_NOT_FOUND", "photo not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// Upload godoc
//
//	@Summary		Upload a photo
//	@Description	Accepts a multipart image file, stores the original and a derived thumbnail, and creates the photo record.
//	@Tags			photos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file		formData	file	true	"Image file (jpg, jpeg, png, gif, webp)"
//	@Param			title		formData	string	false	"Title"
//	@Param			description	formData	string	false	"Description"
//	@Param			location	formData	string	false	"Location"
//	@Param			date		formData	string	false	"Date taken (YYYY-MM-DD)"
//	@Param			isPublic	formData	bool	false	"Public visibility"
//	@Success		201			{object}	response.Envelope{data=Photo}
//	@Failure		400			{object}	response.Envelope
//	@Failure		401			{object}	response.Envelope
//	@Failure		413			{object}	response.Envelope
//	@Failure		415			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/photos/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Size ceiling is enforced here, at the request boundary; the pipeline
	// below assumes it already holds. Slack covers the multipart framing
	// and form fields.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+64<<10)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if isBodyTooLarge(err) {
			response.PayloadTooLarge(w, "file exceeds the maximum upload size")
			return
		}
		response.BadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "NO_FILE", "select an image file to upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			response.PayloadTooLarge(w, "file exceeds the maximum upload size")
			return
		}
		response.InternalError(w)
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		response.PayloadTooLarge(w, "file exceeds the maximum upload size")
		return
	}

	meta := UploadMeta{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		TakenOn:     r.FormValue("date"),
		IsPublic:    r.FormValue("isPublic") == "true",
	}

	p, err := h.svc.Upload(r.Context(), middleware.CallerID(r.Context()), data, header.Filename, meta)
	if err != nil {
		switch {
		case errors.Is(err, artifact.ErrInvalidFileType):
			response.UnsupportedMediaType(w, "only jpg, jpeg, png, gif and webp images are supported")
		case errors.Is(err, artifact.ErrThumbnailGeneration):
			response.Error(w, http.StatusInternalServerError, "THUMBNAIL_GENERATION_FAILED", "the image could not be processed")
		case errors.Is(err, artifact.ErrUploadFailed):
			response.Error(w, http.StatusInternalServerError, "UPLOAD_FAILED", "the image could not be stored")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, p)
}

// Image godoc
//
//	@Summary		Fetch an image artifact
//	@Description	Resolves access and redirects to the artifact URL. Private photos require ownership or the X-Access-Secret header; public photos are open to everyone.
//	@Tags			photos
//	@Param			id		path	string	true	"Photo ID"
//	@Param			size	query	string	false	"Artifact kind"	Enums(original, thumbnail)	default(original)
//	@Param			X-Access-Secret	header	string	false	"Shared viewer passphrase"
//	@Success		302
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		503	{object}	response.Envelope
//	@Router			/photos/{id}/image [get]
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	kind := access.Original
	if r.URL.Query().Get("size") == "thumbnail" {
		kind = access.Thumbnail
	}

	link, err := h.svc.ArtifactLink(
		r.Context(),
		chi.URLParam(r, "id"),
		kind,
		middleware.CallerID(r.Context()),
		r.Header.Get(middleware.SharedSecretHeader),
	)
	if err != nil {
		switch {
		case h.svc.IsNotFound(err):
			response.NotFound(w, "PHOTO_NOT_FOUND", "photo not found")
		case errors.Is(err, access.ErrDenied):
			// 403 when credentials were presented but insufficient, 401
			// when nothing was presented at all.
			if middleware.HasCredential(r) {
				response.Forbidden(w, "you do not have access to this photo")
			} else {
				response.Unauthorized(w, "authentication required")
			}
		case errors.Is(err, access.ErrStorageUnavailable):
			response.ServiceUnavailable(w, "image storage is temporarily unavailable")
		default:
			response.InternalError(w)
		}
		return
	}

	http.Redirect(w, r, link.URL, http.StatusFound)
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	TakenOn     *string `json:"date"`
	IsPublic    *bool   `json:"isPublic"`
}

// Update godoc
//
//	@Summary		Update photo metadata
//	@Tags			photos
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Photo ID"
//	@Param			request	body		updateRequest	true	"Fields to change"
//	@Success		200		{object}	response.Envelope{data=Photo}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Router			/photos/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), middleware.CallerID(r.Context()), UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		TakenOn:     req.TakenOn,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "PHOTO_NOT_FOUND", "photo not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete a photo
//	@Description	Removes both stored artifacts (best effort) and the photo record.
//	@Tags			photos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Photo ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/photos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), middleware.CallerID(r.Context()))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "PHOTO_NOT_FOUND", "photo not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]bool{"deleted": true})
}

// PublicList godoc
//
//	@Summary		List public photos
//	@Tags			public
//	@Produce		json
//	@Param			page	query		int	false	"Page number"	default(1)
//	@Param			size	query		int	false	"Page size"		default(12)
//	@Success		200		{object}	response.Envelope{data=Page}
//	@Router			/public/photos [get]
func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	params := listParamsFromQuery(r)
	page, err := h.svc.ListPublic(r.Context(), params)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, page)
}

// PublicGet godoc
//
//	@Summary		Get a public photo
//	@Tags			public
//	@Produce		json
//	@Param			id	path		string	true	"Photo ID"
//	@Success		200	{object}	response.Envelope{data=Photo}
//	@Failure		404	{object}	response.Envelope
//	@Router			/public/photos/{id} [get]
func (h *Handler) PublicGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPublic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "PHOTO_NOT_FOUND", "public photo not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// Stats godoc
//
//	@Summary		Dashboard statistics
//	@Tags			dashboard
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=OwnerStats}
//	@Failure		401	{object}	response.Envelope
//	@Router			/dashboard/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), middleware.CallerID(r.Context()))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

// isBodyTooLarge detects the MaxBytesReader limit being hit.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
