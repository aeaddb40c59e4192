package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"cardcms/internal/media"
	"cardcms/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	msgCardDeleted = "Card deleted successfully."

	errLoginFailed   = "login failed"
	errListCards     = "failed to fetch cards"
	errCreateCard    = "failed to add card"
	errUpdateCard    = "failed to update card"
	errDeleteCard    = "failed to delete card"
	errUploadImage   = "failed to upload image"
	errInvalidPage   = "invalid page: must be a positive integer"
	errCardNotFound  = "card not found"
	errSlugConflict  = "a card with the same slug already exists"
	errInvalidUpload = "invalid image upload"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// cardForm is the multipart field set shared by create and update. Swagger
// only; the handlers read the form directly.
type cardForm struct {
	Title    string `form:"title" example:"Hello, World"`
	Content  string `form:"content" example:"Body text"`
	Category string `form:"category" example:"engineering"`
	Author   string `form:"author" example:"SPAM"`
	ReadTime string `form:"readTime" example:"5 min"`
}

// @Summary      List cards
// @Description  Fixed page size; an empty array means there are no more pages.
// @Tags         cards
// @Produce      json
// @Param        page  query  int  false  "1-based page number"  default(1)
// @Success      200  {array}   models.Card
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/cards [get]
// @Security     BearerAuth
func (h *Handler) listCards(c *gin.Context) {
	page := 1
	if qs := c.Query("page"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPage})
			return
		}
		page = v
	}

	cards, err := h.services.List(c.Request.Context(), page)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListCards, "cards_list_failed", err, "page", page)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// @Summary      Create card
// @Tags         cards
// @Accept       multipart/form-data
// @Produce      json
// @Param        title     formData  string  true   "Title"
// @Param        content   formData  string  true   "Content"
// @Param        category  formData  string  true   "Category"
// @Param        author    formData  string  true   "Author"
// @Param        readTime  formData  string  true   "Read time, e.g. 5 min"
// @Param        image     formData  file    true   "Image file"
// @Success      200  {object}  models.Card
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/cards [post]
// @Security     BearerAuth
func (h *Handler) createCard(c *gin.Context) {
	image, err := formImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidUpload})
		return
	}

	input := service.CreateCardInput{
		Title:    c.PostForm("title"),
		Content:  c.PostForm("content"),
		Category: c.PostForm("category"),
		Author:   c.PostForm("author"),
		ReadTime: c.PostForm("readTime"),
		Image:    image,
	}

	card, err := h.services.Create(c.Request.Context(), input)
	if err != nil {
		h.writeCardError(c, err, errCreateCard, "card_create_failed")
		return
	}
	c.JSON(http.StatusOK, card)
}

// @Summary      Update card
// @Description  Partial update: only supplied fields change; a new image file replaces the stored URL; a supplied title recomputes the slug.
// @Tags         cards
// @Accept       multipart/form-data
// @Produce      json
// @Param        id        path      string  true   "Card id"
// @Param        title     formData  string  false  "Title"
// @Param        content   formData  string  false  "Content"
// @Param        category  formData  string  false  "Category"
// @Param        author    formData  string  false  "Author"
// @Param        readTime  formData  string  false  "Read time"
// @Param        image     formData  file    false  "Replacement image"
// @Success      200  {object}  models.Card
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/cards/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateCard(c *gin.Context) {
	image, err := formImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidUpload})
		return
	}

	input := service.UpdateCardInput{
		Title:    c.PostForm("title"),
		Content:  c.PostForm("content"),
		Category: c.PostForm("category"),
		Author:   c.PostForm("author"),
		ReadTime: c.PostForm("readTime"),
		Image:    image,
	}

	card, err := h.services.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.writeCardError(c, err, errUpdateCard, "card_update_failed")
		return
	}
	c.JSON(http.StatusOK, card)
}

// @Summary      Delete card
// @Tags         cards
// @Produce      json
// @Param        id  path  string  true  "Card id"
// @Success      200  {object}  map[string]string  "message"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/cards/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteCard(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Cards.Delete(c.Request.Context(), id); err != nil {
		h.writeCardError(c, err, errDeleteCard, "card_delete_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgCardDeleted})
}

// writeCardError maps service errors onto the HTTP taxonomy: validation 400,
// not-found 404, slug conflict 409, upload/store failures 500.
func (h *Handler) writeCardError(c *gin.Context, err error, fallbackMsg, logKey string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errCardNotFound})
	case errors.Is(err, service.ErrSlugConflict):
		c.JSON(http.StatusConflict, gin.H{"error": errSlugConflict})
	case errors.Is(err, media.ErrUpload):
		h.logAndJSONError(c, http.StatusInternalServerError, errUploadImage, logKey, err)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, fallbackMsg, logKey, err)
	}
}

// formImage reads the optional "image" part of a multipart form. A missing
// file is not an error here; required-ness is the service's call.
func formImage(c *gin.Context) (*service.ImageFile, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.ImageFile{Name: fh.Filename, Data: data}, nil
}
