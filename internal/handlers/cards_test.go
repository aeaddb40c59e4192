package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cardcms/internal/media"
	"cardcms/internal/models"
	"cardcms/internal/service"
)

func sampleCard() models.Card {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.Card{
		ID:        "c1",
		Title:     "Hello, World!  Foo",
		Slug:      "hello-world-foo",
		Content:   "body",
		Image:     "http://localhost:9000/cardcms/cards/c1.png",
		Category:  "engineering",
		Author:    "SPAM",
		ReadTime:  "5 min",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// multipartBody builds a multipart form with the given fields and an
// optional image file part.
func multipartBody(t *testing.T, fields map[string]string, imageName string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %q: %v", k, err)
		}
	}
	if imageName != "" {
		fw, err := w.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(image); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func doAuthed(r http.Handler, method, path, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header = authHeader("tok")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	r.ServeHTTP(w, req)
	return w
}

// --- list ---

func TestListCards_DefaultsToFirstPage(t *testing.T) {
	cards := &mockCards{listResp: []models.Card{sampleCard()}}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	w := doAuthed(r, http.MethodGet, "/api/cards", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if cards.lastPage != 1 {
		t.Fatalf("expected page 1, got %d", cards.lastPage)
	}

	var got []models.Card
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "hello-world-foo" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestListCards_PassesRequestedPage(t *testing.T) {
	cards := &mockCards{listResp: []models.Card{}}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	w := doAuthed(r, http.MethodGet, "/api/cards?page=3", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if cards.lastPage != 3 {
		t.Fatalf("expected page 3, got %d", cards.lastPage)
	}
	// an empty page is a terminal condition, not an error
	if body := w.Body.String(); body != "[]" {
		t.Fatalf("expected empty array body, got %s", body)
	}
}

func TestListCards_InvalidPage(t *testing.T) {
	cards := &mockCards{}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	for _, page := range []string{"abc", "0", "-1"} {
		w := doAuthed(r, http.MethodGet, "/api/cards?page="+page, "", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("page=%q: expected 400, got %d", page, w.Code)
		}
	}
	if cards.listCalls != 0 {
		t.Fatalf("service called despite invalid page")
	}
}

func TestListCards_StoreError(t *testing.T) {
	cards := &mockCards{listErr: errors.New("disk on fire")}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	w := doAuthed(r, http.MethodGet, "/api/cards", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

// --- create ---

func allFields() map[string]string {
	return map[string]string{
		"title":    "Hello, World!  Foo",
		"content":  "body",
		"category": "engineering",
		"author":   "SPAM",
		"readTime": "5 min",
	}
}

func TestCreateCard_Success(t *testing.T) {
	cards := &mockCards{createResp: sampleCard()}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	body, ct := multipartBody(t, allFields(), "cover.png", []byte{0x89, 0x50})
	w := doAuthed(r, http.MethodPost, "/api/cards", ct, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	in := cards.lastCreate
	if in.Title != "Hello, World!  Foo" || in.Content != "body" || in.Category != "engineering" ||
		in.Author != "SPAM" || in.ReadTime != "5 min" {
		t.Fatalf("fields not forwarded: %+v", in)
	}
	if in.Image == nil || in.Image.Name != "cover.png" || !bytes.Equal(in.Image.Data, []byte{0x89, 0x50}) {
		t.Fatalf("image not forwarded: %+v", in.Image)
	}

	var got models.Card
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "c1" {
		t.Fatalf("unexpected card in response: %+v", got)
	}
}

func TestCreateCard_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"missing field", errors.Join(service.ErrValidation, errors.New("title is required")), http.StatusBadRequest},
		{"duplicate slug", service.ErrSlugConflict, http.StatusConflict},
		{"upload failure", media.ErrUpload, http.StatusInternalServerError},
		{"store failure", errors.New("insert failed"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cards := &mockCards{createErr: tc.err}
			r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

			body, ct := multipartBody(t, allFields(), "cover.png", []byte{1})
			w := doAuthed(r, http.MethodPost, "/api/cards", ct, body)
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d (body=%s)", tc.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestCreateCard_NoImagePartReachesServiceAsNil(t *testing.T) {
	// The service owns the required-image rule; the handler only forwards.
	cards := &mockCards{createErr: errors.Join(service.ErrValidation, errors.New("image is required"))}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	body, ct := multipartBody(t, allFields(), "", nil)
	w := doAuthed(r, http.MethodPost, "/api/cards", ct, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if cards.lastCreate.Image != nil {
		t.Fatalf("expected nil image, got %+v", cards.lastCreate.Image)
	}
}

// --- update ---

func TestUpdateCard_PartialFieldsForwarded(t *testing.T) {
	cards := &mockCards{updateResp: sampleCard()}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	body, ct := multipartBody(t, map[string]string{"content": "new body"}, "", nil)
	w := doAuthed(r, http.MethodPut, "/api/cards/c1", ct, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	if cards.lastUpdateID != "c1" {
		t.Fatalf("expected id c1, got %q", cards.lastUpdateID)
	}
	in := cards.lastUpdate
	if in.Content != "new body" {
		t.Fatalf("content not forwarded: %+v", in)
	}
	if in.Title != "" || in.Category != "" || in.Author != "" || in.ReadTime != "" || in.Image != nil {
		t.Fatalf("unsupplied fields must stay empty: %+v", in)
	}
}

func TestUpdateCard_WithReplacementImage(t *testing.T) {
	cards := &mockCards{updateResp: sampleCard()}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	body, ct := multipartBody(t, map[string]string{}, "new.jpg", []byte{9, 9})
	w := doAuthed(r, http.MethodPut, "/api/cards/c1", ct, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if cards.lastUpdate.Image == nil || cards.lastUpdate.Image.Name != "new.jpg" {
		t.Fatalf("image not forwarded: %+v", cards.lastUpdate.Image)
	}
}

func TestUpdateCard_NotFound(t *testing.T) {
	cards := &mockCards{updateErr: service.ErrCardNotFound}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	body, ct := multipartBody(t, map[string]string{"content": "x"}, "", nil)
	w := doAuthed(r, http.MethodPut, "/api/cards/nope", ct, body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

// --- delete ---

func TestDeleteCard_Success(t *testing.T) {
	cards := &mockCards{}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	w := doAuthed(r, http.MethodDelete, "/api/cards/c1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if cards.lastDeleteID != "c1" {
		t.Fatalf("expected delete id c1, got %q", cards.lastDeleteID)
	}

	var out struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Message != msgCardDeleted {
		t.Fatalf("message: got %q", out.Message)
	}
}

func TestDeleteCard_NotFound(t *testing.T) {
	cards := &mockCards{deleteErr: service.ErrCardNotFound}
	r := newTestRouter(&service.Service{Authorization: okAuth(), Cards: cards})

	w := doAuthed(r, http.MethodDelete, "/api/cards/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
