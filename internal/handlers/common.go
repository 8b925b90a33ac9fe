package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/emenu/httpx"
	"github.com/diewo77/emenu/internal/middleware"
	"github.com/diewo77/emenu/view"
)

// Explicit constant for 303 See Other (Post/Redirect/Get)
const statusSeeOther = 303

// renderTemplate uses the shared view.Render to ensure layout, partials, funcs, and caching.
// A pending flash cookie is consumed and handed to the template as .Flash.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Flash"]; !exists {
		if msg, ok := middleware.PopFlash(w, r); ok {
			data["Flash"] = msg
		}
	}
	if err := view.Render(w, r, name+".html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error")); werr != nil {
			_ = werr
		}
	}
}

// pathID parses the {id} path segment. Zero and garbage both read as absent.
func pathID(r *http.Request) (uint, bool) {
	id64, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// notFound answers missing and not-owned resources alike, so callers cannot
// probe which ids exist.
func notFound(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	if err := view.Render(w, r, "404.html", nil); err != nil {
		if _, werr := w.Write([]byte("not found")); werr != nil {
			_ = werr
		}
	}
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

// parseAnyForm accepts both urlencoded and multipart bodies; photo uploads
// arrive multipart, the JSON-less API tests post urlencoded.
func parseAnyForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(10 << 20)
	}
	return r.ParseForm()
}

// formFile returns the named upload if one was submitted, nil otherwise.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
