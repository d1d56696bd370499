package http

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"networth/internal/core"
	"networth/internal/log"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(d decimal.Decimal) string {
			s := d.Abs().StringFixed(2)
			// insert thousands separators
			dot := strings.Index(s, ".")
			intPart := s[:dot]
			var b strings.Builder
			for i, r := range intPart {
				if i > 0 && (len(intPart)-i)%3 == 0 {
					b.WriteByte(',')
				}
				b.WriteRune(r)
			}
			out := "$" + b.String() + s[dot:]
			if d.IsNegative() {
				return "-" + out
			}
			return out
		},
		// amount renders a decimal for form inputs, no symbol or grouping
		"amount": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"monthName": func(m int) string {
			if m < 1 || m > 12 {
				return ""
			}
			return time.Month(m).String()
		},
	}
}

// pageData is the payload every page template receives. Data holds the
// page-specific struct.
type pageData struct {
	Title string
	User  core.User
	Path  string
	Data  any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := pageData{
		Title: title,
		User:  currentUser(r.Context()),
		Path:  r.URL.Path,
		Data:  data,
	}
	if err := s.templates.ExecuteTemplate(w, name, page); err != nil {
		s.logger.ErrorContext(r.Context(), "template execution failed",
			log.FieldError, err, "template", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.ErrorContext(r.Context(), msg,
		log.FieldError, err,
		log.FieldRequestID, requestID(r.Context()),
		log.FieldPath, r.URL.Path)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// pathID extracts the {id} route variable. The route pattern constrains it
// to digits, so a parse failure means a broken route, not bad input.
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
