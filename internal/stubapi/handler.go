// Package stubapi реализует локальную заглушку self-dispatch API обоих
// вендоров: вход с выдачей токена, список заявок, проверку гарантии и
// приём multipart-заявок. Используется для разработки и тестов вместо
// реальных вендорских окружений.
package stubapi

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/selfdispatch-system/internal/model"
)

type contextKey string

const usernameKey contextKey = "username"

const maxClaimFormSize = 64 << 20

var imageFieldRe = regexp.MustCompile(`^image(\d+)$`)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type claimsResponse struct {
	Claims []claimJSON `json:"claims"`
}

// Handler хранит состояние заглушки: выданные токены и заявки в памяти.
type Handler struct {
	logger *zap.Logger

	mu         sync.Mutex
	tokens     map[string]string
	claims     map[model.VendorType][]claimJSON
	warranties map[model.VendorType]map[string]warrantyJSON
}

// NewHandler создаёт обработчик заглушки с образцами данных обоих вендоров.
func NewHandler(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:     logger,
		tokens:     make(map[string]string),
		claims:     sampleClaims(),
		warranties: sampleWarranties(),
	}
}

type loginRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (h *Handler) login(vendor model.VendorType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			renderError(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed login payload")
			return
		}

		if vendor == model.VendorDell && (req.ClientID == "" || req.ClientSecret == "") {
			renderError(w, r, http.StatusBadRequest, "MISSING_CLIENT_CREDENTIALS", "client_id and client_secret are required")
			return
		}

		if strings.TrimSpace(req.Username) == "" || req.Password == "" {
			renderError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "username and password are required")
			return
		}

		token := uuid.NewString()

		h.mu.Lock()
		h.tokens[token] = req.Username
		h.mu.Unlock()

		h.logger.Info("stub login", zap.String("vendor", string(vendor)), zap.String("username", req.Username))
		render.JSON(w, r, tokenResponse{Token: token})
	}
}

// authMiddleware проверяет заголовок Authorization и кладёт имя техника
// в контекст запроса.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			renderError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}

		h.mu.Lock()
		username, known := h.tokens[token]
		h.mu.Unlock()

		if !known {
			renderError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "unknown token")
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) listClaims(vendor model.VendorType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("user")

		h.mu.Lock()
		all := h.claims[vendor]
		claims := make([]claimJSON, 0, len(all))
		for _, c := range all {
			if user != "" && c.CreatedBy != user {
				continue
			}
			claims = append(claims, c)
		}
		h.mu.Unlock()

		render.JSON(w, r, claimsResponse{Claims: claims})
	}
}

func (h *Handler) checkWarranty(vendor model.VendorType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := chi.URLParam(r, "serviceTag")

		h.mu.Lock()
		rec, ok := h.warranties[vendor][tag]
		h.mu.Unlock()

		if !ok {
			renderError(w, r, http.StatusNotFound, "NOT_FOUND", "no warranty record for "+tag)
			return
		}

		render.JSON(w, r, rec)
	}
}

func (h *Handler) createClaim(vendor model.VendorType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxClaimFormSize); err != nil {
			renderError(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed multipart payload")
			return
		}

		serviceTag := strings.TrimSpace(r.FormValue("service_tag"))
		description := strings.TrimSpace(r.FormValue("description"))
		if serviceTag == "" || description == "" {
			renderError(w, r, http.StatusUnprocessableEntity, "MISSING_FIELDS", "service_tag and description are required")
			return
		}

		images := imageFileNames(r)
		if vendor == model.VendorDell && (len(images) < 1 || len(images) > 8) {
			renderError(w, r, http.StatusUnprocessableEntity, "ATTACHMENT_COUNT",
				fmt.Sprintf("Dell requires 1 to 8 attachments, got %d", len(images)))
			return
		}

		username, _ := r.Context().Value(usernameKey).(string)

		claim := claimJSON{
			ClaimID:      newClaimID(vendor),
			ServiceTag:   serviceTag,
			Description:  description,
			CreatedDate:  time.Now().UTC().Format(time.RFC3339),
			Status:       "Open",
			CreatedBy:    username,
			PartNumber:   r.FormValue("part_number"),
			SerialNumber: r.FormValue("serial_number"),
			ImagePaths:   images,
		}

		h.mu.Lock()
		h.claims[vendor] = append(h.claims[vendor], claim)
		h.mu.Unlock()

		h.logger.Info("stub claim created",
			zap.String("vendor", string(vendor)),
			zap.String("claimID", claim.ClaimID),
			zap.Int("images", len(images)))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, claim)
	}
}

// imageFileNames собирает имена файлов из полей image1, image2, ...
// в порядке их номеров.
func imageFileNames(r *http.Request) []string {
	if r.MultipartForm == nil {
		return nil
	}

	type indexed struct {
		idx  int
		name string
	}

	var found []indexed
	for field, files := range r.MultipartForm.File {
		m := imageFieldRe.FindStringSubmatch(field)
		if m == nil || len(files) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, indexed{idx: idx, name: files[0].Filename})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].idx < found[j].idx })

	names := make([]string, 0, len(found))
	for _, f := range found {
		names = append(names, f.name)
	}
	return names
}

func newClaimID(vendor model.VendorType) string {
	short := strings.ToUpper(uuid.NewString()[:8])
	if vendor == model.VendorLenovo {
		return "LNV-" + short
	}
	return "SR" + short
}

func renderError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Code: code, Message: message})
}
