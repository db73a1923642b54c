// storefront-sandbox runs an in-memory storefront backend for local
// development: the product/category/enquiry/config endpoints of the real
// service, an optional JSON seed, and injectable latency and failures for
// exercising the SDK's retry and error paths.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/storekit/storefront_sdk_go/internal/devseed"
	"github.com/storekit/storefront_sdk_go/internal/logging"
	"github.com/storekit/storefront_sdk_go/pkg/categories"
	"github.com/storekit/storefront_sdk_go/pkg/enquiries"
	"github.com/storekit/storefront_sdk_go/pkg/products"
)

type failConfig struct {
	rate float64
	code int
}

type state struct {
	mu         sync.Mutex
	products   []products.Product
	categories []categories.Category
	enquiries  []enquiries.Enquiry
	nextCatID  int
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	seedPath := flag.String("seed", "", "path to JSON catalog seed")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	requireAuth := flag.Bool("require-auth", false, "reject requests without a bearer token")
	flag.Parse()

	_ = godotenv.Load()
	log := logging.New(logging.Options{Level: "info", Encoding: "console"})
	defer log.Sync()

	st := &state{nextCatID: 1}
	if *seedPath != "" {
		seed, err := devseed.LoadCatalogSeed(*seedPath)
		if err != nil {
			log.Fatal("load seed", zap.Error(err))
		}
		st.products = seed.Products
		st.categories = seed.Categories
		for _, c := range seed.Categories {
			if c.ID >= st.nextCatID {
				st.nextCatID = c.ID + 1
			}
		}
	}

	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		log.Fatal("parse fail flag", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", st.listProducts)
	mux.HandleFunc("GET /api/products/search", st.searchProducts)
	mux.HandleFunc("GET /api/products/category/{category}", st.productsByCategory)
	mux.HandleFunc("GET /api/products/{id}", st.getProduct)
	mux.HandleFunc("GET /api/categories", st.listCategories)
	mux.HandleFunc("POST /api/categories", st.createCategory)
	mux.HandleFunc("GET /api/categories/{id}", st.getCategory)
	mux.HandleFunc("PUT /api/categories/{id}", st.updateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", st.deleteCategory)
	mux.HandleFunc("GET /api/enquiries", st.listEnquiries)
	mux.HandleFunc("POST /api/enquiries", st.createEnquiry)
	mux.HandleFunc("GET /api/enquiries/{id}", st.getEnquiry)
	mux.HandleFunc("PUT /api/enquiries/{id}", st.updateEnquiry)
	mux.HandleFunc("GET /api/config/features", handleFeatures)
	mux.HandleFunc("GET /api/config/health", handleHealth)
	mux.HandleFunc("GET /api/config/info", handleInfo)

	handler := withMiddleware(log, *latency, failCfg, *requireAuth, mux)
	log.Info("storefront sandbox listening", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatal("serve", zap.Error(err))
	}
}

func withMiddleware(log *zap.Logger, latency time.Duration, fail failConfig, requireAuth bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		if latency > 0 {
			time.Sleep(latency)
		}
		if fail.rate > 0 && rand.Float64() < fail.rate {
			writeError(w, fail.code, "Injected failure", nil)
			return
		}
		if requireAuth && !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Full authentication is required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func parseFailConfig(s string) (failConfig, error) {
	cfg := failConfig{code: http.StatusInternalServerError}
	if strings.TrimSpace(s) == "" {
		return cfg, nil
	}
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return cfg, fmt.Errorf("bad fail segment %q", part)
		}
		switch kv[0] {
		case "rate":
			rate, err := strconv.ParseFloat(kv[1], 64)
			if err != nil {
				return cfg, fmt.Errorf("bad fail rate %q", kv[1])
			}
			cfg.rate = rate
		case "code":
			code, err := strconv.Atoi(kv[1])
			if err != nil {
				return cfg, fmt.Errorf("bad fail code %q", kv[1])
			}
			cfg.code = code
		default:
			return cfg, fmt.Errorf("unknown fail key %q", kv[0])
		}
	}
	return cfg, nil
}

func (s *state) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	matched := make([]products.Product, 0, len(s.products))
	for _, p := range s.products {
		if c := q.Get("category"); c != "" && !strings.EqualFold(p.Category, c) {
			continue
		}
		if search := q.Get("search"); search != "" && !containsFold(p.Name, search) {
			continue
		}
		if min := q.Get("minPrice"); min != "" {
			if v, err := strconv.ParseFloat(min, 64); err == nil && p.Price < v {
				continue
			}
		}
		if max := q.Get("maxPrice"); max != "" {
			if v, err := strconv.ParseFloat(max, 64); err == nil && p.Price > v {
				continue
			}
		}
		matched = append(matched, p)
	}
	s.mu.Unlock()

	total := len(matched)
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page > 0 && limit > 0 {
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	writeJSON(w, http.StatusOK, products.ListResult{Data: matched, Total: total})
}

func (s *state) searchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]products.Product, 0)
	for _, p := range s.products {
		if containsFold(p.Name, query) || containsFold(p.Description, query) {
			matched = append(matched, p)
		}
	}
	writeJSON(w, http.StatusOK, matched)
}

func (s *state) productsByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]products.Product, 0)
	for _, p := range s.products {
		if strings.EqualFold(p.Category, category) {
			matched = append(matched, p)
		}
	}
	writeJSON(w, http.StatusOK, matched)
}

func (s *state) getProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Product not found: "+id, nil)
}

func (s *state) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.categories
	if out == nil {
		out = []categories.Category{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *state) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Category ID must be a number", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Category not found: %d", id), nil)
}

func (s *state) createCategory(w http.ResponseWriter, r *http.Request) {
	var c categories.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed category payload", nil)
		return
	}
	if strings.TrimSpace(c.Name) == "" {
		writeError(w, http.StatusBadRequest, "Validation failed",
			map[string]string{"name": "Name is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextCatID
	s.nextCatID++
	c.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	s.categories = append(s.categories, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *state) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Category ID must be a number", nil)
		return
	}
	var in categories.Category
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed category payload", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			if in.Name != "" {
				s.categories[i].Name = in.Name
			}
			if in.Description != "" {
				s.categories[i].Description = in.Description
			}
			if in.Image != "" {
				s.categories[i].Image = in.Image
			}
			s.categories[i].UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			writeJSON(w, http.StatusOK, s.categories[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Category not found: %d", id), nil)
}

func (s *state) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Category ID must be a number", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Category not found: %d", id), nil)
}

func (s *state) listEnquiries(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.enquiries
	if out == nil {
		out = []enquiries.Enquiry{}
	}
	writeJSON(w, http.StatusOK, enquiries.ListResult{Data: out, Total: len(out)})
}

func (s *state) createEnquiry(w http.ResponseWriter, r *http.Request) {
	var e enquiries.Enquiry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed enquiry payload", nil)
		return
	}
	details := map[string]string{}
	if strings.TrimSpace(e.Name) == "" {
		details["name"] = "Name is required"
	}
	if strings.TrimSpace(e.Email) == "" {
		details["email"] = "Email is required"
	}
	if strings.TrimSpace(e.Message) == "" {
		details["message"] = "Message is required"
	}
	if len(details) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", details)
		return
	}
	e.ID = uuid.NewString()
	e.Status = enquiries.StatusPending
	e.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	s.mu.Lock()
	s.enquiries = append(s.enquiries, e)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, e)
}

func (s *state) getEnquiry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enquiries {
		if e.ID == id {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Enquiry not found: "+id, nil)
}

func (s *state) updateEnquiry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var in enquiries.Enquiry
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed enquiry payload", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.enquiries {
		if s.enquiries[i].ID == id {
			if in.Status != "" {
				s.enquiries[i].Status = in.Status
			}
			if in.Message != "" {
				s.enquiries[i].Message = in.Message
			}
			writeJSON(w, http.StatusOK, s.enquiries[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "Enquiry not found: "+id, nil)
}

func handleFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"authEnabled":    false,
		"paymentEnabled": true,
		"emailEnabled":   false,
		"smsEnabled":     false,
		"storageEnabled": true,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "UP",
		"service":   "storefront-sandbox",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "dev",
	})
}

func handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "storefront-sandbox",
		"version":     "dev",
		"description": "In-memory storefront backend for SDK development",
		"features":    map[string]bool{"payment": true},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the backend error envelope.
func writeError(w http.ResponseWriter, status int, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    status,
		"error":     http.StatusText(status),
		"message":   message,
		"details":   details,
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
