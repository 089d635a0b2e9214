// Command sample runs a small inventory service built on
// github.com/graphyhiren/fast, touching every major framework feature.
//
// Run:
//
//	go run ./cmd/sample
//
// Generate the OpenAPI spec:
//
//	go run ./cmd/sample -spec                  — print to stdout
//	go run ./cmd/sample -spec -o openapi.json  — write to file
//
// Then explore:
//
//	GET    http://localhost:8080/openapi.json          — OpenAPI spec
//	GET    http://localhost:8080/v1/status              — liveness
//	GET    http://localhost:8080/v1/items               — list items
//	POST   http://localhost:8080/v1/items               — add item
//	GET    http://localhost:8080/v1/items/{sku}         — get item
//	PUT    http://localhost:8080/v1/items/{sku}         — update item
//	DELETE http://localhost:8080/v1/items/{sku}         — remove item
//	POST   http://localhost:8080/v1/items/{sku}/photo   — upload photo
//	GET    http://localhost:8080/v1/items/{sku}/photo   — download photo
//	GET    http://localhost:8080/v1/stock/watch         — SSE stock ticker
//	GET    http://localhost:8080/v1/raw                 — raw handler escape hatch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/graphyhiren/fast"
)

func main() {
	specFlag := flag.Bool("spec", false, "Print the OpenAPI spec to stdout and exit")
	outFlag := flag.String("o", "", "Output file for the spec (requires -spec)")
	flag.Parse()

	r := newRouter()

	if *specFlag {
		if err := writeSpec(r, *outFlag); err != nil {
			slog.Error("spec generation failed", "err", err)
			os.Exit(1)
		}
		return
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting server", "addr", ":8080", "spec", "http://localhost:8080/openapi.json")

	if err := r.ListenAndServe(ctx, ":8080"); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
	}

	slog.Info("server stopped")
}

func newRouter() *fast.Router {
	r := fast.New(
		fast.WithTitle("Inventory API"),
		fast.WithVersion("1.0.0"),
		fast.WithValidator(&bodyLengthValidator{maxBytes: 1 << 20}),
	)

	r.Use(fast.Recovery())
	r.Use(fast.RequestID())
	r.Use(fast.Logger(slog.Default()))
	r.Use(fast.CORS())

	r.ServeSpec("/openapi.json")
	r.ServeDocs("/docs")

	v1 := r.Group("/v1", fast.WithGroupTags("v1"))

	fast.Get(v1, "/status", handleStatus,
		fast.WithSummary("Liveness check"),
		fast.WithTags("ops"),
	)

	fast.Get(v1, "/items", handleListItems,
		fast.WithSummary("List items"),
		fast.WithDescription("Returns catalog items, optionally filtered by category."),
		fast.WithTags("items"),
	)
	fast.Post(v1, "/items", handleAddItem,
		fast.WithStatus(http.StatusCreated),
		fast.WithSummary("Add item"),
		fast.WithTags("items"),
	)
	fast.Get(v1, "/items/{sku}", handleGetItem,
		fast.WithSummary("Get item by SKU"),
		fast.WithTags("items"),
		fast.ResponseModel[Item](),
	)
	fast.Put(v1, "/items/{sku}", handleUpdateItem,
		fast.WithSummary("Update item"),
		fast.WithTags("items"),
	)
	fast.Delete(v1, "/items/{sku}", handleRemoveItem,
		fast.WithSummary("Remove item"),
		fast.WithTags("items"),
	)

	fast.Post(v1, "/items/{sku}/photo", handleUploadPhoto,
		fast.WithStatus(http.StatusNoContent),
		fast.WithSummary("Upload item photo"),
		fast.WithDescription("Accepts a multipart upload for the item's photo."),
		fast.WithTags("items", "media"),
	)
	fast.Get(v1, "/items/{sku}/photo", handleDownloadPhoto,
		fast.WithSummary("Download item photo"),
		fast.WithTags("items", "media"),
	)

	fast.Get(v1, "/stock/watch", handleStockWatch,
		fast.WithSummary("Stock ticker"),
		fast.WithDescription("Server-Sent Events stream of stock level changes."),
		fast.WithTags("streaming"),
	)

	fast.Raw(r, http.MethodGet, "/v1/raw", handleRaw, fast.OperationInfo{
		Summary:     "Raw endpoint",
		Description: "Demonstrates the raw http.HandlerFunc escape hatch.",
		Tags:        []string{"v1", "ops"},
		Status:      http.StatusOK,
	})

	return r
}

func writeSpec(r *fast.Router, outFile string) error {
	w := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile) //nolint:gosec // user-provided CLI flag
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Error("failed to close output file", "err", err)
			}
		}()
		w = f
	}
	return r.WriteSpec(w)
}

// ---------------------------------------------------------------------------
// In-memory catalog
// ---------------------------------------------------------------------------

var catalog = &itemStore{
	items: map[string]*Item{
		"WID-001": {SKU: "WID-001", Name: "Widget", Category: "parts", Price: 9.5, Stock: 120, AddedAt: time.Now()},
		"GAD-002": {SKU: "GAD-002", Name: "Gadget", Category: "tools", Price: 24, Stock: 8, AddedAt: time.Now()},
	},
	photos: map[string][]byte{},
}

type itemStore struct {
	mu     sync.RWMutex
	items  map[string]*Item
	photos map[string][]byte
}

func (s *itemStore) list(category string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, *it)
	}
	return out
}

func (s *itemStore) get(sku string) (*Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[sku]
	if !ok {
		return nil, false
	}
	cp := *it
	return &cp, true
}

func (s *itemStore) add(it Item) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[it.SKU]; exists {
		return nil, fmt.Errorf("sku %s already exists", it.SKU)
	}
	it.AddedAt = time.Now()
	s.items[it.SKU] = &it
	cp := it
	return &cp, nil
}

func (s *itemStore) update(sku string, name, category string, price float64, stock int) (*Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[sku]
	if !ok {
		return nil, false
	}
	if name != "" {
		it.Name = name
	}
	if category != "" {
		it.Category = category
	}
	if price > 0 {
		it.Price = price
	}
	if stock >= 0 {
		it.Stock = stock
	}
	cp := *it
	return &cp, true
}

func (s *itemStore) remove(sku string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[sku]; !ok {
		return false
	}
	delete(s.items, sku)
	delete(s.photos, sku)
	return true
}

func (s *itemStore) setPhoto(sku string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos[sku] = data
}

func (s *itemStore) photo(sku string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.photos[sku]
	return data, ok
}

// ---------------------------------------------------------------------------
// Domain and request/response types
// ---------------------------------------------------------------------------

// Item is a catalog entry. Price serializes under the unit_price key when
// the route applies the response model.
type Item struct {
	SKU      string    `json:"sku"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Price    float64   `json:"price" alias:"unit_price"`
	Stock    int       `json:"stock"`
	AddedAt  time.Time `json:"added_at"`
}

type StatusResp struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

type ListItemsReq struct {
	Category string
	Limit    int
	Offset   int
}

// Params declares the query parameters with constraints and defaults, as
// an alternative to struct tags.
func (ListItemsReq) Params() []fast.Param {
	return []fast.Param{
		fast.QueryParam("category", fast.WithParamDescription("Filter by category")),
		fast.QueryParam("limit", fast.WithDefault(50), fast.AtLeast(1), fast.AtMost(200),
			fast.WithParamDescription("Max results")),
		fast.QueryParam("offset", fast.WithDefault(0), fast.AtLeast(0),
			fast.WithParamDescription("Pagination offset")),
	}
}

type ListItemsResp struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

type AddItemReq struct {
	Body struct {
		SKU      string  `json:"sku" required:"true" doc:"Stock keeping unit"`
		Name     string  `json:"name" required:"true" doc:"Display name"`
		Category string  `json:"category" doc:"Catalog category" default:"misc"`
		Price    float64 `json:"price" minimum:"0" doc:"Unit price"`
		Stock    int     `json:"stock" minimum:"0" doc:"Initial stock level"`
	}
}

func (r *AddItemReq) Validate() error {
	if strings.TrimSpace(r.Body.SKU) == "" {
		return fast.Error(http.StatusBadRequest, "sku is required")
	}
	if strings.TrimSpace(r.Body.Name) == "" {
		return fast.Error(http.StatusBadRequest, "name is required")
	}
	return nil
}

type ItemBySKUReq struct {
	SKU string `path:"sku" doc:"Stock keeping unit"`
}

type UpdateItemReq struct {
	SKU  string `path:"sku" doc:"Stock keeping unit"`
	Body struct {
		Name     string  `json:"name" doc:"Display name"`
		Category string  `json:"category" doc:"Catalog category"`
		Price    float64 `json:"price" doc:"Unit price"`
		Stock    int     `json:"stock" doc:"Stock level"`
	}
}

type RemoveItemReq struct {
	SKU   string `path:"sku" doc:"Stock keeping unit"`
	Actor string
}

// Params injects the acting user resolved from the X-Actor header.
func (RemoveItemReq) Params() []fast.Param {
	return []fast.Param{
		fast.Depends("actor", actorFromHeader, fast.ExcludeFromSchema()),
	}
}

func actorFromHeader(_ context.Context, r *http.Request) (any, error) {
	actor := r.Header.Get("X-Actor")
	if actor == "" {
		actor = "anonymous"
	}
	return actor, nil
}

type UploadPhotoReq struct {
	SKU   string          `path:"sku" doc:"Stock keeping unit"`
	Photo fast.FileUpload `form:"photo" doc:"Item photo"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func handleStatus(_ context.Context, _ *fast.Void) (*StatusResp, error) {
	return &StatusResp{Status: "ok", Time: time.Now()}, nil
}

func handleListItems(_ context.Context, req *ListItemsReq) (*ListItemsResp, error) {
	items := catalog.list(req.Category)
	total := len(items)

	if req.Offset > len(items) {
		items = nil
	} else {
		items = items[req.Offset:]
	}
	if req.Limit > 0 && req.Limit < len(items) {
		items = items[:req.Limit]
	}

	return &ListItemsResp{Items: items, Total: total}, nil
}

func handleAddItem(_ context.Context, req *AddItemReq) (*Item, error) {
	category := req.Body.Category
	if category == "" {
		category = "misc"
	}
	item, err := catalog.add(Item{
		SKU:      req.Body.SKU,
		Name:     req.Body.Name,
		Category: category,
		Price:    req.Body.Price,
		Stock:    req.Body.Stock,
	})
	if err != nil {
		return nil, fast.Errorf(http.StatusConflict, "%v", err)
	}
	return item, nil
}

func handleGetItem(_ context.Context, req *ItemBySKUReq) (*Item, error) {
	item, ok := catalog.get(req.SKU)
	if !ok {
		return nil, fast.Errorf(http.StatusNotFound, "item %s not found", req.SKU)
	}
	return item, nil
}

func handleUpdateItem(_ context.Context, req *UpdateItemReq) (*Item, error) {
	item, ok := catalog.update(req.SKU, req.Body.Name, req.Body.Category, req.Body.Price, req.Body.Stock)
	if !ok {
		return nil, fast.Errorf(http.StatusNotFound, "item %s not found", req.SKU)
	}
	return item, nil
}

func handleRemoveItem(_ context.Context, req *RemoveItemReq) (*fast.Void, error) {
	if !catalog.remove(req.SKU) {
		return nil, fast.Errorf(http.StatusNotFound, "item %s not found", req.SKU)
	}
	slog.Info("item removed", "sku", req.SKU, "actor", req.Actor)
	return &fast.Void{}, nil
}

func handleUploadPhoto(_ context.Context, req *UploadPhotoReq) (*fast.Void, error) {
	if _, ok := catalog.get(req.SKU); !ok {
		return nil, fast.Errorf(http.StatusNotFound, "item %s not found", req.SKU)
	}
	if req.Photo.Header == nil {
		return nil, fast.Error(http.StatusBadRequest, "missing photo file")
	}

	rc, err := req.Photo.Open()
	if err != nil {
		return nil, fast.Errorf(http.StatusInternalServerError, "failed to read upload: %v", err)
	}
	defer func() {
		//nolint:errcheck,gosec // best-effort close
		rc.Close()
	}()

	buf := make([]byte, req.Photo.Size)
	n, err := rc.Read(buf)
	if err != nil && n == 0 {
		return nil, fast.Errorf(http.StatusInternalServerError, "failed to read upload: %v", err)
	}

	catalog.setPhoto(req.SKU, buf[:n])
	return &fast.Void{}, nil
}

func handleDownloadPhoto(_ context.Context, req *ItemBySKUReq) (*fast.Stream, error) {
	data, ok := catalog.photo(req.SKU)
	if !ok {
		return nil, fast.Errorf(http.StatusNotFound, "photo not found for item %s", req.SKU)
	}
	return &fast.Stream{
		ContentType: "image/png",
		Status:      http.StatusOK,
		Body:        strings.NewReader(string(data)),
	}, nil
}

func handleStockWatch(ctx context.Context, _ *fast.Void) (*fast.SSEStream, error) {
	ch := make(chan fast.SSEEvent)

	go func() {
		defer close(ch)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		seq := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				seq++
				for _, it := range catalog.list("") {
					ch <- fast.SSEEvent{
						ID:    fmt.Sprintf("%d", seq),
						Event: "stock",
						Data:  map[string]any{"sku": it.SKU, "stock": it.Stock, "seq": seq},
					}
				}
				if seq >= 30 {
					return
				}
			}
		}
	}()

	return &fast.SSEStream{Events: ch}, nil
}

func handleRaw(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // best-effort response write
	fmt.Fprintf(w, "raw handler: %s %s\n", r.Method, r.URL.Path)
}

// ---------------------------------------------------------------------------
// Global validator
// ---------------------------------------------------------------------------

// bodyLengthValidator rejects oversized bodies through the global
// Validator hook. Per-type Validate methods run first.
type bodyLengthValidator struct {
	maxBytes int64
}

func (v *bodyLengthValidator) Validate(req any) error {
	type withRaw interface{ GetRequest() *http.Request }
	if rr, ok := req.(withRaw); ok {
		if r := rr.GetRequest(); r != nil && r.ContentLength > v.maxBytes {
			return fast.Errorf(http.StatusRequestEntityTooLarge, "body too large: %d > %d", r.ContentLength, v.maxBytes)
		}
	}
	return nil
}
