package routes

import (
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Route describes one registered endpoint.
type Route struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Category    string `json:"category"`
	Auth        bool   `json:"auth"`
	Description string `json:"description"`
}

// Listing is the manifest as served by the introspection endpoint.
type Listing struct {
	Total      int            `json:"total"`
	Categories map[string]int `json:"categories"`
	Routes     []Route        `json:"routes"`
}

// Manifest collects routes while the router is built.
type Manifest struct {
	mu     sync.RWMutex
	routes []Route
}

func NewManifest() *Manifest { return &Manifest{} }

func (m *Manifest) add(r Route) {
	m.mu.Lock()
	m.routes = append(m.routes, r)
	m.mu.Unlock()
}

// Routes returns a copy sorted by path then method.
func (m *Manifest) Routes() []Route {
	m.mu.RLock()
	out := make([]Route, len(m.routes))
	copy(out, m.routes)
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (m *Manifest) Listing() Listing {
	rs := m.Routes()
	cats := make(map[string]int)
	for _, r := range rs {
		cats[r.Category]++
	}
	return Listing{Total: len(rs), Categories: cats, Routes: rs}
}

// Registrar wraps a gin router group and records every route it registers.
type Registrar struct {
	manifest *Manifest
	group    *gin.RouterGroup
}

func NewRegistrar(m *Manifest, g *gin.RouterGroup) *Registrar {
	return &Registrar{manifest: m, group: g}
}

// Group returns a registrar for a sub-group sharing the same manifest.
func (r *Registrar) Group(relativePath string, handlers ...gin.HandlerFunc) *Registrar {
	return &Registrar{manifest: r.manifest, group: r.group.Group(relativePath, handlers...)}
}

func (r *Registrar) Handle(method, relativePath, category string, auth bool, description string, handlers ...gin.HandlerFunc) {
	r.group.Handle(method, relativePath, handlers...)
	full := path.Join(r.group.BasePath(), relativePath)
	if strings.HasSuffix(relativePath, "/") && !strings.HasSuffix(full, "/") {
		full += "/"
	}
	r.manifest.add(Route{
		Method:      method,
		Path:        full,
		Category:    category,
		Auth:        auth,
		Description: description,
	})
}

func (r *Registrar) GET(p, category string, auth bool, description string, handlers ...gin.HandlerFunc) {
	r.Handle(http.MethodGet, p, category, auth, description, handlers...)
}

func (r *Registrar) POST(p, category string, auth bool, description string, handlers ...gin.HandlerFunc) {
	r.Handle(http.MethodPost, p, category, auth, description, handlers...)
}

func (r *Registrar) PUT(p, category string, auth bool, description string, handlers ...gin.HandlerFunc) {
	r.Handle(http.MethodPut, p, category, auth, description, handlers...)
}

func (r *Registrar) PATCH(p, category string, auth bool, description string, handlers ...gin.HandlerFunc) {
	r.Handle(http.MethodPatch, p, category, auth, description, handlers...)
}

func (r *Registrar) DELETE(p, category string, auth bool, description string, handlers ...gin.HandlerFunc) {
	r.Handle(http.MethodDelete, p, category, auth, description, handlers...)
}
