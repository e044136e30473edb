// Package httpapi exposes the session operations over HTTP. Every route
// maps 1:1 onto one core operation; no editing logic lives here.
//
// Structural errors (bad shapes, bad permutations, out-of-range indices)
// are explicit rejections; semantic leniencies (dangling references, kept
// values) come back as successful, best-effort results. The two are never
// conflated.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vk/rockiq/internal/ctxlog"
	"github.com/vk/rockiq/internal/docstore"
	"github.com/vk/rockiq/internal/editplan"
	"github.com/vk/rockiq/internal/graph"
	"github.com/vk/rockiq/internal/reconcile"
	"github.com/vk/rockiq/internal/record"
	"github.com/vk/rockiq/internal/session"
)

// Handlers serves the editing API for one document session.
type Handlers struct {
	session      *session.Session
	documentPath string
}

// NewHandlers returns handlers bound to a session. documentPath is reported
// to clients so the editing surface can show which file it is editing.
func NewHandlers(s *session.Session, documentPath string) *Handlers {
	return &Handlers{session: s, documentPath: documentPath}
}

// RegisterRoutes attaches all API routes to the router.
func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.GET("/health", h.Health)
	r.GET("/sequences", h.Sequences)
	r.GET("/graph", h.Graph)
	r.POST("/update", h.Update)
	r.POST("/insert", h.Insert)
	r.POST("/delete", h.Delete)
	r.POST("/reorder", h.Reorder)
}

// LoggerMiddleware attaches the application logger to each request context.
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxlog.WithLogger(c.Request.Context(), logger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Sequences lists the document's sequences.
func (h *Handlers) Sequences(c *gin.Context) {
	infos, err := h.session.Sequences(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"config_path": h.documentPath,
		"sequences":   infos,
	})
}

// Graph compiles and returns one sequence's graph. The sequence query
// parameter selects by id; when absent or stale the first sequence is used.
func (h *Handlers) Graph(c *gin.Context) {
	id := 0
	if raw := c.Query("sequence"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sequence must be an integer id"})
			return
		}
		id = parsed
	}
	g, err := h.session.Graph(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wireGraph(g))
}

type updateRequest struct {
	SequenceID int            `json:"sequence_id"`
	NodeIndex  *int           `json:"node_index"`
	Updates    map[string]any `json:"updates"`
}

// Update applies a coerced field update to one record.
func (h *Handlers) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NodeIndex == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "node_index is required"})
		return
	}
	if err := h.session.UpdateFields(c.Request.Context(), req.SequenceID, *req.NodeIndex, req.Updates); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "node_index": *req.NodeIndex})
}

type insertRequest struct {
	SequenceID int                `json:"sequence_id"`
	Inserts    []wireStagedInsert `json:"inserts"`
}

type wireStagedInsert struct {
	StagedID     string         `json:"staged_id"`
	DesiredIndex int            `json:"desired_index"`
	Fields       map[string]any `json:"fields"`
}

// Insert applies a batch of staged inserts and returns staged id → final index.
func (h *Handlers) Insert(c *gin.Context) {
	var req insertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	staged := make([]editplan.StagedInsert, 0, len(req.Inserts))
	for _, ins := range req.Inserts {
		staged = append(staged, editplan.StagedInsert{
			ID:           ins.StagedID,
			DesiredIndex: ins.DesiredIndex,
			Fields:       fieldsFromJSON(ins.Fields),
		})
	}
	idMap, err := h.session.InsertBatch(c.Request.Context(), req.SequenceID, staged)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "placements": idMap})
}

type deleteRequest struct {
	SequenceID int   `json:"sequence_id"`
	Indices    []int `json:"indices"`
}

// Delete removes a batch of records by index.
func (h *Handlers) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.session.DeleteBatch(c.Request.Context(), req.SequenceID, req.Indices); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type reorderRequest struct {
	SequenceID int   `json:"sequence_id"`
	NewOrder   []int `json:"new_order"`
}

// Reorder applies a full permutation of a sequence's records.
func (h *Handlers) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.session.Reorder(c.Request.Context(), req.SequenceID, req.NewOrder); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// fail translates core errors into status codes: structural violations are
// 400s, a missing sequence is 404, anything else is a 500.
func (h *Handlers) fail(c *gin.Context, err error) {
	var indexErr *reconcile.IndexError
	var permErr *editplan.PermutationError
	var shapeErr *docstore.ShapeError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, docstore.ErrSequenceNotFound):
		status = http.StatusNotFound
	case errors.As(err, &indexErr), errors.As(err, &permErr),
		errors.As(err, &shapeErr), errors.Is(err, graph.ErrInvalidSequence):
		status = http.StatusBadRequest
	}
	ctxlog.FromContext(c.Request.Context()).Warn("Request failed.",
		"path", c.Request.URL.Path, "status", status, "error", err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// fieldsFromJSON normalizes a decoded JSON object into an ordered field map.
// JSON decoding loses key order, so the order is made deterministic instead:
// the module identifier first, then the remaining keys sorted.
func fieldsFromJSON(m map[string]any) *record.Fields {
	fields := record.NewFields()
	if v, ok := m[record.KeyModule]; ok {
		fields.Set(record.KeyModule, v)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != record.KeyModule {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields.Set(k, m[k])
	}
	return fields
}
