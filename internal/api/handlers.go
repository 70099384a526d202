package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetool/internal/game/preset"
	"github.com/cory-johannsen/dicetool/internal/game/rolllog"
	"github.com/cory-johannsen/dicetool/internal/tabletop"
)

// RollService is the roll API the HTTP handlers drive.
type RollService interface {
	Roll2D6(ctx context.Context, modifier int) (rolllog.Record, error)
	RollSingle(ctx context.Context, sides int) (rolllog.Record, error)
	RollCustom(ctx context.Context, text string) ([]rolllog.Record, error)
	RollStructured(ctx context.Context, count, sides, modifier string) (rolllog.Record, error)
	DeleteRecord(ctx context.Context, index int) (bool, error)
	ClearAll(ctx context.Context) error
	Log(ctx context.Context) []rolllog.Record
	Presets() *preset.Set
}

// LogResponse is the body of every log read and mutation.
type LogResponse struct {
	// Records holds the entries created by this request, oldest first.
	Records []rolllog.Record `json:"records,omitempty"`
	Log     []rolllog.Record `json:"log"`
	// Warning is set when the change could not be persisted.
	Warning string `json:"warning,omitempty"`
}

// ErrorResponse is the body of every 4xx/5xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TwoD6Request is the body of POST /v1/rolls/2d6. An empty body rolls with
// no modifier.
type TwoD6Request struct {
	Modifier int `json:"modifier"`
}

// SingleRequest is the body of POST /v1/rolls/single.
type SingleRequest struct {
	Sides int `json:"sides" binding:"required"`
}

// CustomRequest is the body of POST /v1/rolls/custom.
type CustomRequest struct {
	Expression string `json:"expression" binding:"required"`
}

// StructuredRequest is the body of POST /v1/rolls/structured. Each field
// accepts a JSON string or number, read as leniently as a form field.
type StructuredRequest struct {
	Count    FormValue `json:"count"`
	Sides    FormValue `json:"sides"`
	Modifier FormValue `json:"modifier"`
}

// FormValue is raw form text that may arrive as a JSON string or number.
type FormValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("form value must be a string or number: %w", err)
	}
	*v = FormValue(n.String())
	return nil
}

// RollHandler serves the /v1 roll and preset endpoints.
type RollHandler struct {
	svc    RollService
	logger *zap.Logger
}

// NewRollHandler creates a RollHandler.
//
// Precondition: svc and logger must be non-nil.
func NewRollHandler(svc RollService, logger *zap.Logger) *RollHandler {
	return &RollHandler{svc: svc, logger: logger}
}

// ListRolls handles GET /v1/rolls
func (h *RollHandler) ListRolls(c *gin.Context) {
	c.JSON(http.StatusOK, LogResponse{Log: h.svc.Log(c.Request.Context())})
}

// Roll2D6 handles POST /v1/rolls/2d6
func (h *RollHandler) Roll2D6(c *gin.Context) {
	var req TwoD6Request
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	rec, err := h.svc.Roll2D6(c.Request.Context(), req.Modifier)
	h.respond(c, []rolllog.Record{rec}, err)
}

// RollSingle handles POST /v1/rolls/single
func (h *RollHandler) RollSingle(c *gin.Context) {
	var req SingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rec, err := h.svc.RollSingle(c.Request.Context(), req.Sides)
	if errors.Is(err, tabletop.ErrInvalidSides) {
		badRequest(c, err)
		return
	}
	h.respond(c, []rolllog.Record{rec}, err)
}

// RollCustom handles POST /v1/rolls/custom
func (h *RollHandler) RollCustom(c *gin.Context) {
	var req CustomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	recs, err := h.svc.RollCustom(c.Request.Context(), req.Expression)
	if len(recs) == 0 && err == nil {
		badRequest(c, errors.New("expression has no segments"))
		return
	}
	h.respond(c, recs, err)
}

// RollStructured handles POST /v1/rolls/structured
func (h *RollHandler) RollStructured(c *gin.Context) {
	var req StructuredRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	rec, err := h.svc.RollStructured(c.Request.Context(), string(req.Count), string(req.Sides), string(req.Modifier))
	h.respond(c, []rolllog.Record{rec}, err)
}

// DeleteRoll handles DELETE /v1/rolls/:index
func (h *RollHandler) DeleteRoll(c *gin.Context) {
	ctx := c.Request.Context()
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, fmt.Errorf("index %q is not a number", c.Param("index")))
		return
	}
	removed, err := h.svc.DeleteRecord(ctx, idx)
	if err == nil && !removed {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("no log entry at index %d", idx)})
		return
	}
	h.respond(c, nil, err)
}

// ClearRolls handles DELETE /v1/rolls
func (h *RollHandler) ClearRolls(c *gin.Context) {
	h.respond(c, nil, h.svc.ClearAll(c.Request.Context()))
}

// GetPresets handles GET /v1/presets
func (h *RollHandler) GetPresets(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Presets())
}

// respond writes the log as the backend now holds it. A persistence error
// is reported as a warning on a 200; created still shows what was rolled.
func (h *RollHandler) respond(c *gin.Context, created []rolllog.Record, err error) {
	resp := LogResponse{Records: created, Log: h.svc.Log(c.Request.Context())}
	if err != nil {
		_ = c.Error(err)
		resp.Warning = "the roll log could not be saved"
	}
	c.JSON(http.StatusOK, resp)
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}
