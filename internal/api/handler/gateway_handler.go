package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agriconnect/platform/internal/api/metrics"
	"github.com/agriconnect/platform/internal/core/datastore"
	"github.com/agriconnect/platform/internal/core/ports"
)

// IdempotencyChecker is the duplicate-submission guard for mutations.
// A nil checker disables the feature.
type IdempotencyChecker interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// GatewayHandler serves the /api SQL-gateway contract over the datastore
// facade, regardless of which backend is configured behind it.
type GatewayHandler struct {
	store *datastore.Store
	idem  IdempotencyChecker
}

func NewGatewayHandler(store *datastore.Store, idem IdempotencyChecker) *GatewayHandler {
	return &GatewayHandler{store: store, idem: idem}
}

// Query handles POST /api/query.
//
// @Summary      Run a read-only statement
// @Tags         gateway
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      statementRequest  true  "Statement and positional parameters"
// @Success      200   {object}  rowsResponse
// @Failure      500   {object}  failureResponse
// @Router       /api/query [post]
func (h *GatewayHandler) Query(c echo.Context) error {
	req, err := bindStatement(c)
	if err != nil {
		return err
	}

	start := time.Now()
	rows, err := h.store.Query(c.Request().Context(), req.SQL, req.Params)
	metrics.StatementDuration.WithLabelValues("query").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StatementsTotal.WithLabelValues("query", "error").Inc()
		return statementFailure(c, err)
	}

	metrics.StatementsTotal.WithLabelValues("query", "ok").Inc()
	return c.JSON(http.StatusOK, rowsResponse{Success: true, Data: emptyRows(rows)})
}

// Run handles POST /api/run. An Idempotency-Key header makes retried
// submissions safe: a key already seen skips execution entirely.
//
// @Summary      Run a single mutating statement
// @Tags         gateway
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string            false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      statementRequest  true   "Statement and positional parameters"
// @Success      200              {object}  runResponse
// @Failure      500              {object}  failureResponse
// @Router       /api/run [post]
func (h *GatewayHandler) Run(c echo.Context) error {
	req, err := bindStatement(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	idemKey := c.Request().Header.Get("Idempotency-Key")
	if h.idem != nil && idemKey != "" {
		seen, err := h.idem.Seen(ctx, idemKey)
		if err != nil {
			return err
		}
		if seen {
			metrics.DedupTotal.WithLabelValues("hit").Inc()
			return c.JSON(http.StatusOK, runResponse{Success: true, Deduped: true})
		}
		metrics.DedupTotal.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	res, err := h.store.Run(ctx, req.SQL, req.Params)
	metrics.StatementDuration.WithLabelValues("run").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StatementsTotal.WithLabelValues("run", "error").Inc()
		return statementFailure(c, err)
	}

	metrics.StatementsTotal.WithLabelValues("run", "ok").Inc()
	metrics.Revision.Set(float64(h.store.Revision()))
	if h.idem != nil && idemKey != "" {
		if err := h.idem.Mark(ctx, idemKey); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, runResponse{
		Success:      true,
		LastInsertID: res.LastInsertID,
		Changes:      res.Changes,
	})
}

// Execute handles POST /api/execute, the ad-hoc console path: reads and
// writes are both accepted, and only rows come back.
func (h *GatewayHandler) Execute(c echo.Context) error {
	req, err := bindStatement(c)
	if err != nil {
		return err
	}

	start := time.Now()
	rows, err := h.store.Execute(c.Request().Context(), req.SQL, req.Params)
	metrics.StatementDuration.WithLabelValues("execute").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StatementsTotal.WithLabelValues("execute", "error").Inc()
		return statementFailure(c, err)
	}

	metrics.StatementsTotal.WithLabelValues("execute", "ok").Inc()
	return c.JSON(http.StatusOK, rowsResponse{Success: true, Data: emptyRows(rows)})
}

// Script handles POST /api/script. The first failing statement aborts the
// remainder; already-applied statements stay applied.
func (h *GatewayHandler) Script(c echo.Context) error {
	var req scriptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	err := h.store.RunScript(c.Request().Context(), req.Script)
	metrics.StatementDuration.WithLabelValues("script").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StatementsTotal.WithLabelValues("script", "error").Inc()
		return statementFailure(c, err)
	}

	metrics.StatementsTotal.WithLabelValues("script", "ok").Inc()
	metrics.Revision.Set(float64(h.store.Revision()))
	return c.JSON(http.StatusOK, statusResponse{Success: true, Message: "script applied"})
}

// ExportSnapshot handles GET /api/snapshot.
func (h *GatewayHandler) ExportSnapshot(c echo.Context) error {
	data, err := h.store.ExportSnapshot(c.Request().Context())
	if err != nil {
		if errors.Is(err, ports.ErrSnapshotUnsupported) {
			return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, snapshotResponse{
		Success:  true,
		Snapshot: base64.StdEncoding.EncodeToString(data),
	})
}

// ImportSnapshot handles POST /api/snapshot, replacing the database wholesale.
func (h *GatewayHandler) ImportSnapshot(c echo.Context) error {
	var req snapshotImportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	data, err := base64.StdEncoding.DecodeString(req.Snapshot)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "snapshot must be base64-encoded")
	}

	if err := h.store.ImportSnapshot(c.Request().Context(), data); err != nil {
		if errors.Is(err, ports.ErrSnapshotUnsupported) {
			return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
		}
		return err
	}
	metrics.Revision.Set(float64(h.store.Revision()))
	return c.JSON(http.StatusOK, statusResponse{Success: true, Message: "snapshot imported"})
}

// Reset handles POST /api/reset, reloading schema and seed data.
func (h *GatewayHandler) Reset(c echo.Context) error {
	if err := h.store.ResetToSeed(c.Request().Context()); err != nil {
		return err
	}
	metrics.Revision.Set(float64(h.store.Revision()))
	return c.JSON(http.StatusOK, statusResponse{Success: true, Message: "database reset to seed"})
}

// Test handles GET /api/test, the connectivity probe.
func (h *GatewayHandler) Test(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, failureResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, statusResponse{Success: true, Message: "database connected successfully"})
}

func bindStatement(c echo.Context) (*statementRequest, error) {
	var req statementRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return &req, nil
}

// statementFailure renders a rejected statement in the fixed contract shape,
// with the backend message untouched. Anything else (store not ready, a dead
// backend) goes to the central error handler.
func statementFailure(c echo.Context, err error) error {
	var se *datastore.StatementError
	if errors.As(err, &se) {
		return c.JSON(http.StatusInternalServerError, failureResponse{Error: se.Error()})
	}
	return err
}

// emptyRows keeps the data field a JSON array even for empty results.
func emptyRows(rows []ports.Row) []ports.Row {
	if rows == nil {
		return []ports.Row{}
	}
	return rows
}
