// Package server exposes the forecast over HTTP as JSON.
package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/huangsam/stockcast/core"
	"github.com/huangsam/stockcast/internal/contract"
)

// DefaultAddr is the listen address of the serve command.
const DefaultAddr = ":3000"

// handler holds common dependencies for the HTTP handlers.
type handler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// NewApp builds the fiber application without starting it.
// This is exposed for unit testing.
func NewApp(baseCfg *contract.Config, mgr contract.StoreManager) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "stockcast",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	h := &handler{baseCfg: baseCfg, mgr: mgr}
	api := app.Group("/api")
	api.Get("/predict", h.handlePredict)
	api.Get("/predict/:productId", h.handlePredictProduct)
	return app
}

// Start serves the API on addr until ctx is cancelled.
func Start(ctx context.Context, baseCfg *contract.Config, mgr contract.StoreManager, addr string) error {
	app := NewApp(baseCfg, mgr)

	errCh := make(chan error, 1)
	go func() {
		contract.LogInfo("Serving forecast API", map[string]any{"addr": addr})
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return app.ShutdownWithContext(context.Background())
	}
}

// handlePredict returns the ranked forecast of every product.
func (h *handler) handlePredict(c *fiber.Ctx) error {
	cfg := h.baseCfg.Clone()
	limit := c.QueryInt("limit", 0)
	if err := contract.RevalidateForecast(cfg, c.Query("period"), c.Query("strategy"), limit); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}

	report, err := core.GetForecast(core.WithSuppressHeader(c.UserContext()), cfg, h.mgr)
	if err != nil {
		return fail(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    report,
	})
}

// handlePredictProduct returns the forecast of one product with its labelled buckets.
func (h *handler) handlePredictProduct(c *fiber.Ctx) error {
	cfg := h.baseCfg.Clone()
	if err := contract.RevalidateForecast(cfg, c.Query("period"), c.Query("strategy"), 0); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}

	detail, err := core.GetProduct(core.WithSuppressHeader(c.UserContext()), cfg, c.Params("productId"))
	if err != nil {
		return fail(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    detail,
	})
}

// statusFor maps a forecast error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, contract.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, contract.ErrDataSourceUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, status int, err error) error {
	if status >= fiber.StatusInternalServerError {
		contract.LogWarn(fmt.Sprintf("%s %s failed", c.Method(), c.Path()), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
