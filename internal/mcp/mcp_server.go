// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huangsam/stockcast/internal/contract"
)

// NewMCPServer initializes and configures the Stockcast MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Stockcast Forecast Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_forecast ---
	s.AddTool(mcp.NewTool("get_forecast",
		mcp.WithDescription("Forecast demand for every product and rank them by stock-out risk."),
		mcp.WithString("period", mcp.Description("Forecast period. Defaults to 'weekly'."), mcp.Enum("weekly", "monthly")),
		mcp.WithString("strategy", mcp.Description("Projection strategy. Defaults to 'blended'."), mcp.Enum("blended", "regression")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetForecast)

	// --- 2. Tool: get_product_forecast ---
	s.AddTool(mcp.NewTool("get_product_forecast",
		mcp.WithDescription("Forecast one product and return its bucketed sales history."),
		mcp.WithString("product_id", mcp.Description("The inventory ID of the product."), mcp.Required()),
		mcp.WithString("period", mcp.Description("Forecast period."), mcp.Enum("weekly", "monthly")),
		mcp.WithString("strategy", mcp.Description("Projection strategy."), mcp.Enum("blended", "regression")),
	), h.handleGetProductForecast)

	return s
}

// StartMCPServer starts the Stockcast MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
