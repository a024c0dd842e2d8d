package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/splg/internal/chart"
	"github.com/hpungsan/splg/internal/config"
	"github.com/hpungsan/splg/internal/errors"
	"github.com/hpungsan/splg/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg     *config.Config
	session *ops.Session
}

// NewHandlers creates a new Handlers instance with an empty session.
func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{cfg: cfg, session: ops.NewSession()}
}

// Request types for each tool

// ValidateRequest represents the arguments for validate.
type ValidateRequest struct {
	Input string `json:"input"`
}

// GenerateRequest represents the arguments for generate.
type GenerateRequest struct {
	Input      string `json:"input"`
	LabelsOnly bool   `json:"labels_only,omitempty"`
}

// ChartRequest represents the arguments for chart.
type ChartRequest struct {
	Input  *string `json:"input,omitempty"`
	Format string  `json:"format,omitempty"`
}

// SaveChartRequest represents the arguments for save_chart.
type SaveChartRequest struct {
	Path string `json:"path,omitempty"`
}

// labelsOutput is the compact generate response.
type labelsOutput struct {
	ID     string   `json:"id"`
	Labels []string `json:"labels"`
	Sizes  []int    `json:"sizes"`
}

// Handler implementations

// HandleValidate handles the validate tool call.
func (h *Handlers) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ValidateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Validate(h.cfg, ops.ValidateInput{Input: input.Input})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGenerate handles the generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Generate(h.cfg, ops.GenerateInput{Input: input.Input})
	if err != nil {
		return errorResult(err), nil
	}
	h.session.Replace(result)

	if input.LabelsOnly {
		return successResult(labelsOutput{
			ID:     result.ID,
			Labels: result.Labels(),
			Sizes:  result.Sizes,
		})
	}
	return successResult(result)
}

// HandleClear handles the clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.session.Clear()
	return successResult(map[string]any{"cleared": true})
}

// HandleChart handles the chart tool call.
func (h *Handlers) HandleChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChartRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	format, err := chart.ParseFormat(input.Format)
	if err != nil {
		return errorResult(err), nil
	}
	if !format.IsImage() {
		return errorResult(errors.NewInvalidRequest(
			fmt.Sprintf("sets_chart returns an image; save %s files with sets_save_chart", format))), nil
	}

	// Chart the result generated here, not whatever the session holds
	// once Replace returns.
	var result *ops.Result
	if input.Input != nil {
		result, err = ops.Generate(h.cfg, ops.GenerateInput{Input: *input.Input})
		if err != nil {
			return errorResult(err), nil
		}
		h.session.Replace(result)
	} else {
		result = h.session.Current()
	}

	out, err := ops.Chart(h.cfg, ops.ChartInput{Result: result, Format: format})
	if err != nil {
		return errorResult(err), nil
	}

	text := fmt.Sprintf("Set sizes for %d sets", len(result.Sets))
	return mcp.NewToolResultImage(text, base64.StdEncoding.EncodeToString(out.Data), out.ContentType), nil
}

// HandleSaveChart handles the save_chart tool call.
func (h *Handlers) HandleSaveChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveChartRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SaveChart(h.cfg, ops.SaveChartInput{
		Result: h.session.Current(),
		Path:   input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var sErr *errors.SplgError
	if stderrors.As(err, &sErr) {
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": sErr.Message,
			"status":  sErr.Status,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
