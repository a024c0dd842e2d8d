package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/splg/internal/config"
	"github.com/hpungsan/splg/internal/errors"
)

// testSetup creates a config for testing.
func testSetup(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Palette = config.PaletteFixed
	cfg.AllowedPaths = []string{t.TempDir()}
	return cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleValidate(t *testing.T) {
	h := NewHandlers(testSetup(t))
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "valid list",
			args:      map[string]any{"input": "English, French, German"},
			wantError: false,
		},
		{
			name:      "missing input",
			args:      map[string]any{},
			wantError: true,
			errorCode: "MISSING_INPUT",
		},
		{
			name:      "numbers only",
			args:      map[string]any{"input": "12, 34"},
			wantError: true,
			errorCode: "NUMERIC_ONLY",
		},
		{
			name:      "no commas",
			args:      map[string]any{"input": "English French"},
			wantError: true,
			errorCode: "MISSING_COMMAS",
		},
		{
			name:      "double space",
			args:      map[string]any{"input": "English,  French"},
			wantError: true,
			errorCode: "DOUBLE_SPACE",
		},
		{
			name:      "double comma",
			args:      map[string]any{"input": "English,, French"},
			wantError: true,
			errorCode: "DOUBLE_COMMA",
		},
		{
			name:      "multi-word entry",
			args:      map[string]any{"input": "English, New Zealand"},
			wantError: true,
			errorCode: "MULTI_WORD_ENTRY",
		},
		{
			name:      "misspelled argument",
			args:      map[string]any{"inptu": "English"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "wrong argument type",
			args:      map[string]any{"input": 42},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleValidate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				assertErrorCode(t, result, tt.errorCode)
				return
			}

			output := parseOutput(t, result)
			if output["set_count"] != float64(7) {
				t.Errorf("set_count = %v, want 7", output["set_count"])
			}
			items, _ := output["items"].([]any)
			if len(items) != 3 {
				t.Errorf("items = %v, want 3 entries", output["items"])
			}
		})
	}
}

func TestHandleValidate_TooManyItems(t *testing.T) {
	cfg := testSetup(t)
	cfg.MaxItems = 2
	h := NewHandlers(cfg)

	result, err := h.HandleValidate(context.Background(), makeRequest(map[string]any{"input": "a, b, c"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorCode(t, result, "TOO_MANY_ITEMS")
}

func TestHandleGenerate(t *testing.T) {
	h := NewHandlers(testSetup(t))
	ctx := context.Background()

	result, err := h.HandleGenerate(ctx, makeRequest(map[string]any{"input": "English, French, German"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)

	sets, ok := output["sets"].([]any)
	if !ok || len(sets) != 7 {
		t.Fatalf("sets = %v, want 7 entries", output["sets"])
	}
	first := sets[0].(map[string]any)
	if first["label"] != "English" || first["index"] != float64(1) || first["color"] != "#1f77b4" {
		t.Errorf("first set = %v", first)
	}
	last := sets[6].(map[string]any)
	if last["label"] != "English, French, German" || last["size"] != float64(3) {
		t.Errorf("last set = %v", last)
	}

	if cur := h.session.Current(); cur == nil || cur.ID != output["id"] {
		t.Error("generate should replace the current result")
	}
}

func TestHandleGenerate_LabelsOnly(t *testing.T) {
	h := NewHandlers(testSetup(t))

	result, err := h.HandleGenerate(context.Background(), makeRequest(map[string]any{
		"input":       "English, French",
		"labels_only": true,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)

	if _, ok := output["sets"]; ok {
		t.Error("labels_only output should not include sets")
	}
	labels := output["labels"].([]any)
	want := []string{"English", "French", "English, French"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i, l := range want {
		if labels[i] != l {
			t.Errorf("labels[%d] = %v, want %q", i, labels[i], l)
		}
	}
}

func TestHandleGenerate_ErrorKeepsCurrent(t *testing.T) {
	h := NewHandlers(testSetup(t))
	ctx := context.Background()

	if _, err := h.HandleGenerate(ctx, makeRequest(map[string]any{"input": "English"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := h.session.Current()

	result, err := h.HandleGenerate(ctx, makeRequest(map[string]any{"input": ",,,"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorCode(t, result, "DOUBLE_COMMA")

	if h.session.Current() != before {
		t.Error("failed generate must not replace the current result")
	}
}

func TestHandleClear(t *testing.T) {
	h := NewHandlers(testSetup(t))
	ctx := context.Background()

	if _, err := h.HandleGenerate(ctx, makeRequest(map[string]any{"input": "English"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := h.HandleClear(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)
	if output["cleared"] != true {
		t.Errorf("cleared = %v, want true", output["cleared"])
	}
	if h.session.Current() != nil {
		t.Error("expected empty session after clear")
	}
}

func TestHandleChart(t *testing.T) {
	h := NewHandlers(testSetup(t))
	ctx := context.Background()

	t.Run("no data", func(t *testing.T) {
		result, err := h.HandleChart(ctx, makeRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertErrorCode(t, result, "NO_DATA")
	})

	t.Run("generate and chart", func(t *testing.T) {
		result, err := h.HandleChart(ctx, makeRequest(map[string]any{"input": "English, French, German"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		img := imageContent(t, result)
		if img.MIMEType != "image/png" {
			t.Errorf("MIMEType = %q, want image/png", img.MIMEType)
		}
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			t.Fatalf("base64: %v", err)
		}
		if _, err := png.Decode(bytes.NewReader(data)); err != nil {
			t.Fatalf("png.Decode: %v", err)
		}
	})

	t.Run("current result as jpeg", func(t *testing.T) {
		result, err := h.HandleChart(ctx, makeRequest(map[string]any{"format": "jpeg"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		img := imageContent(t, result)
		if img.MIMEType != "image/jpeg" {
			t.Errorf("MIMEType = %q, want image/jpeg", img.MIMEType)
		}
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			t.Fatalf("base64: %v", err)
		}
		if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
			t.Fatalf("jpeg.Decode: %v", err)
		}
	})

	t.Run("pdf is not an image", func(t *testing.T) {
		result, err := h.HandleChart(ctx, makeRequest(map[string]any{"format": "pdf"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertErrorCode(t, result, "INVALID_REQUEST")
	})

	t.Run("bad format", func(t *testing.T) {
		result, err := h.HandleChart(ctx, makeRequest(map[string]any{"format": "gif"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertErrorCode(t, result, "INVALID_REQUEST")
	})

	t.Run("invalid input", func(t *testing.T) {
		result, err := h.HandleChart(ctx, makeRequest(map[string]any{"input": "123"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertErrorCode(t, result, "NUMERIC_ONLY")
	})
}

func TestHandleSaveChart(t *testing.T) {
	cfg := testSetup(t)
	h := NewHandlers(cfg)
	ctx := context.Background()

	path := filepath.Join(cfg.AllowedPaths[0], "sets.png")

	result, err := h.HandleSaveChart(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorCode(t, result, "NO_DATA")

	if _, err := h.HandleGenerate(ctx, makeRequest(map[string]any{"input": "English, French"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err = h.HandleSaveChart(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)
	if output["path"] != path || output["format"] != "png" {
		t.Errorf("output = %v", output)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved chart: %v", err)
	}

	pdfPath := filepath.Join(cfg.AllowedPaths[0], "sets.pdf")
	result, err = h.HandleSaveChart(ctx, makeRequest(map[string]any{"path": pdfPath}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output = parseOutput(t, result)
	if output["format"] != "pdf" {
		t.Errorf("format = %v, want pdf", output["format"])
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		t.Fatalf("saved pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("saved file does not start with a PDF header")
	}

	result, err = h.HandleSaveChart(ctx, makeRequest(map[string]any{"path": filepath.Join(t.TempDir(), "x.png")}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")
}

// TestHandleChart_ConcurrentClear checks that a chart call with input
// charts its own result even while other calls clear or replace the
// current one.
func TestHandleChart_ConcurrentClear(t *testing.T) {
	h := NewHandlers(testSetup(t))
	ctx := context.Background()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_, _ = h.HandleClear(ctx, makeRequest(nil))
			_, _ = h.HandleGenerate(ctx, makeRequest(map[string]any{"input": "Solo"}))
		}
	}()

	for i := 0; i < 20; i++ {
		result, err := h.HandleChart(ctx, makeRequest(map[string]any{"input": "English, French, German"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("call %d: unexpected error result: %s", i, extractErrorMessage(result))
		}
		text, ok := result.Content[0].(mcp.TextContent)
		if !ok {
			t.Fatalf("call %d: first content is not text", i)
		}
		if text.Text != "Set sizes for 7 sets" {
			t.Fatalf("call %d: text = %q, want the 7-set result", i, text.Text)
		}
	}

	close(stop)
	wg.Wait()
}

func TestServerRegistration(t *testing.T) {
	s := NewServer(testSetup(t), "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"sets_validate",
		"sets_generate",
		"sets_clear",
		"sets_chart",
		"sets_save_chart",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	cfg := testSetup(t)
	cfg.DisabledTools = []string{"sets_save_chart", "sets_clear"}
	s := NewServer(cfg, "test")
	tools := s.ListTools()

	if len(tools) != 3 {
		t.Errorf("registered tool count = %d, want 3", len(tools))
	}
	for _, name := range cfg.DisabledTools {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
	if _, ok := tools["sets_generate"]; !ok {
		t.Error("core tool sets_generate should be registered")
	}
}

func TestServerRegistration_DisabledType(t *testing.T) {
	cfg := testSetup(t)
	cfg.DisabledTypes = []string{"sets"}
	s := NewServer(cfg, "test")

	if tools := s.ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (type disabled)", len(tools))
	}
}

func TestServerRegistration_DuplicateDisabled(t *testing.T) {
	cfg := testSetup(t)
	cfg.DisabledTools = []string{"sets_clear", "sets_clear", "sets_clear"}
	s := NewServer(cfg, "test")
	tools := s.ListTools()

	if len(tools) != 4 {
		t.Errorf("registered tool count = %d, want 4", len(tools))
	}
	if _, ok := tools["sets_clear"]; ok {
		t.Error("disabled tool 'sets_clear' should not be registered")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"sets_clear", "sets_chart"}, 0},
		{"one unknown", []string{"sets_clear", "fake_tool"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	if unknown := ValidateDisabledTypes([]string{"sets"}); len(unknown) != 0 {
		t.Errorf("unexpected unknown types: %v", unknown)
	}
	if unknown := ValidateDisabledTypes([]string{"sets", "widgets"}); len(unknown) != 1 || unknown[0] != "widgets" {
		t.Errorf("unknown = %v, want [widgets]", unknown)
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != 5 {
		t.Errorf("AllToolNames() returned %d names, want 5", len(names))
	}
	if unknown := ValidateDisabledTools(names); len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
	for _, name := range names {
		if GetTypeForTool(name) != "sets" {
			t.Errorf("GetTypeForTool(%q) = %q, want sets", name, GetTypeForTool(name))
		}
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("open /tmp/secret.png: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedErrorKeepsCode(t *testing.T) {
	r := errorResult(fmt.Errorf("chart: %w", errors.NewNoData()))
	assertErrorCode(t, r, string(errors.ErrNoData))
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	r := errorResult(errors.NewMultiWordEntry("New Zealand"))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrMultiWordEntry) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrMultiWordEntry)
	}
	details, ok := errObj["details"].(map[string]any)
	if !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
	if details["entry"] != "New Zealand" {
		t.Errorf("details.entry = %v, want New Zealand", details["entry"])
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	r := errorResult(fmt.Errorf("boom"))
	assertErrorCode(t, r, "INTERNAL")
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

// imageContent returns the image part of a chart result.
func imageContent(t *testing.T, result *mcp.CallToolResult) mcp.ImageContent {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	for _, c := range result.Content {
		if img, ok := c.(mcp.ImageContent); ok {
			return img
		}
	}
	t.Fatal("no image content in result")
	return mcp.ImageContent{}
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}

	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
