package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mos-jef/title-crm/internal/catalog"
	"github.com/mos-jef/title-crm/internal/models"
	"github.com/mos-jef/title-crm/internal/parcelfs"
	"github.com/mos-jef/title-crm/internal/parcelservice"
	"github.com/mos-jef/title-crm/internal/testutil"
)

func testServer(t *testing.T, initial []models.Parcel) (*Server, *parcelservice.Service) {
	t.Helper()

	_, layout := testutil.TestLayout(t)
	store := catalog.NewStore(initial, nil)
	svc := parcelservice.NewService(store, layout, nil, nil, 0, true, nil, nil)

	srv := New(svc)
	return srv, svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we
	// invoke the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_parcels":
		result, err = srv.listParcels(ctx, req)
	case "get_parcel":
		result, err = srv.getParcel(ctx, req)
	case "find_parcel":
		result, err = srv.findParcel(ctx, req)
	case "set_completed":
		result, err = srv.setCompleted(ctx, req)
	case "list_files":
		result, err = srv.listFiles(ctx, req)
	case "attach_document":
		result, err = srv.attachDocument(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListParcels(t *testing.T) {
	srv, _ := testServer(t, []models.Parcel{
		{ID: "p1", APN: "1-1-1"},
		{ID: "p2", APN: "2-2-2"},
	})

	r := callTool(t, srv, "list_parcels", map[string]interface{}{})
	var parcels []models.Parcel
	if err := json.Unmarshal([]byte(resultText(r)), &parcels); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(parcels) != 2 {
		t.Errorf("got %d parcels, want 2", len(parcels))
	}
}

func TestGetParcel(t *testing.T) {
	srv, _ := testServer(t, []models.Parcel{{ID: "p1", APN: "1-1-1", County: "Lake"}})

	r := callTool(t, srv, "get_parcel", map[string]interface{}{"id": "p1"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var p models.Parcel
	_ = json.Unmarshal([]byte(resultText(r)), &p)
	if p.County != "Lake" {
		t.Errorf("county = %q, want Lake", p.County)
	}
}

func TestGetParcelMissing(t *testing.T) {
	srv, _ := testServer(t, nil)

	r := callTool(t, srv, "get_parcel", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected an error result")
	}
}

func TestFindParcelNormalizesAPN(t *testing.T) {
	srv, _ := testServer(t, []models.Parcel{{ID: "p1", APN: "123-45-678"}})

	r := callTool(t, srv, "find_parcel", map[string]interface{}{"apn": "123.45.678"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var p models.Parcel
	_ = json.Unmarshal([]byte(resultText(r)), &p)
	if p.ID != "p1" {
		t.Errorf("found %q, want p1", p.ID)
	}

	r = callTool(t, srv, "find_parcel", map[string]interface{}{"apn": "999"})
	if !r.IsError {
		t.Error("expected an error for an unknown apn")
	}
}

func TestSetCompleted(t *testing.T) {
	srv, svc := testServer(t, []models.Parcel{{ID: "p1", APN: "1-1-1"}})

	r := callTool(t, srv, "set_completed", map[string]interface{}{"id": "p1", "completed": true})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	p, err := svc.GetParcel(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Completed {
		t.Error("completed flag not set")
	}
}

func TestAttachDocument(t *testing.T) {
	srv, svc := testServer(t, nil)

	created, err := svc.CreateParcel(context.Background(), models.Parcel{APN: "7-7-7"})
	if err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(t.TempDir(), "deed.pdf")
	if err := os.WriteFile(src, []byte("deed"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "attach_document", map[string]interface{}{
		"id":       created.ID,
		"category": parcelfs.CategoryVestingDeed,
		"path":     src,
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if _, err := os.Stat(filepath.Join(created.FolderPath, parcelfs.CategoryVestingDeed, "deed.pdf")); err != nil {
		t.Fatalf("attached file missing: %v", err)
	}

	// Unknown extensions are rejected before touching the catalog.
	bad := filepath.Join(t.TempDir(), "script.sh")
	_ = os.WriteFile(bad, []byte("x"), 0o644)
	r = callTool(t, srv, "attach_document", map[string]interface{}{
		"id":       created.ID,
		"category": parcelfs.CategoryVestingDeed,
		"path":     bad,
	})
	if !r.IsError {
		t.Error("expected an error for an unsupported extension")
	}
}

func TestListFilesTool(t *testing.T) {
	srv, svc := testServer(t, nil)

	created, err := svc.CreateParcel(context.Background(), models.Parcel{APN: "3-3-3"})
	if err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(t.TempDir(), "map.pdf")
	if err := os.WriteFile(src, []byte("map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := svc.AttachFile(context.Background(), created.ID, parcelfs.CategoryMaps, src, "map.pdf"); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_files", map[string]interface{}{"id": created.ID})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "map.pdf") {
		t.Errorf("listing does not mention map.pdf: %s", resultText(r))
	}
}

func TestFolderLayoutResource(t *testing.T) {
	srv, _ := testServer(t, nil)

	contents, err := srv.readFolderLayoutResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("expected text resource contents")
	}
	for _, cat := range parcelfs.Categories {
		if !strings.Contains(tc.Text, cat) {
			t.Errorf("layout contract missing category %q", cat)
		}
	}
}
