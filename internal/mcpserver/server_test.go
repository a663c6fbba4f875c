package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jwulff/asltutor/internal/db"
	"github.com/jwulff/asltutor/internal/gestures"
	"github.com/jwulff/asltutor/internal/progress"
	"github.com/jwulff/asltutor/internal/recognizer"
)

func setupTestServer(t *testing.T, rec recognizer.Recognizer) (*Server, *db.Store) {
	t.Helper()
	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "mcp.sqlite"))
	if err != nil {
		t.Fatalf("db.Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	server, err := NewServer(Config{
		Name:       "test-server",
		Version:    "v1.0.0",
		Store:      store,
		Catalog:    gestures.MustDefault(),
		Recognizer: rec,
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, store
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestNewServerRequiresCatalogAndStore(t *testing.T) {
	if _, err := NewServer(Config{Catalog: gestures.MustDefault()}); err == nil {
		t.Error("expected error without store")
	}
	_, store := setupTestServer(t, nil)
	if _, err := NewServer(Config{Store: store}); err == nil {
		t.Error("expected error without catalog")
	}
}

func TestHandleListGestures(t *testing.T) {
	server, _ := setupTestServer(t, nil)
	ctx := context.Background()

	res, err := server.handleListGestures(ctx, request(nil))
	if err != nil {
		t.Fatalf("handleListGestures failed: %v", err)
	}
	var all GestureListOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &all); err != nil {
		t.Fatal(err)
	}
	if all.Count != 14 || len(all.Gestures) != 14 {
		t.Errorf("count = %d, want 14", all.Count)
	}

	res, err = server.handleListGestures(ctx, request(map[string]any{"difficulty": "advanced"}))
	if err != nil {
		t.Fatal(err)
	}
	var adv GestureListOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &adv); err != nil {
		t.Fatal(err)
	}
	for _, g := range adv.Gestures {
		if g.Difficulty != gestures.Advanced {
			t.Errorf("%s has difficulty %s", g.ID, g.Difficulty)
		}
	}

	res, err = server.handleListGestures(ctx, request(map[string]any{"query": "zzz"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, res), `"gestures": []`) {
		t.Errorf("no matches should encode an empty list, got %s", resultText(t, res))
	}
}

func TestHandleGetGesture(t *testing.T) {
	server, _ := setupTestServer(t, nil)
	ctx := context.Background()

	for _, name := range []string{"thank-you", "thank you"} {
		res, err := server.handleGetGesture(ctx, request(map[string]any{"name": name}))
		if err != nil {
			t.Fatalf("handleGetGesture(%q) failed: %v", name, err)
		}
		var g gestures.Gesture
		if err := json.Unmarshal([]byte(resultText(t, res)), &g); err != nil {
			t.Fatal(err)
		}
		if g.ID != "thank-you" {
			t.Errorf("%q resolved to %q", name, g.ID)
		}
	}

	res, err := server.handleGetGesture(ctx, request(map[string]any{"name": "unknown"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("unknown gesture should be a tool error")
	}

	res, err = server.handleGetGesture(ctx, request(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("missing name should be a tool error")
	}
}

func TestHandleListTranslations(t *testing.T) {
	server, store := setupTestServer(t, nil)
	ctx := context.Background()

	res, err := server.handleListTranslations(ctx, request(nil))
	if err != nil {
		t.Fatal(err)
	}
	var empty TranslationListOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &empty); err != nil {
		t.Fatal(err)
	}
	if empty.Count != 0 {
		t.Errorf("count = %d, want 0", empty.Count)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, text := range []string{"Hello", "Love"} {
		if err := store.AddTranslation(ctx, text, at); err != nil {
			t.Fatal(err)
		}
	}
	res, err = server.handleListTranslations(ctx, request(nil))
	if err != nil {
		t.Fatal(err)
	}
	var out TranslationListOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || out.Translations[0].Text != "Hello" || out.Translations[1].Text != "Love" {
		t.Errorf("translations = %+v", out.Translations)
	}
	if !out.Translations[0].Timestamp.Equal(at) {
		t.Errorf("timestamp = %v, want %v", out.Translations[0].Timestamp, at)
	}
}

func TestHandleProgressOverview(t *testing.T) {
	server, store := setupTestServer(t, nil)
	ctx := context.Background()
	if err := store.SetCompleted(ctx, "ada@example.com", "hello", true); err != nil {
		t.Fatal(err)
	}

	res, err := server.handleProgressOverview(ctx, request(map[string]any{"email": "ada@example.com"}))
	if err != nil {
		t.Fatal(err)
	}
	var ov progress.Overview
	if err := json.Unmarshal([]byte(resultText(t, res)), &ov); err != nil {
		t.Fatal(err)
	}
	if ov.Completed != 1 || ov.Total != 14 {
		t.Errorf("overview = %d/%d, want 1/14", ov.Completed, ov.Total)
	}

	res, err = server.handleProgressOverview(ctx, request(nil))
	if err != nil {
		t.Fatal(err)
	}
	var guest progress.Overview
	if err := json.Unmarshal([]byte(resultText(t, res)), &guest); err != nil {
		t.Fatal(err)
	}
	if guest.Completed != 0 {
		t.Errorf("guest progress = %d, want 0", guest.Completed)
	}
}

func TestHandleSampleDetection(t *testing.T) {
	rec, err := recognizer.NewRandom(recognizer.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	server, _ := setupTestServer(t, rec)

	res, err := server.handleSampleDetection(context.Background(), request(nil))
	if err != nil {
		t.Fatal(err)
	}
	var d DetectionOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &d); err != nil {
		t.Fatal(err)
	}
	if !recognizer.DefaultPolicy().Contains(d.Label) {
		t.Errorf("label %q not in vocabulary", d.Label)
	}
	if d.Confidence < 70 || d.Confidence > 100 {
		t.Errorf("confidence = %d", d.Confidence)
	}
	if d.Tier != string(recognizer.TierFor(d.Confidence)) {
		t.Errorf("tier = %s for %d", d.Tier, d.Confidence)
	}
}

func TestSampleDetectionConcurrentCalls(t *testing.T) {
	rec, err := recognizer.NewRandom(recognizer.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	server, _ := setupTestServer(t, rec)

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				msg := server.mcp.HandleMessage(context.Background(), json.RawMessage(fmt.Sprintf(
					`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":"sample_detection"}}`,
					id*100+j)))
				data, err := json.Marshal(msg)
				if err != nil {
					errs <- err.Error()
					return
				}
				if !strings.Contains(string(data), "confidence") {
					errs <- string(data)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("sample_detection call failed: %s", e)
	}
}

func TestToolsList(t *testing.T) {
	listTools := func(s *Server) string {
		msg := s.mcp.HandleMessage(context.Background(),
			json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	plain, _ := setupTestServer(t, nil)
	got := listTools(plain)
	for _, name := range []string{ToolListGestures, ToolGetGesture, ToolListTranslations, ToolProgressOverview} {
		if !strings.Contains(got, `"`+name+`"`) {
			t.Errorf("tools/list missing %s: %s", name, got)
		}
	}
	if strings.Contains(got, ToolSampleDetection) {
		t.Error("sample_detection needs a recognizer")
	}

	rec, err := recognizer.NewRandom(recognizer.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	withRec, _ := setupTestServer(t, rec)
	if !strings.Contains(listTools(withRec), ToolSampleDetection) {
		t.Error("sample_detection should be registered with a recognizer")
	}
}
