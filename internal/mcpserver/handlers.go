package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jwulff/asltutor/internal/db"
	"github.com/jwulff/asltutor/internal/gestures"
	"github.com/jwulff/asltutor/internal/progress"
	"github.com/jwulff/asltutor/internal/recognizer"
)

// Tool names.
const (
	ToolListGestures     = "list_gestures"
	ToolGetGesture       = "get_gesture"
	ToolListTranslations = "list_translations"
	ToolProgressOverview = "progress_overview"
	ToolSampleDetection  = "sample_detection"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool(ToolListGestures,
		mcp.WithDescription("List ASL gestures in the library, optionally filtered"),
		mcp.WithString("query", mcp.Description("Case-insensitive text matched against name and category")),
		mcp.WithString("category", mcp.Description("Exact category, e.g. Greetings")),
		mcp.WithString("difficulty",
			mcp.Description("Difficulty level"),
			mcp.Enum(string(gestures.Beginner), string(gestures.Intermediate), string(gestures.Advanced)),
		),
	), s.handleListGestures)

	s.mcp.AddTool(mcp.NewTool(ToolGetGesture,
		mcp.WithDescription("Get one gesture's description and practice tips"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Gesture ID or display name")),
	), s.handleGetGesture)

	s.mcp.AddTool(mcp.NewTool(ToolListTranslations,
		mcp.WithDescription("List translations saved from the recognizer, oldest first"),
	), s.handleListTranslations)

	s.mcp.AddTool(mcp.NewTool(ToolProgressOverview,
		mcp.WithDescription("Summarize learned gestures overall and per category"),
		mcp.WithString("email", mcp.Description("Learner email; empty for the guest learner")),
	), s.handleProgressOverview)

	if s.rec != nil {
		s.mcp.AddTool(mcp.NewTool(ToolSampleDetection,
			mcp.WithDescription("Produce one simulated recognition result"),
		), s.handleSampleDetection)
	}
}

// GestureListOutput is the list_gestures result.
type GestureListOutput struct {
	Gestures []gestures.Gesture `json:"gestures"`
	Count    int                `json:"count"`
}

// TranslationListOutput is the list_translations result.
type TranslationListOutput struct {
	Translations []db.Translation `json:"translations"`
	Count        int              `json:"count"`
}

// DetectionOutput is the sample_detection result.
type DetectionOutput struct {
	Label      string    `json:"label"`
	Confidence int       `json:"confidence"`
	Tier       string    `json:"tier"`
	At         time.Time `json:"at"`
}

func (s *Server) handleListGestures(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := gestures.Query{
		Text:       req.GetString("query", ""),
		Category:   req.GetString("category", ""),
		Difficulty: gestures.Difficulty(req.GetString("difficulty", "")),
	}
	found := s.catalog.Search(q)
	if found == nil {
		found = []gestures.Gesture{}
	}
	return jsonResult(GestureListOutput{Gestures: found, Count: len(found)})
}

func (s *Server) handleGetGesture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, ok := s.catalog.ByID(name)
	if !ok {
		g, ok = s.catalog.ByName(name)
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("gesture %q not found", name)), nil
	}
	return jsonResult(g)
}

func (s *Server) handleListTranslations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.store.Translations(ctx)
	if err != nil {
		s.log.Error("list translations", "error", err)
		return nil, fmt.Errorf("list translations: %w", err)
	}
	if items == nil {
		items = []db.Translation{}
	}
	return jsonResult(TranslationListOutput{Translations: items, Count: len(items)})
}

func (s *Server) handleProgressOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	completed, err := s.store.CompletedGestures(ctx, req.GetString("email", ""))
	if err != nil {
		s.log.Error("progress overview", "error", err)
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return jsonResult(progress.Summarize(s.catalog, completed))
}

func (s *Server) handleSampleDetection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := s.rec.NextDetection()
	return jsonResult(DetectionOutput{
		Label:      d.Label,
		Confidence: d.Confidence,
		Tier:       string(recognizer.TierFor(d.Confidence)),
		At:         d.At,
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
