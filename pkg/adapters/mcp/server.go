// Package mcp exposes the loaded stories to MCP clients: inspection tools,
// a stateless play tool and the graph as a resource.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/fable"
	"github.com/aretw0/fable/internal/dto"
	"github.com/aretw0/fable/internal/presentation/graph"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/aretw0/fable/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	graphURI   = "fable://graph"
	storiesURI = "fable://stories"
)

// Engine is the part of fable.Engine the MCP server needs.
type Engine interface {
	Inspect() []*domain.Story
	Start(ctx context.Context, out ports.Renderer, game *domain.GameState, fileID, block string) (*fable.Execution, error)
	Choose(ctx context.Context, out ports.Renderer, exec *fable.Execution, index int) error
}

// PlayResult is the outcome of the play tool.
type PlayResult struct {
	Output   string            `json:"output"`
	Status   string            `json:"status"`
	Position string            `json:"position"`
	Options  []string          `json:"options,omitempty"`
	Halt     string            `json:"halt,omitempty"`
	Error    string            `json:"error,omitempty"`
	Game     *domain.GameState `json:"game"`
	History  []string          `json:"history"`
}

// Server wraps the Fable Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("fable-mcp", strings.TrimSpace(fable.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_stories",
		mcp.WithDescription("List every loaded story file with its blocks and destinations."),
	), s.handleListStories)

	s.mcpServer.AddTool(mcp.NewTool("get_story",
		mcp.WithDescription("Describe one story file."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Story file id, e.g. intro.story")),
	), s.handleGetStory)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the story graph as a Mermaid flowchart."),
	), s.handleGetGraph)

	s.mcpServer.AddTool(mcp.NewTool("play",
		mcp.WithDescription("Start a fresh play-through and apply a sequence of choices. Returns the text shown and the final state."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Story file to start in")),
		mcp.WithString("block", mcp.Description("Block to start at (default: the file's first block)")),
		mcp.WithString("choices", mcp.Description("Comma separated option numbers, 1-based, e.g. \"1,2\"")),
	), s.handlePlay)
}

func (s *Server) handleListStories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(dto.Summarize(s.engine.Inspect()))
}

func (s *Server) handleGetStory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, sum := range dto.Summarize(s.engine.Inspect()) {
		if sum.File == file {
			return jsonResult(sum)
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("story %q not found", file)), nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(graph.GenerateMermaid(s.engine.Inspect(), nil)), nil
}

func (s *Server) handlePlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	block := request.GetString("block", "")
	choices, err := parseChoices(request.GetString("choices", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out strings.Builder
	renderer := ports.RendererFunc(func(_ context.Context, span domain.Span) error {
		out.WriteString(span.Text)
		if span.LineEnd {
			out.WriteByte('\n')
		}
		return nil
	})

	exec, err := s.engine.Start(ctx, renderer, nil, file, block)
	if exec == nil {
		return mcp.NewToolResultError(fmt.Sprintf("start failed: %v", err)), nil
	}
	for i, n := range choices {
		if err != nil || exec.Status() != domain.StatusAwaitingChoice {
			break
		}
		if cerr := s.engine.Choose(ctx, renderer, exec, n-1); cerr != nil {
			if errors.Is(cerr, domain.ErrInput) {
				return mcp.NewToolResultError(fmt.Sprintf("choice %d: %v", i+1, cerr)), nil
			}
			err = cerr
		}
	}

	res := PlayResult{
		Output:   out.String(),
		Status:   string(exec.Status()),
		Position: exec.Position().String(),
		Game:     exec.Game(),
		History:  exec.History(),
	}
	for _, opt := range exec.Options() {
		res.Options = append(res.Options, opt.Label)
	}
	if h := exec.Halt(); h != nil {
		res.Halt = h.Reason
	}
	if err != nil {
		res.Error = err.Error()
		s.logger.Warn("MCP play halted with error", "file", file, "err", err)
	}
	return jsonResult(res)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Story Graph",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.engine.Inspect(), nil),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(storiesURI, "Loaded Stories",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(dto.Summarize(s.engine.Inspect()))
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      storiesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func parseChoices(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid choice %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
