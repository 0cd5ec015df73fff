// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"
	"go.uber.org/zap"

	"mcp-recipe-box/internal/config"
	"mcp-recipe-box/internal/models"
	"mcp-recipe-box/internal/recipes"
	"mcp-recipe-box/internal/scale"
	"mcp-recipe-box/internal/storage"
)

// Version is reported in the server info and by the CLI.
const Version = "1.0.0"

// ErrInvalidParams marks tool arguments that could not be decoded or are
// missing required values.
var ErrInvalidParams = errors.New("invalid parameters")

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type RecipeBoxServer struct {
	server     *server.Server
	httpServer *http.Server
	storage    *storage.SQLiteStorage
	recipes    *recipes.Service
	tools      map[string]toolHandler
	config     *config.Config
	log        *zap.Logger
}

func NewRecipeBoxServer(cfg *config.Config, log *zap.Logger) (*RecipeBoxServer, error) {
	// Initialize database
	stor, err := storage.NewSQLiteStorage(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	srv, err := newServer(recipes.NewService(stor, cfg.Scaling.MaxServings, log), cfg, log)
	if err != nil {
		stor.Close()
		return nil, err
	}
	srv.storage = stor
	return srv, nil
}

func newServer(svc *recipes.Service, cfg *config.Config, log *zap.Logger) (*RecipeBoxServer, error) {
	if log == nil {
		log = zap.NewNop()
	}

	recipeServer := &RecipeBoxServer{
		recipes: svc,
		config:  cfg,
		log:     log,
	}

	// Tool calls arrive over the plain HTTP handler below, so the MCP server
	// carries identity only and has no transport of its own.
	mcpServer, err := server.NewServer(
		nil,
		server.WithServerInfo(protocol.Implementation{
			Name:    "recipe-box",
			Version: Version,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	recipeServer.server = mcpServer

	recipeServer.registerTools()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", recipeServer.handleHealth)
	mux.HandleFunc("/", recipeServer.handleHTTP)

	recipeServer.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return recipeServer, nil
}

func (s *RecipeBoxServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": Version})
}

func (s *RecipeBoxServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Decode the MCP request
	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("tool call failed", zap.String("tool", request.Name), zap.Error(err))
		} else {
			s.log.Debug("tool call rejected", zap.String("tool", request.Name), zap.Int("status", status), zap.Error(err))
		}
		http.Error(w, err.Error(), status)
		return
	}

	// Send response
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.log.Warn("failed to encode response", zap.String("tool", request.Name), zap.Error(err))
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		invalidServings *scale.InvalidServingsError
		incompatible    *scale.IncompatibleUnitsError
		unknownUnit     *scale.UnknownUnitError
	)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidParams),
		errors.Is(err, models.ErrInvalidRecipe),
		errors.Is(err, recipes.ErrServingsOutOfRange),
		errors.As(err, &invalidServings),
		errors.As(err, &incompatible),
		errors.As(err, &unknownUnit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Handler returns the HTTP handler serving tool calls.
func (s *RecipeBoxServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *RecipeBoxServer) Start(ctx context.Context) error {
	s.log.Info("starting recipe box server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *RecipeBoxServer) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.storage != nil {
		if cerr := s.storage.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (s *RecipeBoxServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
