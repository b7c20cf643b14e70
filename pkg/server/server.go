package server

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/oarkflow/convert"
	"github.com/oarkflow/log"
	"github.com/oarkflow/xid"

	"github.com/oarkflow/rabbit"
)

// Config carries the service-level settings; engine limits stay in
// rabbit.RuntimeConfig.
type Config struct {
	Version      string
	CacheEntries int64
}

// Server exposes the rabbit front end over HTTP: tokenize, parse, and
// run endpoints plus registry introspection. Parsed programs are
// memoized in a shared cache; evaluation state is per request.
type Server struct {
	app    *fiber.App
	cache  *rabbit.ProgramCache
	logger *log.Logger
	config Config
}

type SourceRequest struct {
	Source string `json:"source"`
}

// RunRequest carries a script plus optional execution context: Input
// feeds input() calls line by line, Bindings pre-populates variables
// before the first statement runs.
type RunRequest struct {
	Source   string         `json:"source"`
	Input    string         `json:"input,omitempty"`
	Bindings map[string]any `json:"bindings,omitempty"`
}

type TokenInfo struct {
	Type    string `json:"type"`
	Literal string `json:"literal"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

type TokenizeResponse struct {
	Tokens      []TokenInfo `json:"tokens"`
	Diagnostics []string    `json:"diagnostics"`
}

type ParseResponse struct {
	AST         map[string]any `json:"ast"`
	Tree        string         `json:"tree"`
	Diagnostics []string       `json:"diagnostics"`
}

type RunResponse struct {
	RunID         string  `json:"runId"`
	Result        any     `json:"result"`
	Type          string  `json:"type,omitempty"`
	Output        string  `json:"output"`
	ExecutionTime float64 `json:"executionTime"`
}

func New(cfg Config) (*Server, error) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	cache, err := rabbit.NewProgramCache(cfg.CacheEntries)
	if err != nil {
		return nil, err
	}

	server := &Server{
		app:    app,
		cache:  cache,
		logger: &log.DefaultLogger,
		config: cfg,
	}

	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	s.app.Use(cors.New())
	s.app.Use(logger.New())

	s.app.Get("/health", s.healthHandler)
	s.app.Get("/api/health", s.healthHandler)

	s.app.Get("/api/builtins", s.builtinsHandler)
	s.app.Post("/api/tokenize", s.tokenizeHandler)
	s.app.Post("/api/parse", s.parseHandler)
	s.app.Post("/api/run", s.runHandler)
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   s.config.Version,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) builtinsHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"builtins": rabbit.Builtins(),
	})
}

func (s *Server) tokenizeHandler(c *fiber.Ctx) error {
	req, ok := s.sourceFromBody(c)
	if !ok {
		return nil
	}
	tokens, diags := rabbit.Tokenize(req.Source)
	resp := TokenizeResponse{
		Tokens:      make([]TokenInfo, 0, len(tokens)),
		Diagnostics: diagnosticStrings(diags),
	}
	for _, tok := range tokens {
		resp.Tokens = append(resp.Tokens, TokenInfo{
			Type:    string(tok.Type),
			Literal: tok.Literal,
			Line:    tok.Line,
			Column:  tok.Column,
		})
	}
	return c.JSON(resp)
}

func (s *Server) parseHandler(c *fiber.Ctx) error {
	req, ok := s.sourceFromBody(c)
	if !ok {
		return nil
	}
	tree, diags, err := rabbit.ParseToTree(req.Source)
	if err != nil {
		return s.engineError(c, err)
	}
	program, err := rabbit.NewBuilder().Build(tree)
	if err != nil {
		return s.engineError(c, err)
	}
	return c.JSON(ParseResponse{
		AST:         rabbit.InspectAST(program),
		Tree:        tree.String(),
		Diagnostics: diagnosticStrings(diags),
	})
}

func (s *Server) runHandler(c *fiber.Ctx) error {
	var req RunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Source) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Source cannot be empty"})
	}
	runID := xid.New().String()
	start := time.Now()

	program, err := s.loadProgram(req.Source)
	if err != nil {
		return s.engineError(c, err)
	}

	env := rabbit.NewEnvironment()
	for name, raw := range req.Bindings {
		val, ok := bindingValue(raw)
		if !ok {
			return c.Status(400).JSON(fiber.Map{
				"error": fmt.Sprintf("binding %q must be a number or a string", name),
			})
		}
		env.Set(name, val)
	}

	var out bytes.Buffer
	runner, err := rabbit.NewRunner(
		rabbit.WithOutput(&out),
		rabbit.WithInput(strings.NewReader(req.Input)),
		rabbit.WithEnvironment(env),
		rabbit.WithLogger(s.logger),
	)
	if err != nil {
		return s.engineError(c, err)
	}
	result, err := runner.RunProgram(program)
	executionTime := time.Since(start).Seconds()
	if err != nil {
		s.logger.Warn().Str("run_id", runID).Err(err).Msg("script run failed")
		var rerr *rabbit.Error
		if errors.As(err, &rerr) {
			return c.Status(400).JSON(fiber.Map{
				"error":         rerr.Message,
				"code":          string(rerr.Code),
				"output":        out.String(),
				"executionTime": executionTime,
			})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	resp := RunResponse{
		RunID:         runID,
		Output:        out.String(),
		ExecutionTime: executionTime,
	}
	switch val := result.(type) {
	case *rabbit.Number:
		resp.Result = val.Value
		resp.Type = string(val.Type())
	case *rabbit.String:
		resp.Result = val.Value
		resp.Type = string(val.Type())
	}
	return c.JSON(resp)
}

// sourceFromBody parses and validates the common request shape. When
// it returns false the handler has already written a response.
func (s *Server) sourceFromBody(c *fiber.Ctx) (SourceRequest, bool) {
	var req SourceRequest
	if err := c.BodyParser(&req); err != nil {
		_ = c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
		return req, false
	}
	if strings.TrimSpace(req.Source) == "" {
		_ = c.Status(400).JSON(fiber.Map{"error": "Source cannot be empty"})
		return req, false
	}
	cfg := rabbit.GetRuntimeConfig()
	if cfg.MaxSourceBytes > 0 && len(req.Source) > cfg.MaxSourceBytes {
		_ = c.Status(400).JSON(fiber.Map{"error": "Source exceeds configured size limit"})
		return req, false
	}
	return req, true
}

func (s *Server) loadProgram(source string) (*rabbit.Program, error) {
	if program, ok := s.cache.Get(source); ok {
		return program, nil
	}
	program, err := rabbit.Parse(source)
	if err != nil {
		return nil, err
	}
	s.cache.Set(source, program)
	return program, nil
}

func (s *Server) engineError(c *fiber.Ctx, err error) error {
	var rerr *rabbit.Error
	if errors.As(err, &rerr) {
		return c.Status(400).JSON(fiber.Map{
			"error":   rerr.Message,
			"code":    string(rerr.Code),
			"details": rerr.Details,
		})
	}
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}

// bindingValue coerces a JSON binding into a runtime value. Strings
// stay strings and anything numeric lands as a number; booleans have
// no place in the value union and are rejected.
func bindingValue(raw any) (rabbit.Value, bool) {
	switch v := raw.(type) {
	case string:
		return &rabbit.String{Value: v}, true
	case bool:
		return nil, false
	}
	if num, ok := convert.ToFloat64(raw); ok {
		return &rabbit.Number{Value: num}, true
	}
	if s, ok := convert.ToString(raw); ok {
		return &rabbit.String{Value: s}, true
	}
	return nil, false
}

func diagnosticStrings(diags []rabbit.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, diag := range diags {
		out = append(out, diag.String())
	}
	return out
}

// App exposes the fiber app, mainly so tests can drive requests
// without a listener.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("starting rabbit API server")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	s.logger.Info().Msg("shutting down rabbit API server")
	s.cache.Close()
	return s.app.Shutdown()
}
