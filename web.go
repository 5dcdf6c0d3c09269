package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/rs/zerolog/log"

	"croptastic/internal/scene"
)

//go:embed static
var staticFS embed.FS
var isDebug = os.Getenv("DEBUG") == "1"

type Config struct {
	RootDir string
	// OutputDir is left out of listings.
	OutputDir        string
	OnBeforeShutdown func()
	OnReady          func(addr string)
	OnSave           func(ops Operations)
}

type WebApp struct {
	config       Config
	sessions     *Sessions
	loader       scene.Loader
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

func NewWebApp(config Config) *WebApp {
	return &WebApp{
		config:     config,
		sessions:   NewSessions(),
		loader:     scene.FileLoader{Root: config.RootDir},
		shutdownCh: make(chan struct{}),
	}
}

func (a *WebApp) Shutdown() {
	a.shutdownOnce.Do(func() {
		close(a.shutdownCh)
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	msg := "Internal Server Error"
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		if fiberErr.Code == http.StatusNotFound && c.Path() == "/favicon.ico" {
			return nil
		}
		code, msg = fiberErr.Code, fiberErr.Message
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, os.ErrNotExist):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, ErrBadSession), errors.Is(err, ErrUnknownEvent):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNoPreview):
		code, msg = http.StatusConflict, err.Error()
	}

	log.Ctx(c.Context()).Error().
		Err(err).
		Int("status", code).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Msg("Request failed")
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// handler builds the fiber app with every route mounted.
func (a *WebApp) handler() *fiber.App {
	webapp := fiber.New(fiber.Config{
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	filesRoot := http.Dir(a.config.RootDir)
	webapp.Get("/api/view", func(c *fiber.Ctx) error {
		return filesystem.SendFile(c, filesRoot, c.Query("file"))
	})

	webapp.Get("/api/ls", func(c *fiber.Ctx) error {
		dir, err := walkImages(c.UserContext(), a.config.RootDir, a.config.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to walk dir: %w", err)
		}
		for i := range dir.Files {
			dir.Files[i].URL = "/api/view?file=" + url.QueryEscape(dir.Files[i].Name)
		}
		return c.JSON(dir)
	})

	api := webapp.Group("/api/session")
	api.Post("/", func(c *fiber.Ctx) error {
		var req SessionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		s, err := NewSession(c.UserContext(), a.loader, req)
		if err != nil {
			return err
		}
		a.sessions.Add(s)
		return c.Status(http.StatusCreated).JSON(s.State())
	})
	api.Get("/:id", func(c *fiber.Ctx) error {
		s, err := a.sessions.Get(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(s.State())
	})
	api.Delete("/:id", func(c *fiber.Ctx) error {
		if err := a.sessions.Remove(c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	})
	api.Post("/:id/pointer", a.dispatch(false))
	api.Post("/:id/key", a.dispatch(true))
	api.Get("/:id/preview.png", func(c *fiber.Ctx) error {
		s, err := a.sessions.Get(c.Params("id"))
		if err != nil {
			return err
		}
		c.Type("png")
		return s.WritePreview(c.Response().BodyWriter())
	})
	api.Get("/:id/snapshot.png", func(c *fiber.Ctx) error {
		s, err := a.sessions.Get(c.Params("id"))
		if err != nil {
			return err
		}
		c.Type("png")
		return s.WriteSnapshot(c.Response().BodyWriter())
	})

	webapp.Post("/api/save", func(c *fiber.Ctx) error {
		var request struct {
			Operations []Operation `json:"operations"`
		}
		if err := c.BodyParser(&request); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := a.sessions.ResolveCrops(request.Operations); err != nil {
			return err
		}
		if fn := a.config.OnSave; fn != nil {
			fn(request.Operations)
		}
		return c.SendStatus(http.StatusNoContent)
	})
	webapp.Post("/api/shutdown", func(c *fiber.Ctx) error {
		a.Shutdown()
		return nil
	})

	if isDebug {
		log.Debug().Msg("Debug mode enabled, serving static files from './static' directory")
		webapp.Static("/", "static")
	} else {
		log.Debug().Msg("Serving static files from embedded filesystem")
		webapp.Use("/", filesystem.New(filesystem.Config{
			Root:       http.FS(staticFS),
			PathPrefix: "/static",
		}))
	}
	return webapp
}

// dispatch decodes an Event and applies it to the session named in the
// path. Key events only go through the key route.
func (a *WebApp) dispatch(key bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := a.sessions.Get(c.Params("id"))
		if err != nil {
			return err
		}
		var ev Event
		if err := c.BodyParser(&ev); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if key {
			ev.Kind = "key"
		} else if ev.Kind == "key" {
			return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
		}
		if err := s.Dispatch(ev); err != nil {
			return err
		}
		return c.JSON(s.State())
	}
}

func (a *WebApp) Run(ctx context.Context) error {
	webapp := a.handler()

	webapp.Hooks().OnListen(func(listen fiber.ListenData) error {
		if fn := a.config.OnReady; fn != nil {
			fn(fmt.Sprintf("http://%s:%s", listen.Host, listen.Port))
		}
		return nil
	})

	go func() {
		select {
		case <-ctx.Done():
		case <-a.shutdownCh:
		}
		if fn := a.config.OnBeforeShutdown; fn != nil {
			fn()
		}
		a.sessions.CloseAll()
		if err := webapp.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to shutdown web application")
		}
	}()

	// Let the OS assign a random available port
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	if err := webapp.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
