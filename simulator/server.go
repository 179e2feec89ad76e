package simulator

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ilievs/facelight/core"
)

// Server exposes a Device over the device-control HTTP contract.
type Server struct {
	echo   *echo.Echo
	device *Device
	log    logrus.FieldLogger
}

func NewServer(device *Device, log logrus.FieldLogger) *Server {
	s := &Server{
		echo:   echo.New(),
		device: device,
		log:    core.OrDiscard(log).WithField("component", "simulator-http"),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	// Middleware
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Output: logWriter(s.log),
	}))
	s.echo.Use(middleware.Recover())

	// Routes
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/register_face", s.handleRegisterFace)
	s.echo.DELETE("/delete_face/:name", s.handleDeleteFace)
	s.echo.POST("/toggle_light", s.handleToggle)
	s.echo.POST("/set_brightness", s.handleSetBrightness)
	s.echo.POST("/test_mode", s.handleSetMode)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.WithField("address", addr).Info("device service listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func failure(c echo.Context, code int, msg string) error {
	return c.JSON(code, core.Result{Success: false, Message: msg})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.device.Status())
}

func (s *Server) handleRegisterFace(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return failure(c, http.StatusBadRequest, "Name is required")
	}
	return c.JSON(http.StatusOK, s.device.RegisterFace(name))
}

func (s *Server) handleDeleteFace(c echo.Context) error {
	name := c.Param("name")
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	return c.JSON(http.StatusOK, s.device.DeleteFace(name))
}

func (s *Server) handleToggle(c echo.Context) error {
	return c.JSON(http.StatusOK, s.device.Toggle())
}

func (s *Server) handleSetBrightness(c echo.Context) error {
	body := struct {
		Brightness *int `json:"brightness"`
	}{}
	if err := c.Bind(&body); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request body")
	}
	level := DefaultBrightness
	if body.Brightness != nil {
		level = *body.Brightness
	}
	return c.JSON(http.StatusOK, s.device.SetBrightness(level))
}

func (s *Server) handleSetMode(c echo.Context) error {
	body := struct {
		Mode *core.Mode `json:"mode"`
	}{}
	if err := c.Bind(&body); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request body")
	}
	mode := core.ModeNormal
	if body.Mode != nil {
		mode = *body.Mode
	}
	res, err := s.device.SetMode(mode)
	if errors.Is(err, ErrInvalidMode) {
		return failure(c, http.StatusBadRequest, "Invalid mode")
	}
	return c.JSON(http.StatusOK, res)
}
