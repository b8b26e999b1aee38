// Package api exposes a kvstore and the kson and kexpr parsers over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"xlib-go/pkg/kexpr"
	"xlib-go/pkg/kson"
	"xlib-go/pkg/kvstore"
	"xlib-go/pkg/log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	Echo  *echo.Echo
	Store *kvstore.Store
	addr  string
}

type ksonResult struct {
	Text     string `json:"text"`
	Nodes    int    `json:"nodes"`
	Consumed int    `json:"consumed"`
}

func New(store *kvstore.Store, addr string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("8M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().Str("component", "api").Str("method", v.Method).Str("uri", v.URI).
				Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))

	s := &Server{Echo: e, Store: store, addr: addr}
	e.GET("/kv", s.ListKeys)
	e.GET("/kv/:key", s.GetKey)
	e.PUT("/kv/:key", s.PutKey)
	e.DELETE("/kv/:key", s.DeleteKey)
	e.GET("/stats", s.Stats)
	e.POST("/kson", s.ParseKSON)
	e.POST("/kson/svg", s.RenderKSON)
	e.POST("/kson/import", s.ImportKSON)
	e.POST("/expr", s.ParseExpr)
	return s
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	log.Info().Str("component", "api").Str("addr", s.addr).Msg("listening")
	if err := s.Echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func keyParam(c echo.Context) (string, error) {
	k, err := url.PathUnescape(c.Param("key"))
	if err != nil || k == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid key")
	}
	return k, nil
}

func body(c echo.Context) (string, error) {
	b, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return string(b), nil
}

func (s *Server) ListKeys(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"keys": s.Store.Keys()})
}

func (s *Server) GetKey(c echo.Context) error {
	k, err := keyParam(c)
	if err != nil {
		return err
	}
	v, ok := s.Store.Get(k)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no such key: "+k)
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, v)
}

func (s *Server) PutKey(c echo.Context) error {
	k, err := keyParam(c)
	if err != nil {
		return err
	}
	v, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.Store.Set(k, v); err != nil {
		return echo.NewHTTPError(http.StatusInsufficientStorage, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) DeleteKey(c echo.Context) error {
	k, err := keyParam(c)
	if err != nil {
		return err
	}
	if !s.Store.Delete(k) {
		return echo.NewHTTPError(http.StatusNotFound, "no such key: "+k)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Store.Stats())
}

func parseBody(c echo.Context) (*kson.Arena, int, error) {
	text, err := body(c)
	if err != nil {
		return nil, 0, err
	}
	a, n, err := kson.ParseLen(text)
	if err != nil {
		return nil, 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return a, n, nil
}

// ParseKSON returns the document re-serialized. An indent query parameter
// (number of spaces) selects the indented form.
func (s *Server) ParseKSON(c echo.Context) error {
	a, n, err := parseBody(c)
	if err != nil {
		return err
	}
	text := a.String()
	if ind := c.QueryParam("indent"); ind != "" {
		w, err := strconv.Atoi(ind)
		if err != nil || w < 0 || w > 16 {
			return echo.NewHTTPError(http.StatusBadRequest, "indent must be 0..16")
		}
		text = a.Format(spaces(w))
	}
	return c.JSON(http.StatusOK, ksonResult{Text: text, Nodes: a.Len(), Consumed: n})
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func (s *Server) RenderKSON(c echo.Context) error {
	a, _, err := parseBody(c)
	if err != nil {
		return err
	}
	svg, err := a.SVG(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/svg+xml", svg)
}

func (s *Server) ImportKSON(c echo.Context) error {
	a, _, err := parseBody(c)
	if err != nil {
		return err
	}
	n, err := s.Store.ImportKSON(a, c.QueryParam("prefix"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInsufficientStorage, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"imported": n})
}

func (s *Server) ParseExpr(c echo.Context) error {
	text, err := body(c)
	if err != nil {
		return err
	}
	e, err := kexpr.Parse(text)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"rpn": e.String(), "tokens": e.Len()})
}
