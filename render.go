package culturegen

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// timedComponent observes the render duration of the wrapped component.
type timedComponent struct {
	inner    templ.Component
	observer prometheus.Observer
	now      func() time.Time
}

func (t *timedComponent) Render(ctx context.Context, w io.Writer) error {
	start := t.now()
	err := t.inner.Render(ctx, w)
	t.observer.Observe(t.now().Sub(start).Seconds())
	return err
}
