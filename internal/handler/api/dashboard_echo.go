package api

import (
	"bytes"
	"net/http"

	"PowerCast/internal/chart"
	"PowerCast/internal/domain/models"
	"PowerCast/internal/handler/ws"
	"PowerCast/internal/usecase"
	xhttp "PowerCast/pkg/http"
	xlogger "PowerCast/pkg/logger"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DashboardHandler serves the chart page, the websocket feed and the JSON API.
type DashboardHandler struct {
	logger   *xlogger.Logger
	replay   *usecase.ReplayService
	upload   *usecase.UploadUseCase
	hub      *ws.Hub
	title    string
	maxBytes string
}

// NewDashboardHandler also installs the hub's on-connect snapshot.
func NewDashboardHandler(logger *xlogger.Logger, replay *usecase.ReplayService, upload *usecase.UploadUseCase, hub *ws.Hub, title, maxBytes string) *DashboardHandler {
	h := &DashboardHandler{
		logger:   logger.With("dashboard"),
		replay:   replay,
		upload:   upload,
		hub:      hub,
		title:    title,
		maxBytes: maxBytes,
	}
	hub.SetSnapshot(h.Snapshot)
	return h
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Page)
	e.GET("/ws", echo.WrapHandler(h.hub))
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/replay/status", h.Status)
	g.POST("/replay/start", h.StartReplay)
	g.GET("/charts", h.Charts)
	g.GET("/charts/:id/png", h.ChartPNG)
	g.GET("/upload", h.UploadFrame)
	g.POST("/upload", h.Upload, middleware.BodyLimit(h.maxBytes))
}

// Snapshot returns the current frame of every chart and the replay status.
func (h *DashboardHandler) Snapshot() []models.Event {
	frames := h.frames()
	events := make([]models.Event, 0, len(frames)+1)
	for _, f := range frames {
		events = append(events, models.FrameEvent(f))
	}
	return append(events, models.StatusEvent(h.replay.Status()))
}

func (h *DashboardHandler) frames() []models.Frame {
	cs := h.replay.Charts()
	out := make([]models.Frame, 0, len(cs)+1)
	for _, c := range cs {
		out = append(out, c.Snapshot())
	}
	return append(out, h.upload.View().Snapshot())
}

func (h *DashboardHandler) Page(c echo.Context) error {
	cs := h.replay.Charts()
	lines := make([]*charts.Line, 0, len(cs)+1)
	for _, ch := range cs {
		lines = append(lines, ch.Config().Line(ch.Snapshot()))
	}
	view := h.upload.View()
	lines = append(lines, h.upload.ChartConfig().Line(view.Snapshot()))

	var buf bytes.Buffer
	if err := chart.RenderPage(&buf, h.title, lines, pageExtra(view.ID(), view.Visible())); err != nil {
		h.logger.Error("render page failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *DashboardHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":  "ok",
		"replay":  h.replay.Status().State,
		"clients": h.hub.Clients(),
	})
}

func (h *DashboardHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.replay.Status())
}

func (h *DashboardHandler) StartReplay(c echo.Context) error {
	if err := h.replay.Start(c.Request().Context()); err != nil {
		h.logger.Warn("replay start rejected", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.AcceptedResponse(c, h.replay.Status())
}

func (h *DashboardHandler) Charts(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.frames())
}

func (h *DashboardHandler) ChartPNG(c echo.Context) error {
	req := &models.ChartPNGRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var (
		cfg   chart.Config
		frame models.Frame
	)
	if ch, ok := h.replay.Chart(req.ID); ok {
		cfg, frame = ch.Config(), ch.Snapshot()
	} else if view := h.upload.View(); view.ID() == req.ID {
		cfg, frame = h.upload.ChartConfig(), view.Snapshot()
	} else {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("chart %q not found", req.ID))
	}

	var buf bytes.Buffer
	if err := cfg.RenderPNG(&buf, frame, req.Width, req.Height); err != nil {
		h.logger.Warn("png export failed", xlogger.String("chart", req.ID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (h *DashboardHandler) UploadFrame(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.upload.View().Snapshot())
}

func (h *DashboardHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_REQUIRED", "file", "file is required", http.StatusBadRequest))
	}
	f, err := fh.Open()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("cannot read uploaded file").WithError(err))
	}
	defer f.Close()

	frame, err := h.upload.Submit(c.Request().Context(), c.RealIP(), fh.Filename, f)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, frame)
}
