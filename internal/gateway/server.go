package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"TickTrader/internal/broker"
	"TickTrader/internal/collector"
	"TickTrader/internal/id"
	"TickTrader/internal/model"
	"TickTrader/internal/paper"
)

const requestIDKey = "request_id"

// Market is what the server exposes: data plus execution.
type Market interface {
	collector.Fetcher
	broker.Broker
}

// Server serves a Market under /api/v1.
type Server struct {
	market Market
	apiKey string
	engine *gin.Engine
	srv    *http.Server
	log    zerolog.Logger
}

// NewServer builds the router. An empty apiKey disables authentication.
func NewServer(m Market, apiKey string, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		market: m,
		apiKey: apiKey,
		engine: gin.New(),
		log:    log.With().Str("component", "gateway").Logger(),
	}
	s.engine.Use(gin.Recovery(), s.requestID, s.accessLog)
	s.load()
	return s
}

func (s *Server) load() {
	s.engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	base := s.engine.Group("/api/v1", s.auth)
	{
		base.GET("/access", s.access)
		base.GET("/symbols", s.symbols)
		base.GET("/quote", s.quote)
		base.GET("/position", s.position)
		base.GET("/forecast", s.forecast)
		base.GET("/account", s.account)
		base.POST("/orders", s.order)
	}
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe blocks serving on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	s.log.Info().Str("addr", addr).Str("market", s.market.Name()).Msg("market gateway listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a server started by ListenAndServe.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) requestID(c *gin.Context) {
	rid := c.GetHeader("X-Request-Id")
	if rid == "" {
		rid = uuid.NewString()
	}
	c.Set(requestIDKey, rid)
	c.Header("X-Request-Id", rid)
	c.Next()
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug().
		Str("request_id", c.GetString(requestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("cost", time.Since(start)).
		Msg("request")
}

// auth expects "Authorization: Bearer <key>".
func (s *Server) auth(c *gin.Context) {
	if s.apiKey == "" {
		c.Next()
		return
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] != s.apiKey {
		s.reply(c, http.StatusUnauthorized, CodeUnauthorized, "invalid api key", nil)
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) reply(c *gin.Context, status, code int, msg string, data any) {
	body, err := json.Marshal(apiResponse[any]{
		RequestID: c.GetString(requestIDKey),
		Code:      code,
		Message:   msg,
		Data:      data,
	})
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func (s *Server) ok(c *gin.Context, data any) {
	s.reply(c, http.StatusOK, CodeSuccess, "ok", data)
}

// fail maps market errors onto status and code.
func (s *Server) fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, CodeInternal
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, paper.ErrInvalidQuantity):
		status, code = http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, paper.ErrUnknownSymbol):
		status, code = http.StatusNotFound, CodeUnknownSymbol
	case errors.Is(err, paper.ErrNoAdvancedData):
		status, code = http.StatusForbidden, CodeNoAdvancedData
	case errors.Is(err, paper.ErrInsufficientFunds),
		errors.Is(err, paper.ErrPositionCap),
		errors.Is(err, paper.ErrInsufficientShares):
		status, code = http.StatusUnprocessableEntity, CodeRejected
	}
	if code == CodeInternal {
		s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("market call failed")
	}
	s.reply(c, status, code, err.Error(), nil)
}

func symbolParam(c *gin.Context) (string, error) {
	sym := strings.TrimSpace(c.Query("symbol"))
	if sym == "" {
		return "", errors.Join(ErrBadRequest, errors.New("symbol is required"))
	}
	return sym, nil
}

func (s *Server) access(c *gin.Context) {
	acc, err := s.market.Access(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, accessDTO{Basic: acc.Basic, Advanced: acc.Advanced})
}

func (s *Server) symbols(c *gin.Context) {
	syms, err := s.market.Symbols(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, syms)
}

func (s *Server) quote(c *gin.Context) {
	sym, err := symbolParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	q, err := s.market.Quote(c.Request.Context(), sym)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, quoteDTO{Symbol: q.Symbol, Ask: q.Ask, Bid: q.Bid, Price: q.Price, MaxShares: q.MaxShares})
}

func (s *Server) position(c *gin.Context) {
	sym, err := symbolParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.market.Position(c.Request.Context(), sym)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, positionDTO{
		Symbol:     sym,
		LongShares: p.LongShares, LongAvgCost: p.LongAvgCost,
		ShortShares: p.ShortShares, ShortAvgCost: p.ShortAvgCost,
	})
}

func (s *Server) forecast(c *gin.Context) {
	sym, err := symbolParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	f, err := s.market.Forecast(c.Request.Context(), sym)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, forecastDTO{Symbol: sym, Forecast: f})
}

func (s *Server) account(c *gin.Context) {
	free, err := s.market.FreeCapital(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, accountDTO{FreeCapital: free})
}

func (s *Server) order(c *gin.Context) {
	var req orderRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		s.fail(c, errors.Join(ErrBadRequest, err))
		return
	}
	side, err := parseSide(req.Side)
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	switch side {
	case model.SideBuy:
		err = s.market.Buy(ctx, req.Symbol, req.Shares)
	case model.SideSell:
		err = s.market.Sell(ctx, req.Symbol, req.Shares)
	case model.SideShort:
		err = s.market.Short(ctx, req.Symbol, req.Shares)
	case model.SideCover:
		err = s.market.Cover(ctx, req.Symbol, req.Shares)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, orderDTO{ID: id.Order(), Symbol: req.Symbol, Side: wireSide(side), Shares: req.Shares})
}
