package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "trader_ticks_total", Help: "Control loop ticks completed"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trader_orders_total", Help: "Orders submitted"},
		[]string{"symbol", "side"},
	)
	OrderFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trader_order_failures_total", Help: "Orders rejected by the broker"},
		[]string{"symbol", "side"},
	)
	Forecast = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "trader_forecast", Help: "Latest forecast per symbol"},
		[]string{"symbol"},
	)
	NetWorth = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "trader_net_worth", Help: "Free cash plus marked portfolio value"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, OrdersTotal, OrderFailuresTotal, Forecast, NetWorth)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
