package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amapara27/silicon-edge-ai-compiler/logging"
)

var (
	SaveCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "model_save_total",
		Help: "Completed model save transactions.",
	})

	SaveFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "model_save_failure_total",
		Help: "Aborted model save transactions, orphaned blobs may remain.",
	})

	LoadCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "model_load_total",
		Help: "Completed model load operations.",
	})

	LoadFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "model_load_failure_total",
		Help: "Failed model load operations.",
	})

	DeleteCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "model_delete_total",
		Help: "Completed model delete transactions.",
	})

	MetricsItems = []prometheus.Collector{
		SaveCounter,
		SaveFailureCounter,
		LoadCounter,
		LoadFailureCounter,
		DeleteCounter,
	}
)

const DefaultMetricsAddress = "0.0.0.0:9090"

type Metrics struct {
	httpAddress string
	registry    *prometheus.Registry
	httpServer  *http.Server
}

func NewMetrics(address string) *Metrics {
	if address == "" {
		address = DefaultMetricsAddress
	}
	return &Metrics{
		httpAddress: address,
		registry:    prometheus.NewRegistry(),
	}
}

func (m *Metrics) Start() {
	m.registry.MustRegister(MetricsItems...)
	go m.serve()
}

func (m *Metrics) serve() {
	router := mux.NewRouter()
	router.Path("/metrics").Handler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.httpServer = &http.Server{
		Addr:    m.httpAddress,
		Handler: router,
	}
	if err := m.httpServer.ListenAndServe(); err != nil {
		logging.Logger.Errorf("failed to listen and serve, err=%s", err.Error())
		panic(err)
	}
}
