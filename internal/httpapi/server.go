package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sharingd/internal/registry"
	"sharingd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	IsSharingSupported() (bool, error)
	IsSharing() (bool, error)
	StartSharing(t types.SharingIfaceType) error
	StopSharing(t types.SharingIfaceType) error
	GetStatsRxBytes() (int32, error)
	GetStatsTxBytes() (int32, error)
	GetStatsTotalBytes() (int32, error)
	GetSharingIfaces(state types.SharingIfaceState) ([]string, error)
	GetSharingState(t types.SharingIfaceType) (types.SharingIfaceState, error)
	GetSharableRegexes(t types.SharingIfaceType) ([]string, error)
	On(kind types.EventKind, h registry.Handle, cb registry.Callback) error
	Off(kind types.EventKind, h *registry.Handle) error
	Observers(kind types.EventKind) int
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ok, err := svc.IsSharingSupported(); err == nil && ok {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
	})

	r.Route("/sharing", func(r chi.Router) {
		r.Get("/status", statusHandler(svc))
		r.Get("/stats", statsHandler(svc))
		r.Get("/ifaces", ifacesHandler(svc))
		r.Route("/{type}", func(r chi.Router) {
			r.Get("/state", stateHandler(svc))
			r.Get("/regexes", regexesHandler(svc))
			r.Post("/start", startStopHandler("start", svc.StartSharing))
			r.Post("/stop", startStopHandler("stop", svc.StopSharing))
		})
	})

	r.Get("/events", eventsHandler(svc))

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "X-Log-Level", "X-Request-Id"}
	}
	return cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		MaxAge:         300,
	}
}

// statusHandler godoc
// @Summary  Sharing status
// @Tags     sharing
// @Produce  json
// @Success  200 {object} types.StatusResponse
// @Failure  502 {object} types.ErrorResponse
// @Router   /sharing/status [get]
func statusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supported, err := svc.IsSharingSupported()
		if err != nil {
			writeError(w, err)
			return
		}
		sharing, err := svc.IsSharing()
		if err != nil {
			writeError(w, err)
			return
		}
		resp := types.StatusResponse{
			Supported: supported,
			Sharing:   sharing,
			States:    make(map[string]types.SharingIfaceState),
			Observers: make(map[string]int),
		}
		for _, t := range types.AllSharingIfaceTypes() {
			// Disabled link types report an error; they are left out.
			if st, err := svc.GetSharingState(t); err == nil {
				resp.States[t.String()] = st
			}
		}
		for _, k := range types.AllEventKinds() {
			resp.Observers[k.String()] = svc.Observers(k)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// statsHandler godoc
// @Summary  Shared traffic in KB
// @Tags     sharing
// @Produce  json
// @Success  200 {object} types.StatsResponse
// @Router   /sharing/stats [get]
func statsHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp types.StatsResponse
		var err error
		if resp.RxBytes, err = svc.GetStatsRxBytes(); err != nil {
			writeError(w, err)
			return
		}
		if resp.TxBytes, err = svc.GetStatsTxBytes(); err != nil {
			writeError(w, err)
			return
		}
		if resp.TotalBytes, err = svc.GetStatsTotalBytes(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ifacesHandler godoc
// @Summary  Interfaces in a given state
// @Tags     sharing
// @Produce  json
// @Param    state query string true "serving, can-serve or error"
// @Success  200 {object} types.IfacesResponse
// @Failure  400 {object} types.ErrorResponse
// @Router   /sharing/ifaces [get]
func ifacesHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := types.ParseSharingIfaceState(r.URL.Query().Get("state"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		ifaces, err := svc.GetSharingIfaces(state)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.IfacesResponse{State: state, Ifaces: ifaces})
	}
}

func pathType(w http.ResponseWriter, r *http.Request) (types.SharingIfaceType, bool) {
	t, err := types.ParseSharingIfaceType(chi.URLParam(r, "type"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return t, true
}

// stateHandler godoc
// @Summary  Interface state of a link type
// @Tags     sharing
// @Produce  json
// @Param    type path string true "wifi, usb or bluetooth"
// @Success  200 {object} types.StateResponse
// @Router   /sharing/{type}/state [get]
func stateHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := pathType(w, r)
		if !ok {
			return
		}
		st, err := svc.GetSharingState(t)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.StateResponse{Type: t, State: st})
	}
}

// regexesHandler godoc
// @Summary  Sharable interface name patterns
// @Tags     sharing
// @Produce  json
// @Param    type path string true "wifi, usb or bluetooth"
// @Success  200 {object} types.RegexesResponse
// @Router   /sharing/{type}/regexes [get]
func regexesHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := pathType(w, r)
		if !ok {
			return
		}
		re, err := svc.GetSharableRegexes(t)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.RegexesResponse{Type: t, Regexes: re})
	}
}

// startStopHandler godoc
// @Summary  Start or stop sharing over a link type
// @Tags     sharing
// @Produce  json
// @Param    type path string true "wifi, usb or bluetooth"
// @Success  200 {object} types.StartStopResponse
// @Failure  400 {object} types.ErrorResponse
// @Failure  502 {object} types.ErrorResponse
// @Failure  503 {object} types.ErrorResponse
// @Router   /sharing/{type}/start [post]
// @Router   /sharing/{type}/stop [post]
func startStopHandler(op string, call func(types.SharingIfaceType) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := pathType(w, r)
		if !ok {
			return
		}
		lvl := requestLogLevel(r)
		start := time.Now()
		logStart(r, lvl, op+" "+t.String())
		if err := call(t); err != nil {
			status := writeError(w, err)
			logEnd(r, lvl, op, status, start, err)
			return
		}
		writeJSON(w, http.StatusOK, types.StartStopResponse{Type: t, Code: types.CodeSuccess})
		logEnd(r, lvl, op, http.StatusOK, start, nil)
	}
}
