package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sharingd/internal/registry"
	"sharingd/pkg/types"
)

var errStreamFull = errors.New("event stream queue full")

// serverBaseCtx is a process-level context that can be canceled on shutdown.
// Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context that is canceled when either a or b is done.
// The returned cancel func must be called to release the goroutine when handler ends.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// parseKinds reads a comma separated list of event names. Empty means all.
func parseKinds(s string) ([]types.EventKind, error) {
	if strings.TrimSpace(s) == "" {
		return types.AllEventKinds(), nil
	}
	var out []types.EventKind
	seen := make(map[types.EventKind]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := types.ParseEventKind(part)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

type heartbeat struct {
	Event string `json:"event"`
	Time  int64  `json:"ts"`
}

// eventsHandler godoc
// @Summary  Stream sharing notifications as NDJSON
// @Tags     events
// @Produce  application/x-ndjson
// @Param    kinds query string false "comma separated event names; all when empty"
// @Success  200 {object} types.SharingEvent
// @Failure  400 {object} types.ErrorResponse
// @Router   /events [get]
func eventsHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kinds, err := parseKinds(r.URL.Query().Get("kinds"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Code: types.CodeInternalError, Message: "streaming unsupported"})
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		h := registry.NewHandle("http:"+uuid.NewString(), "events")
		ch := make(chan types.SharingEvent, streamBuffer)
		cb := func(ev types.SharingEvent) error {
			select {
			case ch <- ev:
				return nil
			default:
				incrementStreamDrops("slow_client")
				return errStreamFull
			}
		}

		var registered []types.EventKind
		defer func() {
			for _, k := range registered {
				if err := svc.Off(k, &h); err != nil {
					if zlog != nil {
						zlog.Error().Err(err).Str("handle", h.String()).Str("event", k.String()).Msg("stream unregister failed")
					} else {
						log.Printf("stream unregister failed handle=%s event=%s err=%v", h, k, err)
					}
				}
			}
		}()
		for _, k := range kinds {
			if err := svc.On(k, h, cb); err != nil {
				status := writeError(w, err)
				logEnd(r, lvl, "events", status, start, err)
				return
			}
			registered = append(registered, k)
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		streamClients.Inc()
		defer streamClients.Dec()
		logStart(r, lvl, "events")

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()

		writer := io.Writer(w)
		if lvl >= LevelDebug {
			writer = io.MultiWriter(w, &loggingLineWriter{})
		}
		enc := json.NewEncoder(writer)

		var tick <-chan time.Time
		if streamHeartbeat > 0 {
			t := time.NewTicker(streamHeartbeat)
			defer t.Stop()
			tick = t.C
		}
		for {
			select {
			case <-ctx.Done():
				logEnd(r, lvl, "events", http.StatusOK, start, nil)
				return
			case ev := <-ch:
				if err := enc.Encode(ev); err != nil {
					incrementStreamDrops("write_error")
					logEnd(r, lvl, "events", http.StatusOK, start, err)
					return
				}
				flusher.Flush()
			case now := <-tick:
				if err := enc.Encode(heartbeat{Event: "heartbeat", Time: now.Unix()}); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
