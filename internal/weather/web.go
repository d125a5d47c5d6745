// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package weather

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"weathercore/pkg/logger"
)

// Handler adapts a Proxy to http.Handler. It exposes:
//   - GET /             -> HTML dashboard
//   - GET /api/snapshot -> JSON snapshot
//   - GET /live         -> websocket push of the snapshot on a short interval
//
// This is an adapter object per §9's "model the middleware interface as an
// adapter object that holds a reference to the Proxy rather than inheriting
// from Proxy" — the same shape the logging collaborator already uses for
// its own web surface.
type Handler struct {
	proxy    *Proxy
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewHandler constructs a Handler bound to proxy.
func NewHandler(proxy *Proxy) *Handler {
	return &Handler{
		proxy: proxy,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: logger.New("WeatherWeb"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "", "/":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dashboardHTML))
	case "/api/snapshot":
		h.serveSnapshot(w, r)
	case "/live":
		h.serveLive(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.proxy.Snapshot()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "lock timeout"})
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(snap)
}

// serveLive upgrades the connection and pushes the current snapshot
// immediately, then a fresh Snapshot() every 5 seconds, whether or not a
// fetch has installed new data in between. It never reads from the client beyond the handshake.
func (h *Handler) serveLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	if snap, ok := h.proxy.Snapshot(); ok {
		if err := conn.WriteJSON(snap); err != nil {
			return
		}
	}

	ctx := r.Context()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, ok := h.proxy.Snapshot()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}

var dashboardHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8" />
<title>Weather</title>
<style>
body { font-family: system-ui, -apple-system, "Segoe UI", Roboto, "Helvetica Neue", Arial; padding: 24px }
.container { max-width: 700px; margin: 0 auto }
.card { border-radius: 8px; padding: 16px; box-shadow: 0 2px 6px rgba(0,0,0,0.08) }
dt { font-weight: 600 }
</style>
</head>
<body>
<div class="container">
<h1>Current Weather</h1>
<div class="card">
<dl id="fields"></dl>
</div>
</div>
<script>
function render(snap) {
  const dl = document.getElementById('fields');
  dl.innerHTML = '';
  for (const [k, v] of Object.entries(snap)) {
    if (v === null) continue;
    const dt = document.createElement('dt');
    dt.textContent = k;
    const dd = document.createElement('dd');
    dd.textContent = typeof v === 'object' ? JSON.stringify(v) : v;
    dl.appendChild(dt);
    dl.appendChild(dd);
  }
}

async function poll() {
  const res = await fetch('api/snapshot');
  if (res.ok) render(await res.json());
}

poll();
setInterval(poll, 30_000);
</script>
</body>
</html>`
