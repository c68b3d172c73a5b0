package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"evmwallet/pkg/logging"
	"evmwallet/pkg/models"
	"evmwallet/pkg/wallet"
	"evmwallet/pkg/watcher"

	"github.com/gorilla/websocket"
)

// The zero CheckOrigin rejects cross-origin upgrades.
var upgrader = websocket.Upgrader{}

// maxBodyBytes bounds request bodies on write endpoints.
const maxBodyBytes = 64 << 10

type Server struct {
	wallet  *wallet.Wallet
	watcher *watcher.Watcher
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	mux     *http.ServeMux
}

func NewServer(wl *wallet.Wallet, w *watcher.Watcher) *Server {
	s := &Server{
		wallet:  wl,
		watcher: w,
		clients: make(map[*websocket.Conn]bool),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/balances", s.handleBalances)
	s.mux.HandleFunc("POST /api/refresh", guardWrite(s.handleRefresh))
	s.mux.HandleFunc("GET /api/lookup", s.handleLookup)
	s.mux.HandleFunc("POST /api/send", guardWrite(s.handleSend))
	s.mux.HandleFunc("/ws", s.handleWS)
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start serves on host:port until the listener fails.
func (s *Server) Start(host string, port int) error {
	go s.listenToWatcher()

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logging.Infof("API server listening on %s", addr)
	return srv.ListenAndServe()
}

// guardWrite rejects cross-origin requests and non-JSON bodies, and bounds
// the body read by next.
func guardWrite(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !sameOrigin(r) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "cross-origin request rejected"})
			return
		}
		if r.ContentLength != 0 || r.Header.Get("Content-Type") != "" {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "content type must be application/json"})
				return
			}
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next(w, r)
	}
}

// sameOrigin allows requests without an Origin header (CLI clients) and
// requests whose Origin host matches the Host header.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host != "" && u.Host == r.Host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps wallet errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrUnknownAsset):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSubmission), errors.Is(err, models.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wallet.State().Public())
}

// handleBalances serves the cached report for the current selection, or
// refreshes when there is none.
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	if report, ok := s.wallet.Book.Latest(s.wallet.State()); ok {
		writeJSON(w, http.StatusOK, report)
		return
	}
	s.handleRefresh(w, r)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	report, applied, err := s.wallet.RefreshActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if applied {
		s.watcher.Notify(watcher.Event{Type: watcher.EventBalancesUpdated, Data: report})
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	res, err := s.wallet.Lookup(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type sendRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
	Asset  string `json:"asset"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
			return
		}
		writeError(w, &models.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	if req.Asset == "" {
		req.Asset = models.NativeAsset
	}
	rec, err := s.wallet.Send(r.Context(), req.To, req.Amount, req.Asset)
	if err != nil {
		writeError(w, err)
		return
	}
	s.watcher.Notify(watcher.Event{Type: watcher.EventStateChanged, Data: rec})
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	// Send initial state
	initial := map[string]interface{}{
		"type": "initial",
		"data": s.wallet.State().Public(),
	}
	s.mu.Lock()
	_ = conn.WriteJSON(initial)
	s.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) listenToWatcher() {
	sub := s.watcher.Subscribe()
	defer s.watcher.Unsubscribe(sub)

	for event := range sub {
		s.broadcast(event)
	}
}

func (s *Server) broadcast(event watcher.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(event); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}
