package relay

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gatekey/internal/crypto"
	"gatekey/internal/domain"
	"gatekey/internal/failure"
	"gatekey/internal/logger"
	"gatekey/internal/network"
	"gatekey/internal/network/node"
	"gatekey/internal/services/gateway"
)

// Server hosts the node API, the relay API and PKP issuance.
type Server struct {
	network     domain.KeyNetwork
	gateway     *gateway.Service
	pkp         domain.PKPIssuer
	networkName string
	log         *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithPKPIssuer enables POST /pkp/authenticate.
func WithPKPIssuer(i domain.PKPIssuer) ServerOption { return func(s *Server) { s.pkp = i } }

// WithNetworkName sets the name reported by the handshake.
func WithNetworkName(name string) ServerOption { return func(s *Server) { s.networkName = name } }

// WithServerLogger sets the access and error logger. The default discards.
func WithServerLogger(l *slog.Logger) ServerOption { return func(s *Server) { s.log = l } }

// NewServer serves net on the node API and gw on the relay API. gw must be
// a local gateway over the same network.
func NewServer(net domain.KeyNetwork, gw *gateway.Service, opts ...ServerOption) (*Server, error) {
	const op = "relay.NewServer"

	if net == nil || gw == nil {
		return nil, failure.New(failure.InvalidInput, op, "key network and gateway are required")
	}
	if gw.Mode() != gateway.ModeLocal {
		return nil, failure.New(failure.InvalidInput, op, "relay gateway must run in local mode")
	}
	s := &Server{network: net, gateway: gw, networkName: "gatekey-dev", log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get(PathHealth, func(w http.ResponseWriter, _ *http.Request) {
		network.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get(node.PathHandshake, s.handshake)
	r.Post(node.PathSave, s.saveKey)
	r.Post(node.PathGet, s.getKey)

	r.Post(PathEncrypt, s.encrypt)
	r.Post(PathDecrypt, s.decrypt)
	if s.pkp != nil {
		r.Post(PathPKPAuth, s.authenticate)
	}
	return r
}

type readiness interface{ Ready() bool }

func (s *Server) handshake(w http.ResponseWriter, r *http.Request) {
	ready := true
	if rd, ok := s.network.(readiness); ok {
		ready = rd.Ready()
	}
	if !ready {
		if err := s.network.Connect(r.Context()); err == nil {
			ready = true
		}
	}
	network.WriteJSON(w, http.StatusOK, node.Handshake{Ready: ready, Network: s.networkName})
}

func (s *Server) saveKey(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveKeyRequest
	if err := network.DecodeJSON(w, r, &req); err != nil {
		network.WriteError(w, err)
		return
	}
	wrapped, err := s.network.SaveEncryptionKey(r.Context(), req)
	if err != nil {
		network.WriteError(w, err)
		return
	}
	network.WriteJSON(w, http.StatusOK, node.SaveResponse{EncryptedSymmetricKey: crypto.Hex(wrapped)})
}

func (s *Server) getKey(w http.ResponseWriter, r *http.Request) {
	var req domain.GetKeyRequest
	if err := network.DecodeJSON(w, r, &req); err != nil {
		network.WriteError(w, err)
		return
	}
	key, err := s.network.GetEncryptionKey(r.Context(), req)
	if err != nil {
		network.WriteError(w, err)
		return
	}
	network.WriteJSON(w, http.StatusOK, node.GetResponse{SymmetricKey: key})
	crypto.Wipe(key)
}

func (s *Server) encrypt(w http.ResponseWriter, r *http.Request) {
	var req EncryptRequest
	if err := network.DecodeJSON(w, r, &req); err != nil {
		network.WriteError(w, err)
		return
	}
	payload, err := s.gateway.Encrypt(r.Context(), req.Plaintext(), req.Forest)
	if err != nil {
		network.WriteError(w, err)
		return
	}
	network.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) decrypt(w http.ResponseWriter, r *http.Request) {
	const op = "relay.decrypt"

	var req DecryptRequest
	if err := network.DecodeJSON(w, r, &req); err != nil {
		network.WriteError(w, err)
		return
	}
	family, ok := domain.ParseFamily(req.Chain)
	if !ok {
		network.WriteError(w, failure.New(failure.InvalidInput, op, "unsupported chain "+req.Chain))
		return
	}
	if req.EncryptedContent.Family() != family {
		network.WriteError(w, failure.New(failure.NotGatedForChain, op, "content was never gated for "+req.Chain))
		return
	}
	pt, err := s.gateway.DecryptContent(r.Context(), req.EncryptedContent, req.AuthSig, family)
	if err != nil {
		network.WriteError(w, err)
		return
	}
	network.WriteJSON(w, http.StatusOK, NewDecryptResponse(pt))
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	var req domain.OAuthRequest
	if err := network.DecodeJSON(w, r, &req); err != nil {
		network.WriteError(w, err)
		return
	}
	resp, err := s.pkp.Authenticate(r.Context(), req)
	if err != nil {
		network.WriteError(w, err)
		return
	}
	network.WriteJSON(w, http.StatusOK, resp)
}

// accessLog records one structured line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.log.LogAttrs(r.Context(), level, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			logger.Elapsed(start),
		)
	})
}
