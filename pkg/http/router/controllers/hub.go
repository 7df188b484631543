package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type wsRouteRequest struct {
	ID string `json:"id"`
	shortestPathRequest
}

// Session. one websocket connection. frames are read & written under mu so a reply never interleaves with a read.
type Session struct {
	id   string
	mu   sync.Mutex
	conn net.Conn
	hub  *Hub
}

func (s *Session) ID() string { return s.id }

// next. nil request (and nil error) for control frames.
func (s *Session) next() (*wsRouteRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hdr, r, err := wsutil.NextReader(s.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if hdr.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(s.conn, ws.StateServerSide)(hdr, r)
	}

	var req wsRouteRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, err
	}
	// rest of the payload (trailing whitespace) belongs to this frame
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Session) reply(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := wsutil.NewWriter(s.conn, ws.StateServerSide, ws.OpText)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return err
	}
	return w.Flush()
}

// RouteQuery. reads one route request frame & answers it. a non nil error means the connection is unusable.
func (s *Session) RouteQuery(ctx context.Context) error {
	req, err := s.next()
	if err != nil {
		s.conn.Close()
		return err
	}
	if req == nil {
		return nil
	}

	if err := s.hub.validator.Struct(req.shortestPathRequest); err != nil {
		return s.reply(withID(errorEnvelope(CODE_BAD_REQUEST, err.Error()), req.ID))
	}

	res, err := s.hub.routingService.ShortestPath(ctx, req.toQuery())
	if err != nil {
		_, code, message := classifyError(err)
		s.hub.log.Debug("websocket route query failed", zap.String("session", s.id),
			zap.String("request", req.ID), zap.Error(err))
		return s.reply(withID(errorEnvelope(code, message), req.ID))
	}
	return s.reply(withID(envelope{"data": NewShortestPathResponse(res)}, req.ID))
}

func withID(env envelope, id string) envelope {
	env["id"] = id
	return env
}

// Hub. registry of open websocket sessions, all sharing one routing service.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session

	routingService RoutingService
	validator      *requestValidator
	log            *zap.Logger
}

func NewHub(routingService RoutingService, log *zap.Logger) *Hub {
	return &Hub{
		sessions:       make(map[string]*Session),
		routingService: routingService,
		validator:      newRequestValidator(),
		log:            log,
	}
}

func (h *Hub) Register(conn net.Conn) *Session {
	s := &Session{id: uuid.NewString(), conn: conn, hub: h}
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	return s
}

// Remove. closes the connection, safe to call more than once.
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s.id]
	delete(h.sessions, s.id)
	h.mu.Unlock()
	if ok {
		s.conn.Close()
	}
}

func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.conn.Close()
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
