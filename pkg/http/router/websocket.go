package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/lintang-b-s/osmrouter/pkg/concurrent"
	"github.com/lintang-b-s/osmrouter/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/osmrouter/pkg/http/server"
	"github.com/mailru/easygo/netpoll"
	"go.uber.org/zap"
)

const (
	WS_POOL_SIZE  = 64
	WS_POOL_QUEUE = 16

	wsAcceptBackoff = 5 * time.Millisecond
)

// handleWebsocket. serves route queries over websocket on config.WebsocketPort until ctx is done.
func (api *API) handleWebsocket(ctx context.Context, config http_server.Config,
	routingService controllers.RoutingService) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", config.WebsocketPort))
	if err != nil {
		return err
	}
	defer ln.Close()

	if api.poller, err = netpoll.New(nil); err != nil {
		return err
	}
	lnDesc, err := netpoll.HandleListener(ln, netpoll.EventRead|netpoll.EventOneShot)
	if err != nil {
		return err
	}

	api.pool = concurrent.NewGoroutinePool(WS_POOL_SIZE, WS_POOL_QUEUE)
	api.pool.Spawn(WS_POOL_QUEUE)
	api.hub = controllers.NewHub(routingService, api.log)

	if err := api.poller.Start(lnDesc, api.onAcceptable(ctx, ln, lnDesc)); err != nil {
		api.pool.Close()
		return err
	}
	api.log.Info("route query websocket API started", zap.Int("port", config.WebsocketPort))

	<-ctx.Done()

	api.poller.Stop(lnDesc)
	api.hub.CloseAll()
	api.pool.Close()
	api.log.Info("websocket server stopped")
	return nil
}

// onAcceptable. the listener is registered one shot, every event accepts exactly one connection then re-arms.
func (api *API) onAcceptable(ctx context.Context, ln net.Listener, lnDesc *netpoll.Desc) func(netpoll.Event) {
	return func(netpoll.Event) {
		defer api.poller.Resume(lnDesc)

		accepted := make(chan error, 1)
		err := api.pool.ScheduleTimeout(time.Millisecond, func() {
			conn, err := ln.Accept()
			accepted <- err
			if err == nil {
				api.serveConn(ctx, conn)
			}
		})
		if err == nil {
			err = <-accepted
		}
		if err == nil {
			return
		}

		var ne net.Error
		switch {
		case errors.Is(err, concurrent.ErrPoolClosed), errors.Is(err, net.ErrClosed):
		case errors.Is(err, concurrent.ErrScheduleTimeout), errors.As(err, &ne) && ne.Timeout():
			// pool penuh
			api.log.Info("accept error, backing off", zap.Error(err), zap.Duration("delay", wsAcceptBackoff))
			time.Sleep(wsAcceptBackoff)
		default:
			api.log.Error("accept error", zap.Error(err))
		}
	}
}

/*
serveConn. upgrade the connection & hand it to the poller.
the read descriptor is one shot: a readable event answers one frame, then the descriptor is re-armed,
so frames that arrived together fire again instead of waiting in the socket buffer.
ref: https://sergey.kamardin.org/articles/million-websocket-and-go/
*/
func (api *API) serveConn(ctx context.Context, conn net.Conn) {
	peer := conn.RemoteAddr().String()

	hs, err := ws.Upgrade(conn)
	if err != nil {
		api.log.Info("websocket upgrade error", zap.String("peer", peer), zap.Error(err))
		conn.Close()
		return
	}

	session := api.hub.Register(conn)
	log := api.log.With(zap.String("peer", peer), zap.String("session", session.ID()))
	log.Info("websocket session opened", zap.String("protocol", hs.Protocol))

	desc, err := netpoll.HandleReadOnce(conn)
	if err != nil {
		log.Error("cannot watch websocket connection", zap.Error(err))
		api.hub.Remove(session)
		return
	}

	var closeOnce sync.Once
	closeSession := func(reason error) {
		closeOnce.Do(func() {
			api.poller.Stop(desc)
			api.hub.Remove(session)
			log.Info("websocket session closed", zap.Error(reason))
		})
	}

	err = api.poller.Start(desc, func(ev netpoll.Event) {
		if ev&(netpoll.EventReadHup|netpoll.EventHup) != 0 {
			closeSession(io.EOF)
			return
		}
		if err := api.pool.Schedule(func() {
			if err := session.RouteQuery(ctx); err != nil {
				closeSession(err)
				return
			}
			if err := api.poller.Resume(desc); err != nil {
				closeSession(err)
			}
		}); err != nil {
			closeSession(err)
		}
	})
	if err != nil {
		log.Error("cannot watch websocket connection", zap.Error(err))
		api.hub.Remove(session)
	}
}
