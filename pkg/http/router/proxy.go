package router

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"
)

// upstream. forwards /ws to the netpoll websocket listener. ReverseProxy switches to a raw byte copy after the 101 upgrade.
func (api *API) upstream(name string, target *url.URL) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		api.log.Error("upstream error", zap.String("upstream", name), zap.String("target", target.String()),
			zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
	}
	return proxy
}
