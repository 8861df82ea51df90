package rest

import (
	"fmt"
	"listing-web/internal/contextkeys"
	"listing-web/internal/core/port"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// CreateProxy создает обратный прокси на targetURL, добавляя pathPrefix к пути запроса.
// X-Trace-ID и X-User-ID пробрасываются из контекста.
func CreateProxy(targetURL, pathPrefix string) (http.Handler, error) {
	target, err := url.Parse(targetURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid proxy target URL %q", targetURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)

	proxy.Director = func(req *http.Request) {
		req.URL.Scheme = target.Scheme
		req.URL.Host = target.Host
		req.Host = target.Host

		// query-параметры лежат в RawQuery и не меняются
		req.URL.Path = target.Path + pathPrefix + req.URL.Path

		if traceID := contextkeys.TraceIDFromContext(req.Context()); traceID != "" {
			req.Header.Set(traceHeader, traceID)
		}
		if userID := contextkeys.UserIDFromContext(req.Context()); userID != "" {
			req.Header.Set("X-User-ID", userID)
		} else {
			req.Header.Del("X-User-ID")
		}
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		contextkeys.LoggerFromContext(r.Context()).Error("Proxy request failed", err, port.Fields{
			"component": "PropertyAPIProxy",
			"target":    target.Host,
		})
		WriteJSONError(w, http.StatusBadGateway, "property service is unavailable")
	}

	return proxy, nil
}
