package http

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProxyPrefix is stripped from request paths before forwarding
const ProxyPrefix = "/api"

// NewDevProxy forwards /api/* to target with the /api prefix removed,
// so /api/process-instagram reaches <target>/process-instagram
func NewDevProxy(target string, logger *zap.Logger) (gin.HandlerFunc, error) {
	targetURL, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy target: %w", err)
	}
	if targetURL.Scheme == "" || targetURL.Host == "" {
		return nil, fmt.Errorf("invalid proxy target: %q", target)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("proxy")

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(targetURL)
			r.Out.URL.Path = singleJoin(targetURL.Path, StripPrefix(r.In.URL.Path))
			r.Out.URL.RawPath = ""
			r.Out.Host = targetURL.Host
			r.SetXForwarded()
		},
		ModifyResponse: func(resp *http.Response) error {
			logger.Info("proxy response",
				zap.String("path", resp.Request.URL.Path),
				zap.Int("status", resp.StatusCode))
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("proxy error", zap.String("path", r.URL.Path), zap.Error(err))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"detail":"Analysis service unavailable"}`)
		},
	}

	return func(c *gin.Context) {
		proxy.ServeHTTP(c.Writer, c.Request)
	}, nil
}

// StripPrefix removes a leading /api from path
func StripPrefix(path string) string {
	if path == ProxyPrefix {
		return "/"
	}
	if strings.HasPrefix(path, ProxyPrefix+"/") {
		return strings.TrimPrefix(path, ProxyPrefix)
	}
	return path
}

func singleJoin(base, path string) string {
	if base == "" || base == "/" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
