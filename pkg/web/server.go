package web

import (
	"context"
	"crypto/tls"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"net"
	"net/http"
	"rtuslave/cmd/slave/config"
	"rtuslave/pkg/generic"
	"rtuslave/pkg/monitor"
)

type Server struct {
	*generic.Server
	*config.Config
}

func NewServer(router *gin.Engine, port string, config *config.Config) (*Server, error) {
	if len(port) == 0 {
		return nil, errors.New("status server port is empty")
	}
	server := &Server{
		Server: &generic.Server{
			Router: router,
			Port:   port,
		},
		Config: config,
	}

	server.InstallHandlers()

	return server, nil
}

func (s *Server) InstallHandlers() {
	v1 := s.Router.Group("/api/v1")
	monitor.InstallHandler(v1, s.Config.Slave)
}

// Serve starts listening in the background and returns the shutdown func.
func (s *Server) Serve() (func(ctx context.Context), error) {
	srv := &http.Server{
		Addr:    s.Addr(),
		Handler: s.Router,
	}
	if len(s.Config.CertFile) != 0 && len(s.Config.KeyFile) != 0 {
		x509KeyPair, err := tls.LoadX509KeyPair(s.Config.CertFile, s.Config.KeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "load status server key pair")
		}
		srv.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{x509KeyPair},
		}
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s", srv.Addr)
	}
	go func() {
		var err error
		if srv.TLSConfig != nil {
			err = srv.ServeTLS(ln, "", "")
		} else {
			err = srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.ErrorS(err, "Status server stopped", "addr", srv.Addr)
		}
	}()

	return func(ctx context.Context) {
		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(ctx); err != nil {
			klog.ErrorS(err, "Failed to shutdown status server")
		}
	}, nil
}
