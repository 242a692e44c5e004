package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/travelbooking/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 5 * time.Second

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server

	grpcListener net.Listener
	httpListener net.Listener
}

// Run starts the HTTP API and the gRPC health server and blocks until ctx is
// canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	s, err := Listen(cfg, handler)
	if err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen binds both servers without serving yet.
func Listen(cfg *config.Config, handler http.Handler) (*Servers, error) {
	grpcLis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return nil, fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	httpLis, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		grpcLis.Close()
		return nil, fmt.Errorf("listen HTTP %s: %w", cfg.HTTP.Address, err)
	}

	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpcListener: grpcLis,
		httpListener: httpLis,
	}, nil
}

func (s *Servers) GRPCAddr() string { return s.grpcListener.Addr().String() }
func (s *Servers) HTTPAddr() string { return s.httpListener.Addr().String() }

func (s *Servers) Serve(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() { errCh <- s.grpcServer.Serve(s.grpcListener) }()
	go func() {
		if err := s.httpServer.Serve(s.httpListener); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	log.Printf("[SERVER] http=%s grpc=%s", s.HTTPAddr(), s.GRPCAddr())

	select {
	case err := <-errCh:
		s.health.Shutdown()
		s.grpcServer.Stop()
		_ = s.httpServer.Close()
		return err
	case <-ctx.Done():
		log.Printf("[SERVER] shutting down")
		s.health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.grpcServer.Stop()
			return fmt.Errorf("shutdown http server: %w", err)
		}
		s.grpcServer.GracefulStop()
		return nil
	}
}
