// Package grpcserver runs the gRPC side of the service: health checks and
// reflection for operators.
package grpcserver

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Server struct {
	server *grpc.Server
	health *health.Server
	addr   string
}

func New(host, port string, opts ...grpc.ServerOption) *Server {
	s := &Server{
		server: grpc.NewServer(opts...),
		health: health.NewServer(),
		addr:   net.JoinHostPort(host, port),
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	return s
}

// Register exposes the underlying server for service registration.
func (s *Server) Register() grpc.ServiceRegistrar {
	return s.server
}

// SetServing flips the overall and the named services' health status.
func (s *Server) SetServing(serving bool, services ...string) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	for _, name := range services {
		s.health.SetServingStatus(name, status)
	}
}

func (s *Server) Addr() string {
	return s.addr
}

// Serve blocks until Stop.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpcserver - Serve - net.Listen: %w", err)
	}
	return s.serve(lis)
}

func (s *Server) serve(lis net.Listener) error {
	if err := s.server.Serve(lis); err != nil {
		return fmt.Errorf("grpcserver - Serve: %w", err)
	}
	return nil
}

// Stop marks the server as not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
