//go:build windows

// Package service provides Windows Service integration.
// When running as a Windows service, the agent enters the SCM control loop.
// When running from a terminal, it runs in the foreground.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/windows/svc"
)

// Name is the service name registered with the SCM.
const Name = "agemon"

// stopGrace bounds how long Execute waits for the agent loop to return.
const stopGrace = 5 * time.Second

// AgentService implements the Windows service interface (svc.Handler).
type AgentService struct {
	logger  *zap.Logger
	startFn func(ctx context.Context)
}

// New creates a new Windows service wrapper.
// The startFn is called with a cancellable context when the service starts.
func New(logger *zap.Logger, startFn func(ctx context.Context)) *AgentService {
	return &AgentService{
		logger:  logger,
		startFn: startFn,
	}
}

// IsWindowsService checks if the process is running as a Windows service.
func IsWindowsService() bool {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return false
	}
	return isService
}

// Run starts the Windows service control loop.
func (s *AgentService) Run() error {
	return svc.Run(Name, s)
}

// Execute implements svc.Handler. The agent loop runs until a stop or
// shutdown request cancels its context.
func (s *AgentService) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (ssec bool, errno uint32) {
	changes <- svc.Status{State: svc.StartPending}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.startFn(ctx)
	}()

	changes <- svc.Status{
		State:   svc.Running,
		Accepts: svc.AcceptStop | svc.AcceptShutdown,
	}
	s.logger.Info("Windows service started")

	for {
		select {
		case <-done:
			s.logger.Warn("Agent loop exited, stopping service")
			return false, 0
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				s.logger.Info("Windows service stopping")
				changes <- svc.Status{State: svc.StopPending}
				cancel()
				select {
				case <-done:
				case <-time.After(stopGrace):
					s.logger.Warn("Agent loop did not stop in time")
				}
				return false, 0
			default:
				s.logger.Warn("Unexpected service control request",
					zap.Uint32("cmd", uint32(c.Cmd)))
			}
		}
	}
}
