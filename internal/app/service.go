package app

import (
	"context"
	"errors"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

// Service 可独立启动/停止的服务单元
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 服务运行器
// 任一服务退出或收到信号即按注册顺序停止全部服务
type Runner struct {
	services []Service
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// Services 已注册的服务
func (r *Runner) Services() []Service {
	if r == nil {
		return nil
	}
	return r.services
}

// RunWithOptions 运行服务并处理系统信号
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

type serviceExit struct {
	name string
	err  error
}

// Run 启动并监听服务
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan serviceExit, len(r.services))
	for _, svc := range r.services {
		if svc == nil {
			exits <- serviceExit{name: "unknown", err: errors.New("service is nil")}
			continue
		}
		go func(service Service) {
			log.Infow("service_start", "service", service.Name())
			err := service.Start(ctx)
			log.Infow("service_exit", "service", service.Name(), "error", err)
			exits <- serviceExit{name: service.Name(), err: err}
		}(svc)
	}

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case exit := <-exits:
		runErr = exit.err
		if runErr == nil {
			log.Warnw("service_stopped_unexpectedly", "service", exit.name)
		}
	}

	cancel()
	if stopTimeout <= 0 {
		stopTimeout = 15 * time.Second
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()

	var stopErrs []error
	for _, svc := range r.services {
		if svc == nil {
			continue
		}
		if err := svc.Stop(stopCtx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
			stopErrs = append(stopErrs, err)
		}
	}
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}
	return errors.Join(stopErrs...)
}
