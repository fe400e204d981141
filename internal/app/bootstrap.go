package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sixpine/internal/config"
	"github.com/sixpine/internal/provider"
	"github.com/sixpine/internal/router"
	"github.com/sixpine/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !ValidMode(mode) {
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}

	container := provider.NewContainer(cfg)
	if err := container.AuthService.EnsureDefaultAdmin(); err != nil {
		container.Close()
		return nil, fmt.Errorf("ensure default admin: %w", err)
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Host+":"+cfg.Server.Port, engine))
	}

	// 初始化 Worker 服务（退款请求、状态通知、订单事件投递）
	if mode == ModeAll || mode == ModeWorker {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			if mode == ModeWorker {
				container.Close()
				return nil, err
			}
			// all 模式下队列未启用时仅提供 API，异步任务不会被投递
		} else {
			services = append(services, workerService)
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	services = append(services, newCloserService("container", func(context.Context) error {
		container.Close()
		return nil
	}))
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Host+":"+opts.Config.Server.Port,
		"mode", opts.Mode,
		"queue_enabled", opts.Config.Queue.Enabled,
		"events_enabled", opts.Config.Events.Enabled(),
	)
	return RunWithOptions(runner, opts)
}

// closerService 不监听任何端口，只在停止阶段释放资源
type closerService struct {
	name  string
	close func(ctx context.Context) error
}

func newCloserService(name string, closeFn func(ctx context.Context) error) *closerService {
	return &closerService{name: name, close: closeFn}
}

func (s *closerService) Name() string {
	return s.name
}

func (s *closerService) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s *closerService) Stop(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
