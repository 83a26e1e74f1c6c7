// Package scheduler 提供定时任务调度
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// 单次任务最长执行时间
const taskTimeout = 5 * time.Minute

// Scheduler 定时任务调度器
type Scheduler struct {
	cron   *cron.Cron
	tasks  []*Task
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

// Task 定时任务
type Task struct {
	Name    string
	Spec    string
	Handler func(ctx context.Context) error
}

// NewScheduler 创建调度器，cron 表达式按 loc 时区解析
func NewScheduler(loc *time.Location, log *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		tasks:  make([]*Task, 0),
		ctx:    ctx,
		cancel: cancel,
		log:    log.Named("scheduler"),
	}
}

// AddTask 添加任务，spec 支持标准 cron 表达式和 @every 写法
func (s *Scheduler) AddTask(name, spec string, handler func(ctx context.Context) error) error {
	task := &Task{Name: name, Spec: spec, Handler: handler}
	if _, err := s.cron.AddFunc(spec, func() { s.executeTask(task) }); err != nil {
		return fmt.Errorf("invalid spec %q for task %s: %w", spec, name, err)
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Tasks 已注册的任务
func (s *Scheduler) Tasks() []*Task {
	return s.tasks
}

// Start 启动调度器
func (s *Scheduler) Start() {
	s.log.Info("starting", zap.Int("tasks", len(s.tasks)))
	for _, task := range s.tasks {
		s.log.Info("task scheduled", zap.String("task", task.Name), zap.String("spec", task.Spec))
	}
	s.cron.Start()
}

// Stop 停止调度器，等待正在执行的任务结束
func (s *Scheduler) Stop() {
	s.log.Info("stopping")
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("stopped")
}

// executeTask 执行任务
func (s *Scheduler) executeTask(task *Task) {
	ctx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("task panicked", zap.String("task", task.Name), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := task.Handler(ctx); err != nil {
		s.log.Error("task failed", zap.String("task", task.Name), zap.Error(err))
		return
	}
	s.log.Debug("task completed", zap.String("task", task.Name), zap.Duration("elapsed", time.Since(start)))
}
