package app

import (
	"os"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/notify"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() error {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	interval := a.appConfig.Store.PollInterval
	if interval <= 0 {
		interval = notify.DefaultPollInterval
	}
	if _, err := a.poller.Schedule(a.sched, notify.EverySpec(interval)); err != nil {
		return errors.Wrap(err, "schedule cache poller")
	}

	_, err = a.sched.AddFunc("@every 30s", func() {
		go guard("resource monitor", a.SchedResourceTask)
		go guard("collection size", a.SchedCollectionSizeTask)
	})
	if err != nil {
		return errors.Wrap(err, "schedule monitor jobs")
	}

	a.sched.Start()
	return nil
}

// guard runs a scheduled task and logs a panic instead of losing the cron goroutine
func guard(name string, task func()) {
	defer func() {
		if err := recover(); err != nil {
			zap.L().Error("scheduled task panic",
				zap.String("namespace", "job"), zap.String("task", name), zap.Any("error", err))
		}
	}()
	task()
}

// SchedResourceTask records host and process cpu/memory gauges, labelled by scope
func (a *Application) SchedResourceTask() {
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		metrics.SetGauge("yammi_cpuuse", int64(pct[0]*100), "scope", "host")
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		metrics.SetGauge("yammi_memuse", int64(vm.Used>>20), "scope", "host")
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	if pct, err := p.CPUPercent(); err == nil {
		metrics.SetGauge("yammi_cpuuse", int64(pct*100), "scope", "process")
	}
	if info, err := p.MemoryInfo(); err == nil {
		metrics.SetGauge("yammi_memuse", int64(info.RSS>>20), "scope", "process")
	}
}

// SchedCollectionSizeTask records the size of every collection held by the admin store
func (a *Application) SchedCollectionSizeTask() {
	for _, c := range domain.Collections {
		metrics.SetGauge("store_collection_size", int64(a.admin.Len(c)), "collection", string(c))
	}
	metrics.SetGauge("store_pending_registrations", int64(a.admin.PendingRegistrations()))
}
