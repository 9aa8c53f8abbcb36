package main

import (
	"context"
	"fmt"
	"os"

	"github.com/core-tools/hsu-sentinel/pkg/config"
	"github.com/core-tools/hsu-sentinel/pkg/logging"
	"github.com/core-tools/hsu-sentinel/pkg/notify"
	"github.com/core-tools/hsu-sentinel/pkg/probe"
	"github.com/core-tools/hsu-sentinel/pkg/procmgr"
	"github.com/core-tools/hsu-sentinel/pkg/recovery"
	"github.com/core-tools/hsu-sentinel/pkg/supervisor"
	"github.com/core-tools/hsu-sentinel/pkg/warmup"

	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	Config string `long:"config" short:"c" description:"path to configuration file" required:"true"`
}

func logPrefix(component string) string {
	return fmt.Sprintf("component: %s , ", component)
}

func componentLogger(base logging.Logger, component string) logging.Logger {
	return logging.NewLogger(logPrefix(component), logging.LogFuncs{
		Debugf: base.Debugf,
		Infof:  base.Infof,
		Warnf:  base.Warnf,
		Errorf: base.Errorf,
	})
}

func main() {
	var opts flagOptions
	parser := flags.NewParser(&opts, flags.HelpFlag)
	parser.Usage = "[check|warmup] --config <file>"

	remaining, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		os.Exit(1)
	}

	mode := "check"
	if len(remaining) > 0 {
		mode = remaining[0]
	}
	if mode != "check" && mode != "warmup" {
		fmt.Printf("Unknown mode: %s (expected check or warmup)\n", mode)
		os.Exit(1)
	}

	cfg, err := config.LoadConfigFromFile(opts.Config)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewZapLogger(logging.ZapConfig{
		Level: cfg.LogLevel,
		Tag:   "hsu-sentinel",
	})
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	logger.Infof("Starting, mode: %s, service: %s, unit: %s", mode, cfg.Service.Name, cfg.Service.Unit)

	manager := procmgr.NewSystemdManager(procmgr.SystemdManagerOptions{
		UserUnit: cfg.UserUnit,
	}, nil, componentLogger(logger, "procmgr"))
	probes := probe.NewClient(manager, componentLogger(logger, "probe"))

	ctx := context.Background()

	switch mode {
	case "check":
		actuator := recovery.NewActuator(manager, probes, cfg.Policy, componentLogger(logger, "recovery"))
		notifier := notify.NewNotifier(cfg.Notify, componentLogger(logger, "notify"))
		sup := supervisor.NewSupervisor(cfg.Service, cfg.Policy, probes, actuator, notifier,
			componentLogger(logger, "supervisor"))

		outcome := sup.Run(ctx)
		os.Exit(outcome.ExitCode())

	case "warmup":
		w := warmup.NewWarmup(cfg.Service, cfg.Policy, probes, componentLogger(logger, "warmup"))
		if w.Run(ctx) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
