// provisiond is the rootfs provisioner daemon entrypoint. It selects a
// backend for the host platform and runs provision/destroy operations
// requested over its command-line interface.
//
// In production this binary is invoked by the containerizer as a short-lived
// subprocess around each container's start and stop; there is no long-lived
// server loop beyond what's needed to honor cancellation cleanly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/mesos-agent/rootfsprovisioner/internal/provision"
	"github.com/mesos-agent/rootfsprovisioner/internal/provision/copybackend"
	"github.com/mesos-agent/rootfsprovisioner/internal/provision/wclayer"
	"github.com/mesos-agent/rootfsprovisioner/internal/provisionconfig"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	if err := run(os.Args[1:]); err != nil {
		slog.Error("provisiond failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: provisiond <provision|destroy> [flags] <rootfs> [layer ...]")
	}

	cfg := provisionconfig.DefaultConfig()
	cfg.ResolveBackend()

	fs := flag.NewFlagSet("provisiond", flag.ContinueOnError)
	backendName := fs.String("backend", cfg.Backend, "provisioning backend: copy or wclayer")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	cfg.Backend = *backendName

	if err := cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	backend, err := selectBackend(cfg)
	if err != nil {
		return err
	}

	slog.Info("provisiond starting", "os", runtime.GOOS, "backend", backend.Name())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	rest := fs.Args()
	switch args[0] {
	case "provision":
		return runProvision(ctx, backend, cfg, rest)
	case "destroy":
		return runDestroy(ctx, backend, cfg, rest)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runProvision(ctx context.Context, backend provision.Backend, cfg *provisionconfig.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: provisiond provision <rootfs> <layer> [layer ...]")
	}
	rootfs := args[0]
	layers := args[1:]

	slog.Info("provisioning", "rootfs", rootfs, "layers", len(layers))
	if err := backend.Provision(ctx, layers, rootfs, cfg.BackendDir); err != nil {
		return fmt.Errorf("provision: %w", err)
	}
	slog.Info("provisioned", "rootfs", rootfs)
	return nil
}

func runDestroy(ctx context.Context, backend provision.Backend, cfg *provisionconfig.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: provisiond destroy <rootfs>")
	}
	rootfs := args[0]

	slog.Info("destroying", "rootfs", rootfs)
	ok, err := backend.Destroy(ctx, rootfs, cfg.BackendDir)
	if err != nil {
		return fmt.Errorf("destroy: %w", err)
	}
	slog.Info("destroyed", "rootfs", rootfs, "ok", ok)
	return nil
}

func selectBackend(cfg *provisionconfig.Config) (provision.Backend, error) {
	switch cfg.Backend {
	case "copy":
		b := copybackend.New()
		b.CopyTool = cfg.CopyTool
		return b, nil
	case "wclayer":
		return wclayer.NewWithTool(cfg.WclayerTool), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}
