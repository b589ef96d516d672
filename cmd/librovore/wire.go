package librovore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/librovore/librovore/internal/config"
	"github.com/librovore/librovore/internal/detect"
	"github.com/librovore/librovore/internal/extension"
	"github.com/librovore/librovore/internal/httpcache"
	"github.com/librovore/librovore/internal/inventory"
	"github.com/librovore/librovore/internal/query"
	"github.com/librovore/librovore/internal/structure"
)

const defaultCacheDir = ".librovore-cache"

// setupLogger creates an slog logger writing to a dated debug file in
// cacheDir, matching the teacher's main.go logging shape (spec §6
// [AMBIENT] logging note).
func setupLogger(cacheDir string) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create cache dir: %w", err)
	}
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(cacheDir, fmt.Sprintf("debug-%s.txt", date))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), file, nil
}

// buildRuntime wires configuration -> caches -> registries -> detection
// system -> query.Runtime, per spec §9's stated initialization order.
func buildRuntime(cacheDir, configPath string) (*query.Runtime, *slog.Logger, func(), error) {
	logger, logFile, err := setupLogger(cacheDir)
	if err != nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		logFile = nil
	}
	closer := func() {
		if logFile != nil {
			logFile.Close()
		}
	}

	cfg, err := config.Load(config.Resolve(configPath))
	if err != nil {
		closer()
		return nil, nil, nil, err
	}

	proxy := httpcache.NewProxy(cfg.HTTPCacheConfig())

	invReg := inventory.NewRegistry()
	strReg := structure.NewRegistry()

	mgr := extension.New(filepath.Join(cacheDir, "extensions"), extension.NoInstaller{})
	if err := mgr.Load(context.Background(), cfg, proxy, invReg, strReg); err != nil {
		closer()
		return nil, nil, nil, err
	}
	for _, w := range mgr.Warnings() {
		logger.Warn("extension manager warning", "warning", w)
	}

	detectSystem := detect.NewSystem(invReg, strReg)
	runtime := query.NewRuntime(detectSystem, invReg, strReg)

	return runtime, logger, closer, nil
}
