package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"nearshare/internal/config"
	"nearshare/internal/discovery"
	"nearshare/internal/eventbus"
	"nearshare/internal/history"
	"nearshare/internal/nearshare"
)

// Collaborator constructors, swapped in tests
var (
	newWatcher = func(bus eventbus.EventBus, cfg *config.Config) discovery.Watcher {
		return discovery.NewLANWatcher(bus, discovery.Options{
			ListenAddr: fmt.Sprintf(":%d", cfg.Discovery.Port),
			Expiry:     cfg.Discovery.Expiry.Duration,
			SelfID:     cfg.Device.ID,
		})
	}
	newSender = func(bus eventbus.EventBus, cfg *config.Config, fs afero.Fs) nearshare.Sender {
		return nearshare.NewHTTPSender(bus, nearshare.Options{
			Self:      cfg.Self(),
			Parallel:  cfg.Transfer.Parallel,
			Timeout:   cfg.Transfer.Timeout.Duration,
			ChunkSize: cfg.Transfer.ChunkSize,
			Fs:        fs,
		})
	}
	osFs afero.Fs = afero.NewOsFs()
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	dimColor  = color.RGB(150, 150, 150)
)

// env is what every command needs: configuration, the bus and the log file
type env struct {
	cfg     *config.Config
	bus     eventbus.EventBus
	out     io.Writer
	errOut  io.Writer
	logFile *os.File
}

// setup loads .env and the config file, applies global flags and redirects the log
func setup(c *cobra.Command) (*env, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	bus := eventbus.New()
	var svc config.ConfigService
	if configFlag != "" {
		svc = config.NewConfigServiceAt(configFlag, bus)
	} else {
		svc = config.NewConfigServiceWithBus(bus)
	}

	cfg, err := svc.Load()
	if err != nil {
		bus.Close()
		return nil, err
	}
	if f := c.Flags().Lookup("spatial"); f != nil && f.Changed {
		cfg.Discovery.Spatial = spatialFlag
	}
	if err := cfg.Validate(); err != nil {
		bus.Close()
		return nil, err
	}

	e := &env{cfg: cfg, bus: bus, out: c.OutOrStdout(), errOut: c.ErrOrStderr()}
	e.logFile = setupLogging(cfg.LogFile)
	log.Printf("nearshare %s: config %s", c.Name(), svc.Path())
	return e, nil
}

// setupLogging sends the standard logger to path; on failure logs stay on stderr
func setupLogging(path string) *os.File {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Printf("Could not create log directory: %v", err)
		return nil
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
		return nil
	}
	log.SetOutput(logFile)
	return logFile
}

// openHistory opens the history database, or returns nil when it is disabled or broken
func (e *env) openHistory() *history.Store {
	if !e.cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(e.cfg.History.Database)
	if err != nil {
		log.Printf("History: %v", err)
		warnColor.Fprintf(e.errOut, "history disabled: %v\n", err)
		return nil
	}
	return store
}

// Close releases the bus and the log file
func (e *env) Close() {
	e.bus.Close()
	if e.logFile != nil {
		log.SetOutput(os.Stderr)
		e.logFile.Close()
	}
}
