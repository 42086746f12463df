package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/uofuseismo/deduplicator/internal/config"
	"github.com/uofuseismo/deduplicator/internal/gateway"
	"github.com/uofuseismo/deduplicator/internal/log"
	"github.com/uofuseismo/deduplicator/internal/metrics"
	"github.com/uofuseismo/deduplicator/internal/ring"
)

var iniFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gateway",
	Long: `
Start the deduplication gateway.

Examples:
  deduplicator start --ini deduplicator.ini     # Start with the given initialization file
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(iniFile)
		if err != nil {
			return err
		}

		if err := log.Init(&log.Config{
			Level:    cfg.LogLevel(),
			Filename: cfg.LogFile(),
		}); err != nil {
			return err
		}
		logger := log.GetLogger()
		logger.Infof("Version: %s", Version)
		logger.Infof("Module Identifier: %s", cfg.ModuleIdentifier)
		logger.Infof("Input ring: %s", cfg.InputRingName)
		logger.Infof("Output ring: %s", cfg.OutputRingName)
		logger.Infof("Log directory: %s", cfg.LogDirectory)
		logger.Infof("Maximum future time: %d seconds", cfg.MaxFutureTime)
		logger.Infof("Maximum past time: %d seconds", cfg.MaxPastTime)
		logger.Infof("Log bad data interval: %d seconds", cfg.LogBadDataInterval)
		logger.Infof("Approximate circular buffer duration: %d seconds", cfg.CircularBufferDuration)
		logger.Infof("Approximate heartbeat interval: %d seconds", cfg.HeartbeatInterval)

		if cfg.MetricsListen != "" {
			metrics.Serve(cfg.MetricsListen)
		}

		inputRing := ring.NewWaveRing(newTransport(cfg.InputRingName))
		if err := inputRing.Connect(cfg.InputRingName, ""); err != nil {
			logger.Errorf("Failed to connect to input ring: %v", err)
			return err
		}
		defer inputRing.Disconnect()
		if err := inputRing.Flush(); err != nil {
			logger.Errorf("Failed to flush input ring: %v", err)
			return err
		}

		outputRing := ring.NewWaveRing(newTransport(cfg.OutputRingName))
		if err := outputRing.Connect(cfg.OutputRingName, cfg.ModuleIdentifier); err != nil {
			logger.Errorf("Failed to connect to output ring: %v", err)
			return err
		}
		defer outputRing.Disconnect()
		if err := outputRing.Flush(); err != nil {
			logger.Errorf("Failed to flush output ring: %v", err)
			return err
		}
		if err := outputRing.PublishHeartbeat(false); err != nil {
			logger.Errorf("Failed to write initial heartbeat: %v", err)
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(),
			os.Interrupt, syscall.SIGHUP, syscall.SIGTERM)
		defer stop()

		gw := gateway.New(inputRing, outputRing, gateway.Options{
			MaxPastTime:            time.Duration(cfg.MaxPastTime) * time.Second,
			MaxFutureTime:          time.Duration(cfg.MaxFutureTime) * time.Second,
			HeartbeatInterval:      time.Duration(cfg.HeartbeatInterval) * time.Second,
			LogBadDataInterval:     time.Duration(cfg.LogBadDataInterval) * time.Second,
			LogBadDataEnabled:      cfg.LogBadDataInterval >= 0,
			CircularBufferDuration: time.Duration(cfg.CircularBufferDuration) * time.Second,
		})
		return gw.Run(ctx)
	},
}

// newTransport binds a ring name to a transport attachment. Process-local
// shared-memory rings stand in for the native Earthworm transport; a cgo
// binding slots in here without touching the rest of the gateway.
var newTransport = func(name string) ring.Transport {
	return ring.NewLocalTransport(name)
}

func init() {
	startCmd.Flags().StringVar(&iniFile, "ini", "", "Defines the initialization file for this executable")
	startCmd.MarkFlagRequired("ini")
	rootCmd.AddCommand(startCmd)
}
