// Package main provides the entry point for the trafficcall CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/trafficcall/internal/config"
	"github.com/dgnsrekt/trafficcall/internal/intake"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool
	rt         config.Runtime
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "trafficcall",
		Short: "Speak traffic alerts as they arrive",
		Long: paragraph(
			fmt.Sprintf("\nSpeak proximate traffic as %s callouts, one at a time, while reports keep coming in over HTTP.", keyword("clock position")),
		),
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateOptions loads the merged configuration.
func validateOptions(*cobra.Command) error {
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	var err error
	if cfg, err = config.LoadFromViper(); err != nil {
		return err
	}

	log.Debug("Configuration loaded",
		"backend", cfg.Device.Backend,
		"voice", cfg.Voice.Manifest,
		"phrasing", cfg.Alerts.Phrasing,
		"intake", cfg.Intake.Enabled)
	return nil
}

func execute(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if off, _ := cmd.Flags().GetBool("no-intake"); off {
		cfg.Intake.Enabled = false
	}

	sys, err := newSubsystem(cfg)
	if err != nil {
		return err
	}
	defer sys.Close() //nolint:errcheck

	// Alert wording follows the config file while running
	if viper.ConfigFileUsed() != "" {
		config.Watch(func(c config.Config) {
			sys.alerter.SetOptions(c.CalloutOptions())
		})
	}

	g, ctx := errgroup.WithContext(ctx)

	if err := sys.alerter.Start(ctx); err != nil {
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		sys.alerter.Stop()
		return nil
	})

	if cfg.Intake.Enabled {
		h := intake.NewHandler(sys.alerter, intake.NewTracker(), cfg.Intake.RateLimit, cfg.Intake.Burst)
		g.Go(func() error {
			return intake.Serve(ctx, cfg.Intake.Listen, h)
		})
	} else {
		log.Info("Traffic intake disabled, waiting for a signal")
	}

	if err := g.Wait(); err != nil {
		return err
	}

	stats := sys.alerter.Stats()
	log.Info("Shutting down",
		"announced", stats.Announced,
		"skipped", stats.Skipped,
		"errors", stats.BuildErrors+stats.PlayErrors,
		"pending", stats.Queue.CurrentSize)
	return nil
}

func main() {
	var err error
	if rt, err = config.LoadRuntime(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	closer, err := setupLog(rt)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	cobra.OnInitialize(tryLoadConfigFromDefaultPlaces)
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default trafficcall.yml in the user config directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output")
	rootCmd.PersistentFlags().String("device", "", "audio backend: oto, portaudio or mock")
	rootCmd.PersistentFlags().String("voice", "", "voice manifest or directory (synthetic tones when empty)")
	rootCmd.PersistentFlags().Bool("aliases", true, "announce aliases before the clock position")
	rootCmd.PersistentFlags().Bool("dork", false, "use the alternate tone")
	rootCmd.PersistentFlags().String("phrasing", "", "clock position phrasing: clock or oclock")
	rootCmd.Flags().StringP("listen", "l", "", "traffic intake listen address")
	rootCmd.Flags().Bool("no-intake", false, "do not start the traffic intake")

	// Config bindings
	_ = viper.BindPFlag("device.backend", rootCmd.PersistentFlags().Lookup("device"))
	_ = viper.BindPFlag("voice.manifest", rootCmd.PersistentFlags().Lookup("voice"))
	_ = viper.BindPFlag("alerts.use_aliases", rootCmd.PersistentFlags().Lookup("aliases"))
	_ = viper.BindPFlag("alerts.dork_mode", rootCmd.PersistentFlags().Lookup("dork"))
	_ = viper.BindPFlag("alerts.phrasing", rootCmd.PersistentFlags().Lookup("phrasing"))
	_ = viper.BindPFlag("intake.listen", rootCmd.Flags().Lookup("listen"))

	config.SetDefaults()

	rootCmd.AddCommand(sayCmd, configCmd, manCmd)
}

func configDirs() ([]string, error) {
	scope := gap.NewScope(gap.User, "trafficcall")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return nil, err
	}

	if rt.XDGConfigHome != "" {
		dirs = append([]string{filepath.Join(rt.XDGConfigHome, "trafficcall")}, dirs...)
	}

	if rt.ConfigHome != "" {
		dirs = append([]string{rt.ConfigHome}, dirs...)
	}
	return dirs, nil
}

func tryLoadConfigFromDefaultPlaces() {
	dirs, err := configDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		for _, v := range dirs {
			viper.AddConfigPath(v)
		}
		viper.SetConfigName("trafficcall")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("trafficcall")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "trafficcall.yml")
	log.Debug("No configuration file found, using defaults", "path", configFile)
}
