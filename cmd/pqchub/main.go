package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"

	"github.com/QudsLab/pqchub-go/internal/config"
	"github.com/QudsLab/pqchub-go/pkg/pqc"
	"github.com/QudsLab/pqchub-go/pkg/pqc/logging"
)

var (
	configPath  string
	libraryPath string
)

func main() {
	root := &cobra.Command{
		Use:     "pqchub",
		Short:   "Manage the prebuilt post-quantum native library",
		Version: versioninfo.Short(),
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "f", "", "configuration file path")
	root.PersistentFlags().StringVar(&libraryPath, "library", "", "explicit native library path, bypassing manifest and cache")

	root.AddCommand(resolveCommand(), infoCommand(), algorithmsCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if libraryPath != "" {
		cfg.LibraryPath = libraryPath
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config) logging.Logger {
	if cfg.Logging.Disable {
		return logging.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}
	var lvl slog.Level
	switch cfg.Logging.Level {
	case "ERROR":
		lvl = slog.LevelError
	case "WARN":
		lvl = slog.LevelWarn
	case "DEBUG":
		lvl = slog.LevelDebug
	default:
		lvl = slog.LevelInfo
	}
	return logging.New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func openLibrary(ctx context.Context) (*pqc.Library, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	lc := cfg.Library()
	lc.Logger = buildLogger(cfg)
	return pqc.Open(ctx, lc)
}

func resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Resolve, fetch if needed, and print the native library path",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), lib.Path())
			return nil
		},
	}
}

func infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print platform, library, and version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wrapper:  %s\n", pqc.WrapperVersion())
			fmt.Fprintf(out, "platform: %s\n", pqc.PlatformTag())
			if !pqc.PlatformSupported() {
				return errors.New("no prebuilt binary is published for this platform")
			}

			lib, err := openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "library:  %s\n", lib.Path())

			if v, err := lib.Version(); err == nil {
				fmt.Fprintf(out, "version:  %s\n", v)
			} else {
				fmt.Fprintf(out, "version:  unavailable (%v)\n", err)
			}
			if a, err := lib.AlgorithmList(); err == nil {
				fmt.Fprintf(out, "exports:  %s\n", a)
			}
			return nil
		},
	}
}

func algorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "Print the supported algorithm table",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tPUBLIC KEY\tSECRET KEY\tCIPHERTEXT\tSIGNATURE")
			for _, a := range pqc.Algorithms() {
				ct, sig := "-", "-"
				if a.Kind == pqc.KindKEM {
					ct = fmt.Sprint(a.CiphertextSize)
				} else {
					sig = fmt.Sprint(a.SignatureSize)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", a.Name, a.Kind, a.PublicKeySize, a.SecretKeySize, ct, sig)
			}
			_ = w.Flush()
		},
	}
}
