package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/mergetags/cmd/mergetags/config"
	"github.com/walteh/mergetags/cmd/mergetags/convert"
	"github.com/walteh/mergetags/cmd/mergetags/menu"
	"github.com/walteh/mergetags/cmd/mergetags/proxy"
	serve_rpc "github.com/walteh/mergetags/cmd/mergetags/serve-rpc"
	"github.com/walteh/mergetags/cmd/mergetags/suggest"
	"github.com/walteh/mergetags/pkg/catalog"
	logging "github.com/walteh/mergetags/pkg/debug"
	"github.com/walteh/mergetags/pkg/options"
)

type rootFlags struct {
	configPath string
	tagsPath   string
	debug      bool
	noColor    bool
}

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "mergetags",
		Short:         "Convert between merge tag chips and delimited text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (.yaml, .yml or .hcl)")
	rootCmd.PersistentFlags().StringVarP(&flags.tagsPath, "tags", "t", "", "JSON file with the tag groups, replaces tags from the config")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ctx, err := flags.setup(cmd.Context())
		if err != nil {
			return err
		}
		cmd.SetContext(ctx)
		return nil
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(convert.NewEncodeCommand())
	rootCmd.AddCommand(convert.NewDecodeCommand())
	rootCmd.AddCommand(convert.NewMigrateCommand())
	rootCmd.AddCommand(menu.NewMenuCommand())
	rootCmd.AddCommand(suggest.NewSuggestCommand())
	rootCmd.AddCommand(config.NewConfigCommand())
	rootCmd.AddCommand(serve_rpc.NewServeRPCCommand())
	rootCmd.AddCommand(proxy.NewProxyCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}

// setup attaches the stderr logger and the loaded options to ctx.
func (f *rootFlags) setup(ctx context.Context) (context.Context, error) {
	ctx = logging.WithLogger(ctx, os.Stderr, f.debug, f.noColor)

	opts, err := options.Load(ctx, f.configPath)
	if err != nil {
		return nil, err
	}

	if f.tagsPath != "" {
		data, err := afero.ReadFile(afero.NewOsFs(), f.tagsPath)
		if err != nil {
			return nil, errors.Errorf("reading tags file: %w", err)
		}
		raw, err := catalog.ParseJSON(data)
		if err != nil {
			return nil, errors.Errorf("parsing tags file %s: %w", f.tagsPath, err)
		}
		list, ok := raw.([]any)
		if !ok {
			return nil, errors.Errorf("tags file %s must hold a JSON array", f.tagsPath)
		}
		opts.Tags = list
	}

	zerolog.Ctx(ctx).Debug().
		Str("prefix", opts.Prefix).
		Str("suffix", opts.Suffix).
		Int("tag_groups", len(opts.Tags)).
		Msg("options loaded")

	return options.NewContext(ctx, opts), nil
}
