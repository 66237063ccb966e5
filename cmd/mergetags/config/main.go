package config

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/walteh/mergetags/pkg/options"
)

type Handler struct {
	stdout io.Writer
}

func NewConfigCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as YAML",
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.stdout = cmd.OutOrStdout()
		return me.Run(cmd.Context())
	}

	return cmd
}

func NewHandler(stdout io.Writer) *Handler {
	return &Handler{stdout: stdout}
}

func (me *Handler) Run(ctx context.Context) error {
	return options.DumpYAML(me.stdout, options.FromContext(ctx))
}
