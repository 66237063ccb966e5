package proxy

import (
	"context"
	"io"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// Handler pipes stdio to a serve-rpc socket so hosts that only spawn
// processes can talk to a long running engine.
type Handler struct {
	socketPath string

	stdin  io.Reader
	stdout io.Writer
}

func NewProxyCommand() *cobra.Command {
	me := &Handler{stdin: os.Stdin, stdout: os.Stdout}

	cmd := &cobra.Command{
		Use:   "proxy <socket-path>",
		Short: "bridge stdio to a serve-rpc unix socket",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.socketPath = args[0]
		return me.Run(cmd.Context())
	}

	return cmd
}

func NewHandler(stdin io.Reader, stdout io.Writer, socketPath string) *Handler {
	return &Handler{stdin: stdin, stdout: stdout, socketPath: socketPath}
}

// Run returns once either direction finishes.
func (me *Handler) Run(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", me.socketPath)
	if err != nil {
		return errors.Errorf("connecting to socket %s: %w", me.socketPath, err)
	}
	defer conn.Close()

	done := make(chan error, 2)

	go func() {
		_, err := io.Copy(conn, me.stdin)
		done <- err
	}()

	go func() {
		_, err := io.Copy(me.stdout, conn)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			return errors.Errorf("proxying: %w", err)
		}
	case <-ctx.Done():
	}

	zerolog.Ctx(ctx).Debug().Str("socket", me.socketPath).Msg("proxy finished")
	return nil
}
