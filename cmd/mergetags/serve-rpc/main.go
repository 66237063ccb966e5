package serve_rpc

import (
	"context"
	"io"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/mergetags/pkg/document"
	"github.com/walteh/mergetags/pkg/mergetags"
	"github.com/walteh/mergetags/pkg/options"
	"github.com/walteh/mergetags/pkg/rpc"
)

type Handler struct {
	contentPath string
	socketPath  string

	fs     afero.Fs
	stdin  io.Reader
	stdout io.WriteCloser
}

func NewServeRPCCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs(), stdin: os.Stdin, stdout: os.Stdout}

	cmd := &cobra.Command{
		Use:   "serve-rpc",
		Short: "serve the merge tag engine as line-delimited JSON-RPC",
	}

	cmd.Flags().StringVar(&me.contentPath, "content", "", "file with the initial document markup")
	cmd.Flags().StringVar(&me.socketPath, "socket", "", "listen on this unix socket instead of stdio")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func NewHandler(fs afero.Fs, stdin io.Reader, stdout io.WriteCloser, contentPath, socketPath string) *Handler {
	return &Handler{fs: fs, stdin: stdin, stdout: stdout, contentPath: contentPath, socketPath: socketPath}
}

func (me *Handler) engine(ctx context.Context) (*mergetags.Engine, error) {
	opts := options.FromContext(ctx)

	content := ""
	if me.contentPath != "" {
		data, err := afero.ReadFile(me.fs, me.contentPath)
		if err != nil {
			return nil, errors.Errorf("reading initial content: %w", err)
		}
		content = string(data)
	}

	doc, err := document.New(content, opts.HistoryLimit)
	if err != nil {
		return nil, errors.Errorf("creating document: %w", err)
	}

	return mergetags.New(ctx, opts, doc)
}

func (me *Handler) Run(ctx context.Context) error {
	engine, err := me.engine(ctx)
	if err != nil {
		return errors.Errorf("creating engine: %w", err)
	}

	server := rpc.NewServer(engine)

	if me.socketPath == "" {
		if err := server.Serve(ctx, me.stdin, me.stdout); err != nil {
			return errors.Errorf("error running json-rpc server: %w", err)
		}
		return nil
	}

	return me.serveSocket(ctx, server)
}

// serveSocket serves clients one after another; they all share the engine
// and therefore the document.
func (me *Handler) serveSocket(ctx context.Context, server *rpc.Server) error {
	listener, err := net.Listen("unix", me.socketPath)
	if err != nil {
		return errors.Errorf("listening on %s: %w", me.socketPath, err)
	}

	zerolog.Ctx(ctx).Info().Str("socket", me.socketPath).Msg("waiting for json-rpc clients")

	return serveListener(ctx, server, listener)
}

func serveListener(ctx context.Context, server *rpc.Server, listener net.Listener) error {
	defer listener.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return errors.Errorf("accepting connection: %w", err)
		}

		zerolog.Ctx(ctx).Debug().Str("remote", conn.RemoteAddr().String()).Msg("client connected")

		if err := server.Serve(ctx, conn, conn); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("client session failed")
		}
	}
}
