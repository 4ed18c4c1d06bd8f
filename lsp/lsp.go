// Package lsp implements a language server for calcscript.
package lsp

import (
	"context"
	"io"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/zephyrtronium/calcscript"
)

// Serve runs the language server on a stream until the client disconnects
// or ctx is done. Hover results are evaluated with opts.
func Serve(ctx context.Context, in io.Reader, out io.Writer, opts ...calcscript.RuntimeOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s := newServer(opts)
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(transport{in, out}, jsonrpc2.VSCodeObjectCodec{}),
		handler(s))
	select {
	case <-conn.DisconnectNotify():
		return nil
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	}
}

type transport struct {
	in  io.Reader
	out io.Writer
}

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	var err error
	if cl, ok := c.in.(io.Closer); ok {
		err = cl.Close()
	}
	if cl, ok := c.out.(io.Closer); ok && any(cl) != any(c.in) {
		if e := cl.Close(); err == nil {
			err = e
		}
	}
	return err
}
