package novarelwire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/tuannm99/novarel/internal/catalog"
	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/sql/executor"
)

type ServerConfig struct {
	Addr        string
	CatalogName string

	// ImportDir resolves relative file paths, including the seed files.
	// Client statements cannot reach files outside it; empty means the
	// working directory.
	ImportDir string
	// Files and Queries seed every new session catalog.
	Files   []string
	Queries []string
}

func Run(sc ServerConfig) error {
	ln, err := net.Listen("tcp", sc.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return Serve(ctx, ln, sc)
}

// Serve accepts connections on ln until ctx is done. Each connection gets
// its own session catalog.
func Serve(ctx context.Context, ln net.Listener, sc ServerConfig) error {
	defer func() { _ = ln.Close() }()

	slog.Info("novarel tcp server listening", "addr", ln.Addr().String(), "catalog", sc.CatalogName)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Warn("accept failed", "err", err)
			continue
		}
		go handleConn(ctx, conn, sc)
	}
}

func handleConn(ctx context.Context, conn net.Conn, sc ServerConfig) {
	defer func() { _ = conn.Close() }()

	// No global deadline; the client sets per-request deadlines.
	_ = conn.SetDeadline(time.Time{})

	id := uuid.NewString()
	log := slog.With("session", id, "remote", conn.RemoteAddr().String())

	ex, cleanup := newSessionExecutor(sc, log)
	defer func() { _ = cleanup() }()
	log.Info("session opened")
	defer log.Info("session closed")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var req ExecuteRequest
		if err := ReadFrame(conn, &req); err != nil {
			// Client closed or bad frame.
			return
		}

		log.Debug("statement received", "id", req.ID)
		res, err := ex.ExecSQL(req.SQL)
		if err != nil {
			_ = WriteFrame(conn, ExecuteResponse{
				ID:       req.ID,
				Error:    err.Error(),
				Category: qerr.CategoryOf(err).String(),
			})
			continue
		}

		_ = WriteFrame(conn, ExecuteResponse{
			ID:     req.ID,
			Result: res,
		})
	}
}

// newSessionExecutor returns a fresh catalog per connection so stored
// queries are session-scoped.
func newSessionExecutor(sc ServerConfig, log *slog.Logger) (*executor.Executor, func() error) {
	db := catalog.New(sc.CatalogName)
	ex := executor.NewExecutor(db)
	ex.Dir = sc.ImportDir
	if ex.Dir == "" {
		ex.Dir = "."
	}
	if err := ex.Seed(sc.Files, sc.Queries); err != nil {
		log.Warn("session seed incomplete", "err", err)
	}
	return ex, db.Close
}
