package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"github.com/ligustah/photoarchive/internal/archive"
	"github.com/ligustah/photoarchive/internal/config"
	"github.com/ligustah/photoarchive/internal/progress"
)

//go:embed index.html
var indexPage []byte

const notFoundMessage = "archive does not exist or has been deleted"

// Server serves archives from the configured photos folder.
type Server struct {
	cfg      config.Config
	log      zerolog.Logger
	streamer *archive.Streamer
}

// New creates a Server. cfg is not modified afterwards.
func New(cfg config.Config, log zerolog.Logger) *Server {
	return &Server{
		cfg: cfg,
		log: log,
		streamer: &archive.Streamer{
			Command: cfg.ZipCommand,
			Delay:   cfg.Delay,
			Logger:  log,
		},
	}
}

// Handler returns the routed HTTP handler with access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /archive/{archive_hash}/", s.handleArchive)

	return handlers.CombinedLoggingHandler(accessWriter{s.log}, mux)
}

// Run listens on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("serving")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("archive_hash")
	log := s.log.With().Str("archive_hash", hash).Logger()

	dir, err := archive.Resolve(s.cfg.PhotosFolder, hash)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			log.Debug().Err(err).Msg("archive not found")
			http.Error(w, notFoundMessage, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("resolve archive")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", hash+".zip"))
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Debug().Err(err).Msg("flush headers")
		panic(http.ErrAbortHandler)
	}

	stats, err := s.streamer.Stream(r.Context(), flushWriter{w: w, rc: rc}, dir)

	level, msg := zerolog.DebugLevel, "archive sent"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		msg = "connection terminated"
	default:
		level, msg = zerolog.ErrorLevel, "archive stream failed"
	}
	log.WithLevel(level).
		Err(err).
		Int("chunks", stats.Chunks).
		Str("bytes", progress.FormatBytes(stats.Bytes)).
		Dur("duration", stats.Duration).
		Msg(msg)

	if err != nil {
		// The 200 is already on the wire; only an abrupt close tells the
		// client the body is incomplete.
		panic(http.ErrAbortHandler)
	}
}

// flushWriter pushes every chunk to the client as soon as it is written.
type flushWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, f.rc.Flush()
}

// accessWriter feeds combined log lines into the structured logger.
type accessWriter struct {
	log zerolog.Logger
}

func (a accessWriter) Write(p []byte) (int, error) {
	a.log.Debug().Msg(string(trimNewline(p)))
	return len(p), nil
}

func trimNewline(p []byte) []byte {
	for len(p) > 0 && (p[len(p)-1] == '\n' || p[len(p)-1] == '\r') {
		p = p[:len(p)-1]
	}
	return p
}
