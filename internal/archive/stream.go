package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ChunkSize is the largest read from the archiver forwarded as one write.
const ChunkSize = 150 * 1024

// DefaultCommand is the archiver executable used when none is configured.
const DefaultCommand = "zip"

// Stream errors.
var (
	ErrStreamRead  = errors.New("archive: read archiver output")
	ErrStreamWrite = errors.New("archive: write chunk")
)

// Stats describes a finished or aborted stream.
type Stats struct {
	Chunks   int
	Bytes    int64
	Duration time.Duration
}

// Streamer forwards archiver output to a writer.
type Streamer struct {
	// Command is the archiver executable.
	// Default: "zip"
	Command string

	// Delay is waited after every forwarded chunk.
	// Default: 0
	Delay time.Duration

	Logger zerolog.Logger
}

// Stream zips dir and copies the archiver output to dst chunk by chunk
// until the output is exhausted.
//
// If ctx is cancelled while waiting for output or during the delay, the
// archiver is killed and ctx.Err() is returned. The archiver has always
// been reaped when Stream returns.
func (s *Streamer) Stream(ctx context.Context, dst io.Writer, dir string) (stats Stats, err error) {
	start := time.Now()
	log := s.Logger.With().Str("path", dir).Logger()

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	command := s.Command
	if command == "" {
		command = DefaultCommand
	}

	proc, err := Start(ctx, command, dir)
	if err != nil {
		return stats, err
	}
	log = log.With().Int("pid", proc.Pid()).Logger()

	defer func() {
		stats.Duration = time.Since(start)
		if !proc.Reaped() {
			log.Debug().Msg("killing archiver")
		}
		if cerr := proc.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("archiver cleanup")
		}
	}()

	buf := make([]byte, ChunkSize)
	for {
		n, rerr := proc.Read(buf)
		if n > 0 {
			log.Debug().Int("size", n).Msg("sending archive chunk")
			if _, werr := dst.Write(buf[:n]); werr != nil {
				if ctx.Err() != nil {
					return stats, ctx.Err()
				}
				return stats, fmt.Errorf("%w: %w", ErrStreamWrite, werr)
			}
			stats.Chunks++
			stats.Bytes += int64(n)
		}

		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			return stats, fmt.Errorf("%w: %w", ErrStreamRead, rerr)
		}

		if n > 0 {
			if err := s.pause(ctx); err != nil {
				return stats, err
			}
		}
	}

	// A cancelled context kills the archiver, which also ends its output.
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	if werr := proc.Wait(); werr != nil {
		log.Warn().Err(werr).Str("stderr", proc.Stderr()).Msg("archiver exited abnormally")
	}

	return stats, nil
}

func (s *Streamer) pause(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(s.Delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
