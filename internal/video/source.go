// Package video exposes a decoded video stream as a monotonically
// indexed sequence of pixel buffers plus immutable stream geometry.
package video

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strconv"
	"sync"
)

var (
	// ErrNotFound reports that a path-type source does not exist.
	ErrNotFound = errors.New("video source not found")

	// ErrUnavailable reports that the decoder cannot open the source.
	ErrUnavailable = errors.New("video source unavailable")

	// ErrEndOfStream signals normal stream termination, not a failure.
	ErrEndOfStream = errors.New("end of stream")
)

// Frame is a decoded pixel buffer with its stream index. It is owned
// exclusively by the pipeline stage currently processing it.
type Frame struct {
	Index int
	Image *image.RGBA
}

// metadata is the immutable stream geometry, queried once at open time.
type metadata struct {
	fps        float64
	frameCount int
	width      int
	height     int
	live       bool
}

// decoder is the boundary to the underlying decode collaborator.
type decoder interface {
	// readNext returns the next decoded frame or ErrEndOfStream.
	readNext() (*image.RGBA, error)
	meta() metadata
	close() error
}

// Source wraps a decoder and assigns strictly increasing frame indices
// starting at 0, including frames filtered out by skip.
type Source struct {
	dec  decoder
	md   metadata
	next int

	closeOnce sync.Once
	closeErr  error
}

// Open opens a video source: either a file path or a camera index
// ("0", "1", ...). A missing path yields ErrNotFound; a source the
// decoder cannot open yields ErrUnavailable.
func Open(source string) (*Source, error) {
	path, live, err := resolveSource(source)
	if err != nil {
		return nil, err
	}

	dec, err := openDecoder(path, live)
	if err != nil {
		return nil, err
	}

	return &Source{dec: dec, md: dec.meta()}, nil
}

// resolveSource maps a camera index to its device path and verifies
// that file sources exist.
func resolveSource(source string) (path string, live bool, err error) {
	if idx, convErr := strconv.Atoi(source); convErr == nil {
		return fmt.Sprintf("/dev/video%d", idx), true, nil
	}
	if _, statErr := os.Stat(source); statErr != nil {
		return "", false, fmt.Errorf("%w: %s", ErrNotFound, source)
	}
	return source, false, nil
}

// FPS returns the stream frame rate, 0 when unknown.
func (s *Source) FPS() float64 { return s.md.fps }

// FrameCount returns the total frame count, 0 for live sources.
func (s *Source) FrameCount() int { return s.md.frameCount }

// Width returns the source frame width in pixels.
func (s *Source) Width() int { return s.md.width }

// Height returns the source frame height in pixels.
func (s *Source) Height() int { return s.md.height }

// IsLive reports whether the source is a live device.
func (s *Source) IsLive() bool { return s.md.live }

// NextFrame returns the next frame whose index satisfies
// index % (skip+1) == 0; skip 0 yields every frame. Exhaustion and
// decode failure both return ErrEndOfStream.
func (s *Source) NextFrame(skip int) (*Frame, error) {
	if skip < 0 {
		skip = 0
	}
	for {
		img, err := s.dec.readNext()
		if err != nil {
			return nil, ErrEndOfStream
		}

		idx := s.next
		s.next++
		if idx%(skip+1) != 0 {
			continue
		}
		return &Frame{Index: idx, Image: img}, nil
	}
}

// Close releases decoder resources. It runs exactly once; repeat calls
// return the first result.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.dec.close()
	})
	return s.closeErr
}
