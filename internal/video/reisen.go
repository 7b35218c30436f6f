package video

import (
	"fmt"
	"image"
	"math"

	"github.com/zergon321/reisen"
)

// reisenDecoder drives the ffmpeg bindings. One instance owns the
// media handle and the opened video stream.
type reisenDecoder struct {
	media  *reisen.Media
	stream *reisen.VideoStream
	md     metadata
}

func openDecoder(path string, live bool) (decoder, error) {
	media, err := reisen.NewMedia(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}

	if err := media.OpenDecode(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}

	streams := media.VideoStreams()
	if len(streams) == 0 {
		media.CloseDecode()
		return nil, fmt.Errorf("%w: %s has no video stream", ErrUnavailable, path)
	}

	stream := streams[0]
	if err := stream.Open(); err != nil {
		media.CloseDecode()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, path, err)
	}

	return &reisenDecoder{
		media:  media,
		stream: stream,
		md:     probeMetadata(stream, live),
	}, nil
}

// probeMetadata reads the stream geometry once at open time.
func probeMetadata(stream *reisen.VideoStream, live bool) metadata {
	md := metadata{
		width:  stream.Width(),
		height: stream.Height(),
		live:   live,
	}

	num, den := stream.FrameRate()
	if den != 0 {
		md.fps = float64(num) / float64(den)
	}

	if !live && md.fps > 0 {
		if dur, err := stream.Duration(); err == nil {
			md.frameCount = int(math.Round(dur.Seconds() * md.fps))
		}
	}
	return md
}

func (d *reisenDecoder) meta() metadata { return d.md }

// readNext pulls packets until the next frame of our video stream is
// decoded. Any demux or decode error terminates the stream.
func (d *reisenDecoder) readNext() (*image.RGBA, error) {
	for {
		packet, got, err := d.media.ReadPacket()
		if err != nil || !got {
			return nil, ErrEndOfStream
		}

		if packet.Type() != reisen.StreamVideo {
			continue
		}
		stream, ok := d.media.Streams()[packet.StreamIndex()].(*reisen.VideoStream)
		if !ok || stream != d.stream {
			continue
		}

		frame, gotFrame, err := stream.ReadVideoFrame()
		if err != nil {
			return nil, ErrEndOfStream
		}
		if !gotFrame || frame == nil {
			continue
		}
		return frame.Image(), nil
	}
}

func (d *reisenDecoder) close() error {
	err := d.stream.Close()
	d.media.CloseDecode()
	return err
}
