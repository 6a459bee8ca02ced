package audio

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"
)

// decodeContainer decodes the first audio stream of an m4a/mp4/flac file via
// libav. Decoded frames are converted to packed S16 at their native sample
// rate; rate conversion to 16 kHz happens later in the shared decode path.
func decodeContainer(path string) (*Clip, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, fmt.Errorf("alloc format context")
	}
	defer fc.Free()

	if err := fc.OpenInput(path, nil, nil); err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer fc.CloseInput()

	if err := fc.FindStreamInfo(nil); err != nil {
		return nil, fmt.Errorf("find stream info: %w", err)
	}

	var stream *astiav.Stream
	for _, s := range fc.Streams() {
		if s.CodecParameters().MediaType() == astiav.MediaTypeAudio {
			stream = s
			break
		}
	}
	if stream == nil {
		return nil, fmt.Errorf("no audio stream")
	}

	codec := astiav.FindDecoder(stream.CodecParameters().CodecID())
	if codec == nil {
		return nil, fmt.Errorf("no decoder for codec %s", stream.CodecParameters().CodecID())
	}

	cc := astiav.AllocCodecContext(codec)
	if cc == nil {
		return nil, fmt.Errorf("alloc codec context")
	}
	defer cc.Free()

	if err := stream.CodecParameters().ToCodecContext(cc); err != nil {
		return nil, fmt.Errorf("apply codec parameters: %w", err)
	}
	if err := cc.Open(codec, nil); err != nil {
		return nil, fmt.Errorf("open codec: %w", err)
	}

	sampleRate := cc.SampleRate()
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	channels := cc.ChannelLayout().Channels()
	targetLayout := astiav.ChannelLayoutStereo
	targetChannels := 2
	if channels <= 1 {
		targetLayout = astiav.ChannelLayoutMono
		targetChannels = 1
	}

	src := astiav.AllocSoftwareResampleContext()
	if src == nil {
		return nil, fmt.Errorf("alloc resample context")
	}
	defer src.Free()

	pkt := astiav.AllocPacket()
	defer pkt.Free()
	frame := astiav.AllocFrame()
	defer frame.Free()
	outFrame := astiav.AllocFrame()
	defer outFrame.Free()

	var pcm []byte
	const align = 0

	// convertFrame renders one decoded frame to packed S16 and appends it.
	convertFrame := func(f *astiav.Frame) error {
		outFrame.Unref()
		outFrame.SetChannelLayout(targetLayout)
		outFrame.SetSampleFormat(astiav.SampleFormatS16)
		outFrame.SetSampleRate(sampleRate)
		outFrame.SetNbSamples(f.NbSamples())
		if err := outFrame.AllocBuffer(align); err != nil {
			return fmt.Errorf("alloc output buffer: %w", err)
		}
		if err := src.ConvertFrame(f, outFrame); err != nil {
			return fmt.Errorf("convert frame: %w", err)
		}
		b, err := outFrame.Data().Bytes(align)
		if err != nil {
			return fmt.Errorf("frame bytes: %w", err)
		}
		// Bytes may include alignment padding past the valid samples.
		if n := outFrame.NbSamples() * targetChannels * 2; n < len(b) {
			b = b[:n]
		}
		pcm = append(pcm, b...)
		return nil
	}

	// receiveAll drains every pending frame from the decoder.
	receiveAll := func() error {
		for {
			if err := cc.ReceiveFrame(frame); err != nil {
				if errors.Is(err, astiav.ErrEof) || errors.Is(err, astiav.ErrEagain) {
					return nil
				}
				return fmt.Errorf("receive frame: %w", err)
			}
			if err := convertFrame(frame); err != nil {
				return err
			}
		}
	}

	for {
		if err := fc.ReadFrame(pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				break
			}
			return nil, fmt.Errorf("read packet: %w", err)
		}
		if pkt.StreamIndex() != stream.Index() {
			pkt.Unref()
			continue
		}
		if err := cc.SendPacket(pkt); err != nil {
			pkt.Unref()
			return nil, fmt.Errorf("send packet: %w", err)
		}
		pkt.Unref()
		if err := receiveAll(); err != nil {
			return nil, err
		}
	}

	// Flush buffered frames.
	if err := cc.SendPacket(nil); err == nil {
		if err := receiveAll(); err != nil {
			return nil, err
		}
	}

	if len(pcm) == 0 {
		return nil, fmt.Errorf("no audio frames decoded")
	}

	return &Clip{
		SampleRate: sampleRate,
		Channels:   targetChannels,
		Samples:    samplesFromBytes(pcm),
	}, nil
}
