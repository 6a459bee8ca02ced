package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const bitsPerSample = 16

// EncodeWAV wraps a clip's PCM data in a standard RIFF/WAV container. The
// returned bytes are suitable for writing to disk or a multipart upload.
func EncodeWAV(c *Clip) []byte {
	pcm := c.Bytes()
	byteRate := c.SampleRate * c.Channels * bitsPerSample / 8
	blockAlign := c.Channels * bitsPerSample / 8
	dataSize := len(pcm)

	buf := make([]byte, 44+dataSize)

	// RIFF chunk descriptor
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize)) // file size − 8
	copy(buf[8:12], "WAVE")

	// fmt sub-chunk
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)                 // sub-chunk size (PCM)
	binary.LittleEndian.PutUint16(buf[20:22], 1)                  // audio format: PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(c.Channels)) // num channels
	binary.LittleEndian.PutUint32(buf[24:28], uint32(c.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bitsPerSample))

	// data sub-chunk
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)

	return buf
}

// WriteWAV writes the clip to path as a RIFF/WAV file.
func WriteWAV(path string, c *Clip) error {
	if err := os.WriteFile(path, EncodeWAV(c), 0o644); err != nil {
		return fmt.Errorf("audio: write wav %s: %w", path, err)
	}
	return nil
}

// decodeWAV parses a RIFF/WAV file. Only 16-bit PCM is accepted; telephone
// exports in other widths are rare enough that rejecting them with a clear
// error beats silently re-quantizing.
func decodeWAV(r io.Reader) (*Clip, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read riff header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		sampleRate int
		channels   int
		haveFmt    bool
	)

	// Walk chunks until the data chunk. Some encoders insert LIST/fact
	// chunks between fmt and data.
	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("no data chunk found")
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("fmt chunk too small: %d bytes", chunkSize)
			}
			fmtData := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, fmtData); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			audioFormat := binary.LittleEndian.Uint16(fmtData[0:2])
			if audioFormat != 1 {
				return nil, fmt.Errorf("unsupported wav format %d (only PCM)", audioFormat)
			}
			channels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
			bits := binary.LittleEndian.Uint16(fmtData[14:16])
			if bits != bitsPerSample {
				return nil, fmt.Errorf("unsupported sample width %d bits (only 16)", bits)
			}
			if channels < 1 || channels > 2 {
				return nil, fmt.Errorf("unsupported channel count %d", channels)
			}
			if sampleRate <= 0 {
				return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			pcm := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return nil, fmt.Errorf("read data chunk: %w", err)
			}
			return &Clip{
				SampleRate: sampleRate,
				Channels:   channels,
				Samples:    samplesFromBytes(pcm),
			}, nil

		default:
			// Chunks are word-aligned; skip padding byte on odd sizes.
			skip := int64(chunkSize)
			if chunkSize%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("skip %s chunk: %w", chunkID, err)
			}
		}
	}
}
