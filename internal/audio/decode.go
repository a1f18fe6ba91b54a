// Package audio is the decoder adapter of spec.md §4.1. It decodes
// WAV/MP3/FLAC containers to per-channel int16 PCM using
// github.com/faiface/beep (the teacher's own audio dependency,
// previously unwired — media-luna's go.mod requires it but no
// retrieved file in the pack actually called it), and computes the
// file's content digest over raw bytes, independent of decoding.
package audio

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	"github.com/media-luna/eureka/internal/ferrors"
)

// digestChunkSize matches spec.md §4.1's "≥1 MiB chunks" streaming
// requirement for the SHA-1 content digest.
const digestChunkSize = 1 << 20

// Decoded holds one file's decode result: one int16 sample buffer per
// channel, all at the same sample rate, plus the raw-bytes SHA-1
// digest as uppercase hex.
type Decoded struct {
	Channels   [][]int16
	SampleRate int
	FileSHA1   string
}

// Decode reads path, truncates to limitSeconds if > 0, and returns its
// per-channel int16 PCM plus sample rate and content digest. Returns
// *ferrors.DecodeError if the container is unreadable.
func Decode(path string, limitSeconds float64) (Decoded, error) {
	digest, err := fileDigest(path)
	if err != nil {
		return Decoded{}, &ferrors.DecodeError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return Decoded{}, &ferrors.DecodeError{Path: path, Err: err}
	}

	streamer, format, err := decodeByExtension(path, f)
	if err != nil {
		f.Close()
		return Decoded{}, &ferrors.DecodeError{Path: path, Err: err}
	}
	defer streamer.Close()

	maxFrames := -1
	if limitSeconds > 0 {
		maxFrames = int(limitSeconds * float64(format.SampleRate))
	}

	numChannels := format.NumChannels
	if numChannels < 1 {
		numChannels = 1
	}
	if numChannels > 2 {
		numChannels = 2 // beep streams stereo pairs regardless of source layout
	}

	channels := make([][]int16, numChannels)
	buf := make([][2]float64, 2048)

	framesRead := 0
	for {
		if maxFrames >= 0 && framesRead >= maxFrames {
			break
		}
		n, ok := streamer.Stream(buf)
		if n > 0 {
			take := n
			if maxFrames >= 0 && framesRead+take > maxFrames {
				take = maxFrames - framesRead
			}
			for i := 0; i < take; i++ {
				channels[0] = append(channels[0], toInt16(buf[i][0]))
				if numChannels == 2 {
					channels[1] = append(channels[1], toInt16(buf[i][1]))
				}
			}
			framesRead += take
		}
		if !ok {
			break
		}
	}

	return Decoded{
		Channels:   channels,
		SampleRate: int(format.SampleRate),
		FileSHA1:   digest,
	}, nil
}

func decodeByExtension(path string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	default:
		return wav.Decode(f)
	}
}

func toInt16(sample float64) int16 {
	if sample > 1 {
		sample = 1
	}
	if sample < -1 {
		sample = -1
	}
	return int16(sample * 32767)
}

// fileDigest computes the SHA-1 of path's raw bytes, streamed in
// chunks of at least 1 MiB so arbitrarily large inputs never need to
// be loaded fully into memory (spec.md §4.1).
func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	buf := make([]byte, digestChunkSize)
	// Hide *os.File's WriterTo so io.CopyBuffer reads through buf
	// instead of falling back to a small internal buffer.
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{f}, buf); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}
