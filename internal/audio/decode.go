package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// decodeChunk is the batch size used while draining a beep.Streamer into an
// in-memory buffer; unrelated to the engine's realtime Chunk constant.
const decodeChunk = 4096

// DecodeFile fully decodes a local audio file into an in-memory Payload.
// The core assumes a fully-decoded in-memory sample buffer per track and
// performs no resampling: the returned metadata's sample rate is the
// file's native rate. Supported extensions are a UI concern; no extension
// is rejected here: .wav, .flac and .ogg go to their own decoders and
// every other extension is decoded as MP3.
func DecodeFile(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	streamer, format, err := openDecoder(path, f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	defer streamer.Close()

	buf := make([][2]float64, decodeChunk)
	var left, right []float32
	for {
		n, ok := streamer.Stream(buf)
		for i := 0; i < n; i++ {
			left = append(left, float32(buf[i][0]))
			right = append(right, float32(buf[i][1]))
		}
		if !ok {
			break
		}
	}

	numChannels := format.NumChannels
	if numChannels <= 0 {
		numChannels = 2
	}

	var samples []float32
	if numChannels == 1 {
		// beep duplicates mono source samples to both channels (L == R);
		// keep just the left channel so the native layout is preserved.
		samples = left
	} else {
		samples = make([]float32, 0, len(left)*2)
		for i := range left {
			samples = append(samples, left[i], right[i])
		}
		numChannels = 2
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	metadata := Metadata{
		Format:        ext,
		SampleRate:    int(format.SampleRate),
		NumChannels:   numChannels,
		ChannelLayout: ChannelLayoutFromCount(numChannels),
		FilePath:      path,
		Title:         strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	return NewPayload(metadata, samples), nil
}

func openDecoder(path string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	default:
		return mp3.Decode(f)
	}
}
