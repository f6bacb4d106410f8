package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"github.com/olivier-w/dotmeter/internal/media"
)

// Decoder yields interleaved float32 samples in [-1, 1].
type Decoder interface {
	// Read fills dst with whole frames and returns the number of samples
	// written. It returns io.EOF once the stream is exhausted.
	Read(dst []float32) (int, error)
	SampleRate() int
	Channels() int
	Close() error
}

// OpenDecoder picks a decoder by file extension.
func OpenDecoder(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		return nil, fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var dec Decoder
	switch ext {
	case ".mp3":
		dec, err = newMP3Decoder(f)
	case ".wav":
		dec, err = newWAVDecoder(f)
	case ".flac":
		dec, err = newFLACDecoder(f)
	case ".ogg":
		dec, err = newOGGDecoder(f)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return dec, nil
}

// wholeFrames trims n samples down to a multiple of channels.
func wholeFrames(n, channels int) int {
	return n - n%channels
}

// --- MP3 decoder ---

// go-mp3 always produces 16-bit stereo.
type mp3Decoder struct {
	file *os.File
	dec  *mp3.Decoder
	raw  []byte
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{file: f, dec: dec}, nil
}

func (d *mp3Decoder) Read(dst []float32) (int, error) {
	want := wholeFrames(len(dst), 2) * 2
	if want == 0 {
		return 0, nil
	}
	if cap(d.raw) < want {
		d.raw = make([]byte, want)
	}
	raw := d.raw[:want]

	n, err := io.ReadFull(d.dec, raw)
	n -= n % 4
	for i := range n / 2 {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
	}
	if n > 0 {
		return n / 2, nil
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return 0, err
}

func (d *mp3Decoder) SampleRate() int { return d.dec.SampleRate() }
func (d *mp3Decoder) Channels() int   { return 2 }
func (d *mp3Decoder) Close() error    { return d.file.Close() }

// --- WAV decoder ---

type wavDecoder struct {
	file     *os.File
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	channels int
	bitDepth int
	scale    float32
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 {
		return nil, fmt.Errorf("unsupported WAV channel count: %d", channels)
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", bitDepth)
	}

	return &wavDecoder{
		file: f,
		dec:  dec,
		buf: &audio.IntBuffer{
			Format: &audio.Format{NumChannels: channels, SampleRate: int(dec.SampleRate)},
		},
		channels: channels,
		bitDepth: bitDepth,
		scale:    float32(int64(1) << (bitDepth - 1)),
	}, nil
}

func (d *wavDecoder) Read(dst []float32) (int, error) {
	want := wholeFrames(len(dst), d.channels)
	if want == 0 {
		return 0, nil
	}
	if cap(d.buf.Data) < want {
		d.buf.Data = make([]int, want)
	}
	d.buf.Data = d.buf.Data[:want]

	n, err := d.dec.PCMBuffer(d.buf)
	n = wholeFrames(n, d.channels)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("reading WAV samples: %w", err)
	}
	for i, v := range d.buf.Data[:n] {
		if d.bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		dst[i] = float32(v) / d.scale
	}
	return n, nil
}

func (d *wavDecoder) SampleRate() int { return int(d.dec.SampleRate) }
func (d *wavDecoder) Channels() int   { return d.channels }
func (d *wavDecoder) Close() error    { return d.file.Close() }

// --- FLAC decoder ---

type flacDecoder struct {
	file     *os.File
	stream   *flac.Stream
	pending  []float32
	channels int
	scale    float32
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	return &flacDecoder{
		file:     f,
		stream:   stream,
		channels: int(info.NChannels),
		scale:    float32(int64(1) << (info.BitsPerSample - 1)),
	}, nil
}

func (d *flacDecoder) Read(dst []float32) (int, error) {
	want := wholeFrames(len(dst), d.channels)
	written := 0
	for written < want {
		if len(d.pending) == 0 {
			if err := d.decodeFrame(); err != nil {
				if written > 0 && err == io.EOF {
					return written, nil
				}
				return written, err
			}
		}
		n := copy(dst[written:want], d.pending)
		d.pending = d.pending[n:]
		written += n
	}
	return written, nil
}

func (d *flacDecoder) decodeFrame() error {
	frame, err := d.stream.ParseNext()
	if err != nil {
		return err
	}
	nSamples := int(frame.Subframes[0].NSamples)
	need := nSamples * d.channels
	if cap(d.pending) < need {
		d.pending = make([]float32, need)
	}
	d.pending = d.pending[:need]
	for i := range nSamples {
		for ch := range d.channels {
			d.pending[i*d.channels+ch] = float32(frame.Subframes[ch].Samples[i]) / d.scale
		}
	}
	return nil
}

func (d *flacDecoder) SampleRate() int { return int(d.stream.Info.SampleRate) }
func (d *flacDecoder) Channels() int   { return d.channels }
func (d *flacDecoder) Close() error {
	d.stream.Close()
	return d.file.Close()
}

// --- OGG Vorbis decoder ---

type oggDecoder struct {
	file   *os.File
	reader *oggvorbis.Reader
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{file: f, reader: reader}, nil
}

func (d *oggDecoder) Read(dst []float32) (int, error) {
	want := wholeFrames(len(dst), d.reader.Channels())
	n, err := d.reader.Read(dst[:want])
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

func (d *oggDecoder) SampleRate() int { return d.reader.SampleRate() }
func (d *oggDecoder) Channels() int   { return d.reader.Channels() }
func (d *oggDecoder) Close() error    { return d.file.Close() }
