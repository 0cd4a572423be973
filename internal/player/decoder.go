package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// audioDecoder is a seekable stream of interleaved little-endian int16 PCM.
// Length and Seek offsets are in bytes of that stream.
type audioDecoder interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// newDecoder picks a decoder by file extension.
func newDecoder(f *os.File) (audioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		dec, err := mp3.NewDecoder(f)
		if err != nil {
			return nil, fmt.Errorf("decoding MP3: %w", err)
		}
		return mp3Decoder{dec}, nil
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
}

// go-mp3 already yields 16-bit stereo bytes.
type mp3Decoder struct{ *mp3.Decoder }

func (d mp3Decoder) ChannelCount() int { return 2 }

// chunkSource produces interleaved int16 samples a chunk at a time and can
// reposition to a sample frame.
type chunkSource interface {
	nextChunk(frames int) ([]int16, error)
	seekFrame(frame int64) error
}

// pcmDecoder turns a chunkSource into an audioDecoder.
type pcmDecoder struct {
	src      chunkSource
	pending  []byte
	pos      int64
	length   int64
	rate     int
	channels int
}

func newPCMDecoder(src chunkSource, totalFrames int64, rate, channels int) *pcmDecoder {
	return &pcmDecoder{
		src:      src,
		length:   totalFrames * int64(channels) * 2,
		rate:     rate,
		channels: channels,
	}
}

func (d *pcmDecoder) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		frames := max(len(p)/(d.channels*2), 1)
		samples, err := d.src.nextChunk(frames)
		if len(samples) == 0 {
			if err == nil || err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			return 0, err
		}
		d.pending = encodePCM(d.pending[:0], samples)
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	d.pos += int64(n)
	return n, nil
}

func (d *pcmDecoder) Seek(offset int64, whence int) (int64, error) {
	next := resolveSeek(offset, whence, d.pos, d.length)
	frameSize := int64(d.channels) * 2
	next -= next % frameSize
	if err := d.src.seekFrame(next / frameSize); err != nil {
		return d.pos, err
	}
	d.pending = nil
	d.pos = next
	return next, nil
}

func (d *pcmDecoder) Length() int64     { return d.length }
func (d *pcmDecoder) SampleRate() int   { return d.rate }
func (d *pcmDecoder) ChannelCount() int { return d.channels }

func resolveSeek(offset int64, whence int, cur, length int64) int64 {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = cur + offset
	case io.SeekEnd:
		next = length + offset
	}
	return min(max(next, 0), length)
}

func encodePCM(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(s))
	}
	return dst
}

func clampInt16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// rescale shifts a sample of the given bit depth to 16 bits.
func rescale(v, bits int) int16 {
	switch {
	case bits > 16:
		v >>= bits - 16
	case bits < 16:
		v <<= 16 - bits
	}
	return clampInt16(v)
}

// --- WAV ---

type wavSource struct {
	file      *os.File
	pcmStart  int64
	bits      int
	channels  int
	frameSize int64
	raw       []byte
}

func newWAVDecoder(f *os.File) (*pcmDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	bits := int(dec.BitDepth)
	if bits != 8 && bits != 16 && bits != 24 && bits != 32 {
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", bits)
	}

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	src := &wavSource{
		file:      f,
		pcmStart:  pcmStart,
		bits:      bits,
		channels:  channels,
		frameSize: int64(channels * bits / 8),
	}
	return newPCMDecoder(src, dec.PCMLen()/src.frameSize, int(dec.SampleRate), channels), nil
}

func (s *wavSource) nextChunk(frames int) ([]int16, error) {
	need := frames * int(s.frameSize)
	if cap(s.raw) < need {
		s.raw = make([]byte, need)
	}
	raw := s.raw[:need]
	n, err := io.ReadFull(s.file, raw)
	width := s.bits / 8
	count := n / width
	out := make([]int16, count)
	for i := range count {
		off := i * width
		switch s.bits {
		case 8:
			// 8-bit WAV is unsigned.
			out[i] = int16((int(raw[off]) - 128) << 8)
		case 16:
			out[i] = int16(binary.LittleEndian.Uint16(raw[off:]))
		case 24:
			v := int32(raw[off]) | int32(raw[off+1])<<8 | int32(raw[off+2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			out[i] = rescale(int(v), 24)
		case 32:
			out[i] = rescale(int(int32(binary.LittleEndian.Uint32(raw[off:]))), 32)
		}
	}
	return out, err
}

func (s *wavSource) seekFrame(frame int64) error {
	_, err := s.file.Seek(s.pcmStart+frame*s.frameSize, io.SeekStart)
	return err
}

// --- FLAC ---

type flacSource struct {
	stream *flac.Stream
	bits   int
}

func newFLACDecoder(f *os.File) (*pcmDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	src := &flacSource{stream: stream, bits: int(info.BitsPerSample)}
	return newPCMDecoder(src, int64(info.NSamples), int(info.SampleRate), int(info.NChannels)), nil
}

// nextChunk ignores the frame hint; FLAC decodes a whole block at a time.
func (s *flacSource) nextChunk(int) ([]int16, error) {
	frame, err := s.stream.ParseNext()
	if err != nil {
		return nil, err
	}
	channels := len(frame.Subframes)
	n := int(frame.Subframes[0].NSamples)
	out := make([]int16, n*channels)
	for i := range n {
		for ch, sub := range frame.Subframes {
			out[i*channels+ch] = rescale(int(sub.Samples[i]), s.bits)
		}
	}
	return out, nil
}

func (s *flacSource) seekFrame(frame int64) error {
	_, err := s.stream.Seek(uint64(frame))
	return err
}

// --- Ogg Vorbis ---

type oggSource struct {
	reader *oggvorbis.Reader
	tmp    []float32
}

func newOGGDecoder(f *os.File) (*pcmDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	src := &oggSource{reader: reader}
	return newPCMDecoder(src, reader.Length(), reader.SampleRate(), reader.Channels()), nil
}

func (s *oggSource) nextChunk(frames int) ([]int16, error) {
	need := frames * s.reader.Channels()
	if cap(s.tmp) < need {
		s.tmp = make([]float32, need)
	}
	n, err := s.reader.Read(s.tmp[:need])
	out := make([]int16, n)
	for i, v := range s.tmp[:n] {
		out[i] = clampInt16(int(v * 32767))
	}
	return out, err
}

func (s *oggSource) seekFrame(frame int64) error {
	return s.reader.SetPosition(frame)
}
