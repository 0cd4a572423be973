package player

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	playbackSampleRate = 44100
	playbackChannels   = 2
	playbackFrameSize  = playbackChannels * 2
)

// normalizedDecoder presents any mono or stereo decoder as a 44.1 kHz
// stereo stream. Mono is duplicated to both channels; other rates are
// linearly interpolated.
type normalizedDecoder struct {
	src         audioDecoder
	in          *bufio.Reader
	srcRate     int64
	srcChannels int

	totalOut int64 // output frames
	outPos   int64 // next output frame

	window  int64 // source frame index held in cur
	cur     [playbackChannels]int16
	next    [playbackChannels]int16
	primed  bool
	srcDone bool

	pending []byte
	frame   []byte
}

func newNormalizedDecoder(src audioDecoder) (audioDecoder, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", rate)
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > playbackChannels {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if rate == playbackSampleRate && channels == playbackChannels {
		return src, nil
	}

	srcFrames := src.Length() / int64(channels*2)
	totalOut := srcFrames * playbackSampleRate / int64(rate)
	if srcFrames > 0 && totalOut == 0 {
		totalOut = 1
	}
	return &normalizedDecoder{
		src:         src,
		in:          bufio.NewReader(src),
		srcRate:     int64(rate),
		srcChannels: channels,
		totalOut:    totalOut,
		frame:       make([]byte, channels*2),
	}, nil
}

func (d *normalizedDecoder) Length() int64     { return d.totalOut * playbackFrameSize }
func (d *normalizedDecoder) SampleRate() int   { return playbackSampleRate }
func (d *normalizedDecoder) ChannelCount() int { return playbackChannels }

func (d *normalizedDecoder) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		if d.outPos >= d.totalOut {
			return 0, io.EOF
		}
		frames := (len(p) + playbackFrameSize - 1) / playbackFrameSize
		frames = int(min(int64(max(frames, 1)), d.totalOut-d.outPos))
		for range frames {
			if err := d.emitFrame(); err != nil {
				if len(d.pending) == 0 {
					return 0, err
				}
				break
			}
		}
	}

	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

// emitFrame appends output frame outPos to pending.
func (d *normalizedDecoder) emitFrame() error {
	num := d.outPos * d.srcRate
	idx := num / playbackSampleRate
	frac := float64(num%playbackSampleRate) / playbackSampleRate

	if err := d.moveTo(idx); err != nil {
		return err
	}
	for ch := range playbackChannels {
		a := float64(d.cur[ch])
		b := float64(d.next[ch])
		d.pending = binary.LittleEndian.AppendUint16(d.pending, uint16(int16(a+(b-a)*frac)))
	}
	d.outPos++
	return nil
}

// moveTo slides the two-frame window so cur holds source frame idx.
func (d *normalizedDecoder) moveTo(idx int64) error {
	if !d.primed {
		f, err := d.readFrame()
		if err != nil {
			return err
		}
		d.cur = f
		d.next = d.readNext(f)
		d.window = idx
		d.primed = true
	}
	for d.window < idx {
		d.cur = d.next
		d.next = d.readNext(d.cur)
		d.window++
	}
	return nil
}

// readNext reads the following source frame, repeating last past the end.
func (d *normalizedDecoder) readNext(last [playbackChannels]int16) [playbackChannels]int16 {
	if d.srcDone {
		return last
	}
	f, err := d.readFrame()
	if err != nil {
		d.srcDone = true
		return last
	}
	return f
}

func (d *normalizedDecoder) readFrame() ([playbackChannels]int16, error) {
	var out [playbackChannels]int16
	if _, err := io.ReadFull(d.in, d.frame); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return out, err
	}
	for ch := range playbackChannels {
		src := min(ch, d.srcChannels-1)
		out[ch] = int16(binary.LittleEndian.Uint16(d.frame[src*2:]))
	}
	return out, nil
}

func (d *normalizedDecoder) Seek(offset int64, whence int) (int64, error) {
	pos := resolveSeek(offset, whence, d.outPos*playbackFrameSize, d.Length())
	outFrame := pos / playbackFrameSize
	srcFrame := outFrame * d.srcRate / playbackSampleRate

	if _, err := d.src.Seek(srcFrame*int64(d.srcChannels*2), io.SeekStart); err != nil {
		return d.outPos * playbackFrameSize, err
	}
	d.in.Reset(d.src)
	d.outPos = outFrame
	d.window = srcFrame
	d.primed = false
	d.srcDone = false
	d.pending = nil
	return outFrame * playbackFrameSize, nil
}
