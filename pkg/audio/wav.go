package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV finalizes buffered PCM chunks into a single WAV payload.
// Only 16-bit samples are supported, matching what the recorders
// produce.
func EncodeWAV(chunks [][]byte, format Format) ([]byte, error) {
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d", format.BitDepth)
	}

	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	samples := make([]int, 0, total/2)
	for _, chunk := range chunks {
		for i := 0; i+1 < len(chunk); i += 2 {
			samples = append(samples, int(int16(binary.LittleEndian.Uint16(chunk[i:]))))
		}
	}

	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, format.SampleRate, format.BitDepth, format.Channels, 1)
	buf := &goaudio.IntBuffer{
		Data:           samples,
		Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
		SourceBitDepth: format.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return ws.buf, nil
}

// memWriteSeeker is the in-memory io.WriteSeeker the wav encoder needs
// to backfill header sizes on Close.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	if need := m.pos + len(p); need > len(m.buf) {
		grown := make([]byte, need)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:], p)
	m.pos += len(p)
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(m.pos) + offset
	case io.SeekEnd:
		next = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative seek position %d", next)
	}
	m.pos = int(next)
	return next, nil
}
