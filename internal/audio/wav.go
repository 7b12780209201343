package audio

import (
	"encoding/binary"
	"fmt"
)

const wavHeaderSize = 44

// EncodeWAVPCM16LE wraps raw PCM16LE mono samples in a WAV container so the
// transcription boundary receives a self-describing clip.
func EncodeWAVPCM16LE(pcm []byte, sampleRate int) []byte {
	const (
		numChannels   = 1
		bitsPerSample = 16
		audioFormat   = 1 // PCM
	)
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	dataSize := uint32(len(pcm))
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	out := make([]byte, wavHeaderSize, wavHeaderSize+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], 36+dataSize)
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], audioFormat)
	binary.LittleEndian.PutUint16(out[22:24], numChannels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], byteRate)
	binary.LittleEndian.PutUint16(out[32:34], blockAlign)
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], dataSize)
	return append(out, pcm...)
}

// SplitWAVPCM16LE strips a WAV header and returns the PCM payload and sample
// rate. Non-WAV input is returned unchanged with the fallback rate, so raw
// PCM clips pass through.
func SplitWAVPCM16LE(clip []byte, fallbackRate int) ([]byte, int, error) {
	if len(clip) < wavHeaderSize || string(clip[0:4]) != "RIFF" || string(clip[8:12]) != "WAVE" {
		return clip, fallbackRate, nil
	}
	if string(clip[12:16]) != "fmt " {
		return nil, 0, fmt.Errorf("wav: missing fmt chunk")
	}
	rate := int(binary.LittleEndian.Uint32(clip[24:28]))
	if string(clip[36:40]) != "data" {
		return nil, 0, fmt.Errorf("wav: missing data chunk")
	}
	size := int(binary.LittleEndian.Uint32(clip[40:44]))
	payload := clip[wavHeaderSize:]
	if size >= 0 && size <= len(payload) {
		payload = payload[:size]
	}
	return payload, rate, nil
}
