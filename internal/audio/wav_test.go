package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeWAVRoundTrip(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	clip := EncodeWAVPCM16LE(pcm, 16000)

	if len(clip) != wavHeaderSize+len(pcm) {
		t.Fatalf("len(clip) = %d, want %d", len(clip), wavHeaderSize+len(pcm))
	}
	if string(clip[0:4]) != "RIFF" || string(clip[8:12]) != "WAVE" {
		t.Fatalf("bad container magic: %q %q", clip[0:4], clip[8:12])
	}
	if rate := binary.LittleEndian.Uint32(clip[24:28]); rate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", rate)
	}

	payload, rate, err := SplitWAVPCM16LE(clip, 8000)
	if err != nil {
		t.Fatalf("SplitWAVPCM16LE() error = %v", err)
	}
	if rate != 16000 {
		t.Fatalf("rate = %d, want 16000", rate)
	}
	if !bytes.Equal(payload, pcm) {
		t.Fatalf("payload = %v, want %v", payload, pcm)
	}
}

func TestSplitWAVPassesThroughRawPCM(t *testing.T) {
	raw := []byte{9, 9, 9, 9}
	payload, rate, err := SplitWAVPCM16LE(raw, 22050)
	if err != nil {
		t.Fatalf("SplitWAVPCM16LE() error = %v", err)
	}
	if rate != 22050 {
		t.Fatalf("rate = %d, want fallback 22050", rate)
	}
	if !bytes.Equal(payload, raw) {
		t.Fatalf("payload = %v, want unchanged input", payload)
	}
}

func TestEncodeWAVDefaultsBadRate(t *testing.T) {
	clip := EncodeWAVPCM16LE(nil, 0)
	if rate := binary.LittleEndian.Uint32(clip[24:28]); rate != 16000 {
		t.Fatalf("sample rate = %d for zero input, want 16000", rate)
	}
	if size := binary.LittleEndian.Uint32(clip[40:44]); size != 0 {
		t.Fatalf("data size = %d for empty pcm, want 0", size)
	}
}
