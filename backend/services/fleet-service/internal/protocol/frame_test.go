package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func mustBuild(t *testing.T, command byte, payload []byte) []byte {
	t.Helper()
	frame, err := BuildFrame(command, payload)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	return frame
}

func TestBuildFrameLayout(t *testing.T) {
	payload := []byte("hello")
	frame := mustBuild(t, CmdPriceUpdate, payload)

	if frame[0] != STX {
		t.Fatalf("expected STX 0x02, got 0x%02X", frame[0])
	}
	if frame[len(frame)-1] != ETX {
		t.Fatalf("expected ETX 0x03, got 0x%02X", frame[len(frame)-1])
	}
	if frame[1] != CmdPriceUpdate {
		t.Fatalf("expected command 0x%02X, got 0x%02X", CmdPriceUpdate, frame[1])
	}
	if got := int(frame[2])<<8 | int(frame[3]); got != len(payload) {
		t.Fatalf("declared length %d, want %d", got, len(payload))
	}
	if len(frame) != MinFrameLen+len(payload) {
		t.Fatalf("frame length %d, want %d", len(frame), MinFrameLen+len(payload))
	}
}

func TestBuildFrameRejectsOversizedPayload(t *testing.T) {
	if _, err := BuildFrame(CmdPriceUpdate, make([]byte, MaxPayloadLen+1)); err == nil {
		t.Fatal("expected error for oversized payload")
	}
	if _, err := BuildFrame(CmdPriceUpdate, make([]byte, MaxPayloadLen)); err != nil {
		t.Fatalf("max-size payload should build: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte{},
		[]byte("x"),
		[]byte(`{"prices":{"regular":"3.45","diesel":"3.25"}}`),
		{0x02, 0x03, 0x00, 0xFF}, // markers inside the payload are fine
		bytes.Repeat([]byte{0xAB}, 4096),
	}

	for _, payload := range payloads {
		frame := mustBuild(t, 0x7F, payload)
		parsed, ok := Parse(frame)
		if !ok {
			t.Fatalf("parse failed for payload of %d bytes", len(payload))
		}
		if parsed.Command != 0x7F {
			t.Fatalf("command = 0x%02X, want 0x7F", parsed.Command)
		}
		if !bytes.Equal(parsed.Payload, payload) {
			t.Fatalf("payload mismatch: got %v, want %v", parsed.Payload, payload)
		}
	}
}

func TestValidateFailClosed(t *testing.T) {
	base := mustBuild(t, CmdPriceUpdate, []byte("payload"))

	mutate := func(index int, value byte) []byte {
		frame := append([]byte(nil), base...)
		frame[index] = value
		return frame
	}

	cases := []struct {
		name   string
		frame  []byte
		reason string
	}{
		{"too short", base[:MinFrameLen-1], "frame too short"},
		{"bad stx", mutate(0, 0x00), "invalid STX"},
		{"bad etx", mutate(len(base)-1, 0x00), "invalid ETX"},
		{"length mismatch", mutate(3, base[3]+1), "frame length mismatch"},
		{"crc corrupted", mutate(len(base)-2, base[len(base)-2]^0xFF), "checksum mismatch"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate(tc.frame)
			if res.Valid {
				t.Fatal("expected invalid frame")
			}
			if !strings.HasPrefix(res.Reason, tc.reason) {
				t.Fatalf("reason %q, want prefix %q", res.Reason, tc.reason)
			}
			if _, ok := Parse(tc.frame); ok {
				t.Fatal("parse must fail when validation fails")
			}
		})
	}
}

func TestValidateCorruptedAck(t *testing.T) {
	frame := AckFrame()
	// zero out both CRC bytes
	frame[len(frame)-3] = 0x00
	frame[len(frame)-2] = 0x00

	res := Validate(frame)
	if res.Valid {
		t.Fatal("expected checksum failure")
	}
	if !strings.HasPrefix(res.Reason, "checksum mismatch: got 0x0000, want ") {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
}

func TestAckNakFrames(t *testing.T) {
	ack, ok := Parse(AckFrame())
	if !ok || ack.Command != CmdAck || string(ack.Payload) != "ACK" {
		t.Fatalf("unexpected ack frame: %+v", ack)
	}

	nak, ok := Parse(NakFrame(""))
	if !ok || nak.Command != CmdNak || string(nak.Payload) != "NAK" {
		t.Fatalf("unexpected default nak frame: %+v", nak)
	}

	nak, ok = Parse(NakFrame("bad checksum"))
	if !ok || string(nak.Payload) != "bad checksum" {
		t.Fatalf("unexpected nak message: %+v", nak)
	}
}

func TestCompleteRecognizesPartialFrames(t *testing.T) {
	frame := mustBuild(t, CmdPriceUpdate, []byte("split across segments"))

	for i := 1; i < len(frame); i++ {
		if Complete(frame[:i]) {
			t.Fatalf("prefix of %d bytes reported complete", i)
		}
	}
	if !Complete(frame) {
		t.Fatal("full frame reported incomplete")
	}

	// trailing garbage after a complete frame does not matter
	if !Complete(append(append([]byte(nil), frame...), 0xFF)) {
		t.Fatal("frame with trailing bytes reported incomplete")
	}

	if Complete([]byte{0x01, 0x02, 0x03}) {
		t.Fatal("garbage reported complete")
	}
}
