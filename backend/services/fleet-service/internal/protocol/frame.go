package protocol

import (
	"encoding/binary"
	"fmt"
)

// Frame layout: STX(1) | COMMAND(1) | LENGTH(2, BE) | PAYLOAD | CRC16(2, BE) | ETX(1).
// LENGTH covers the payload only; the CRC is computed over the payload only.
const (
	STX byte = 0x02
	ETX byte = 0x03

	cmdOffset     = 1
	lenOffset     = 2
	payloadOffset = 4

	headerLen  = 4 // STX + COMMAND + LENGTH
	trailerLen = 3 // CRC16 + ETX

	// MinFrameLen is an empty-payload frame.
	MinFrameLen = headerLen + trailerLen
	// MaxPayloadLen is bounded by the 2-byte length field.
	MaxPayloadLen = 0xFFFF
)

// Command bytes understood by the display controllers.
const (
	CmdPriceUpdate byte = 0x50
	CmdAck         byte = 0x06
	CmdNak         byte = 0x15
)

// Frame is a decoded protocol frame.
type Frame struct {
	Command byte
	Payload []byte
}

// ValidationResult reports frame validity; Reason is set only when invalid.
type ValidationResult struct {
	Valid  bool
	Reason string
}

// BuildFrame encodes a command and payload into wire bytes. It fails only
// when the payload exceeds the 2-byte length field.
func BuildFrame(command byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadLen {
		return nil, fmt.Errorf("protocol: payload too large: %d bytes", len(payload))
	}

	frame := make([]byte, headerLen+len(payload)+trailerLen)
	frame[0] = STX
	frame[cmdOffset] = command
	binary.BigEndian.PutUint16(frame[lenOffset:], uint16(len(payload)))
	copy(frame[payloadOffset:], payload)
	binary.BigEndian.PutUint16(frame[payloadOffset+len(payload):], CRC16CCITT(payload))
	frame[len(frame)-1] = ETX
	return frame, nil
}

// Validate checks a frame fail-closed and reports exactly one reason, in
// order: length, STX, ETX, declared length, checksum.
func Validate(frame []byte) ValidationResult {
	if len(frame) < MinFrameLen {
		return ValidationResult{Reason: "frame too short"}
	}
	if frame[0] != STX {
		return ValidationResult{Reason: "invalid STX"}
	}
	if frame[len(frame)-1] != ETX {
		return ValidationResult{Reason: "invalid ETX"}
	}

	declared := int(binary.BigEndian.Uint16(frame[lenOffset:]))
	if declared != len(frame)-MinFrameLen {
		return ValidationResult{Reason: "frame length mismatch"}
	}

	payload := frame[payloadOffset : payloadOffset+declared]
	got := binary.BigEndian.Uint16(frame[payloadOffset+declared:])
	want := CRC16CCITT(payload)
	if got != want {
		return ValidationResult{Reason: fmt.Sprintf("checksum mismatch: got 0x%04X, want 0x%04X", got, want)}
	}

	return ValidationResult{Valid: true}
}

// Parse decodes a frame, returning false whenever Validate would reject it.
// The payload is copied out of the input slice.
func Parse(frame []byte) (*Frame, bool) {
	if res := Validate(frame); !res.Valid {
		return nil, false
	}
	declared := int(binary.BigEndian.Uint16(frame[lenOffset:]))
	payload := make([]byte, declared)
	copy(payload, frame[payloadOffset:payloadOffset+declared])
	return &Frame{Command: frame[cmdOffset], Payload: payload}, true
}

// Complete reports whether buf holds a structurally complete frame: STX at
// the start, enough bytes for the declared length, ETX at the predicted
// offset. It says nothing about checksum validity.
func Complete(buf []byte) bool {
	if len(buf) < MinFrameLen || buf[0] != STX {
		return false
	}
	declared := int(binary.BigEndian.Uint16(buf[lenOffset:]))
	total := headerLen + declared + trailerLen
	if len(buf) < total {
		return false
	}
	return buf[total-1] == ETX
}

// AckFrame builds the fixed acknowledgement frame.
func AckFrame() []byte {
	frame, _ := BuildFrame(CmdAck, []byte("ACK"))
	return frame
}

// NakFrame builds a negative acknowledgement carrying message, or "NAK" when
// message is empty.
func NakFrame(message string) []byte {
	if message == "" {
		message = "NAK"
	}
	frame, _ := BuildFrame(CmdNak, []byte(message))
	return frame
}
