package websocket

import (
	"encoding/binary"

	"github.com/indigo-web/utils/uf"
)

type Opcode byte

// RFC 6455, 5.2
const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

// Close status codes (RFC 6455, 7.4.1)
const (
	CloseNormal        uint16 = 1000
	CloseGoingAway     uint16 = 1001
	CloseInternalError uint16 = 1011
)

const (
	finBit = 0x80

	maxShortLength = 125
	extended16     = 126
	extended64     = 127
	maxCloseReason = maxShortLength - 2
)

// AppendFrame appends a single unmasked final frame. Server frames are never masked.
func AppendFrame(dst []byte, op Opcode, payload []byte) []byte {
	dst = append(dst, finBit|byte(op))

	switch n := len(payload); {
	case n <= maxShortLength:
		dst = append(dst, byte(n))
	case n <= 0xFFFF:
		dst = append(dst, extended16)
		dst = binary.BigEndian.AppendUint16(dst, uint16(n))
	default:
		dst = append(dst, extended64)
		dst = binary.BigEndian.AppendUint64(dst, uint64(n))
	}

	return append(dst, payload...)
}

func TextFrame(text string) []byte {
	return AppendFrame(make([]byte, 0, len(text)+10), OpText, uf.S2B(text))
}

// CloseFrame carries the status code and the reason. Reasons longer than the control frame
// limit allows are cut.
func CloseFrame(code uint16, reason string) []byte {
	if len(reason) > maxCloseReason {
		reason = reason[:maxCloseReason]
	}

	payload := binary.BigEndian.AppendUint16(make([]byte, 0, 2+len(reason)), code)
	payload = append(payload, reason...)

	return AppendFrame(make([]byte, 0, 2+len(payload)), OpClose, payload)
}
