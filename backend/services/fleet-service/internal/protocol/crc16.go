package protocol

// CRC16CCITT computes the CCITT-16 checksum: polynomial 0x1021, initial
// register 0xFFFF, MSB-first, no final XOR. The display controllers verify
// exactly this variant, so it must not drift.
func CRC16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
