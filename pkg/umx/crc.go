// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

// CRC8 computes the CRC-8/CCITT checksum (polynomial 0x07, initial value
// 0x00, no reflection, no final xor) of data.
func CRC8(data []byte) uint8 {
	crc := uint8(crcInitial)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
