// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package umx

import "errors"

// Encoding errors
var (
	ErrFrameTooLarge      = errors.New("umx: frame exceeds maximum frame size")
	ErrBufferTooSmall     = errors.New("umx: destination buffer too small")
	ErrTextTooLong        = errors.New("umx: text exceeds maximum text length")
	ErrInvalidText        = errors.New("umx: text is not valid UTF-8")
	ErrCommandIDUnset     = errors.New("umx: command id not configured")
	ErrDuplicateCommandID = errors.New("umx: command id assigned twice")
	ErrUnknownVariant     = errors.New("umx: unknown variant")
)

// Decoding errors
var (
	ErrBadMagic         = errors.New("umx: bad frame magic")
	ErrChecksumMismatch = errors.New("umx: checksum mismatch")
	ErrTruncated        = errors.New("umx: truncated frame")
	ErrTrailingBytes    = errors.New("umx: trailing bytes after frame")
)
