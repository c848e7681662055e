// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The umxctl Authors

package transport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"

	"github.com/uartmatrix/umxctl/pkg/umx"
)

func TestRecorder_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 123456000, time.UTC)
	rec.now = func() time.Time { return fixed }

	f1 := umx.MustAssemble([]byte{byte(umx.CmdClear)})
	f2 := umx.MustAssemble([]byte{byte(umx.CmdSwitchMode), 1})
	require.NoError(t, rec.Record("abc", f1))
	require.NoError(t, rec.Record("abc", f2))
	require.NoError(t, rec.Close())

	records, err := ReadRecording(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Time().Equal(fixed))
	assert.Equal(t, "abc", records[1].Session)

	frames, err := Frames(records)
	require.NoError(t, err)
	assert.Equal(t, f1.Bytes(), frames[0].Bytes())
	assert.Equal(t, f2.Bytes(), frames[1].Bytes())
}

func TestRecorder_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.cbor")

	for i := 0; i < 2; i++ {
		rec, err := CreateRecorder(path)
		require.NoError(t, err)
		require.NoError(t, rec.Record("s", umx.MustAssemble([]byte{byte(umx.CmdParamRequest)})))
		require.NoError(t, rec.Close())
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := ReadRecording(f)
	require.NoError(t, err)
	assert.Len(t, records, 2, "recordings append")
}

func TestReadRecording_Truncated(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	require.NoError(t, rec.Record("s", umx.MustAssemble([]byte{byte(umx.CmdClear)})))
	require.NoError(t, rec.Record("s", umx.MustAssemble([]byte{byte(umx.CmdClear)})))

	data := buf.Bytes()
	records, err := ReadRecording(bytes.NewReader(data[:len(data)-2]))
	assert.Error(t, err)
	assert.Len(t, records, 1)
}

func TestFrames_CorruptRecord(t *testing.T) {
	raw := umx.MustAssemble([]byte{byte(umx.CmdClear)}).Bytes()
	raw[len(raw)-1] ^= 0xFF

	data, err := cbor.Marshal(Record{TimeMicros: 1, Frame: raw})
	require.NoError(t, err)

	records, err := ReadRecording(bytes.NewReader(data))
	require.NoError(t, err)
	_, err = Frames(records)
	assert.ErrorIs(t, err, umx.ErrChecksumMismatch)
}

func TestToPortInfo(t *testing.T) {
	ports := toPortInfo([]*enumerator.PortDetails{
		{Name: "/dev/ttyUSB1", IsUSB: true, VID: "1a86", PID: "7523", Product: "USB Serial"},
		{Name: "/dev/ttyS0"},
	})

	require.Len(t, ports, 2)
	assert.Equal(t, "/dev/ttyS0", ports[0].Name)
	assert.Equal(t, "/dev/ttyS0", ports[0].String())
	assert.Equal(t, "/dev/ttyUSB1  USB 1a86:7523  USB Serial", ports[1].String())
}
