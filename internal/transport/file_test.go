package transport

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanderkohnstamm/mavshark/internal/codec"
)

func writeCapture(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	rw, err := codec.NewReadWriter(&buf, codec.Identity{SystemID: 1, ComponentID: 1})
	require.NoError(t, err)

	require.NoError(t, rw.WriteMessage(&common.MessageHeartbeat{
		Type:           common.MAV_TYPE_QUADROTOR,
		Autopilot:      common.MAV_AUTOPILOT_ARDUPILOTMEGA,
		SystemStatus:   common.MAV_STATE_ACTIVE,
		MavlinkVersion: 3,
	}))
	require.NoError(t, rw.WriteMessage(&common.MessageAttitude{
		TimeBootMs: 1000,
		Roll:       0.1,
		Pitch:      -0.2,
	}))

	path := filepath.Join(t.TempDir(), "capture.tlog")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestFileTransportReplaysFrames(t *testing.T) {
	path := writeCapture(t)

	tr, err := Open(Spec{Kind: KindFile, Path: path}, Options{})
	require.NoError(t, err)
	defer tr.Close()

	env, err := tr.Receive(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "HEARTBEAT", env.MessageName)
	assert.Equal(t, uint8(1), env.SystemID)

	env, err = tr.Receive(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ATTITUDE", env.MessageName)

	_, err = tr.Receive(time.Second)
	assert.True(t, errors.Is(err, ErrEndOfStream))
}

func TestFileTransportRejectsSend(t *testing.T) {
	path := writeCapture(t)

	tr, err := Open(Spec{Kind: KindFile, Path: path}, Options{})
	require.NoError(t, err)
	defer tr.Close()

	err = tr.SendMessage(&common.MessageHeartbeat{Type: common.MAV_TYPE_GCS})
	assert.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(Spec{Kind: KindFile, Path: "/nonexistent/capture.tlog"}, Options{})
	require.Error(t, err)

	var connErr *ConnectionError
	assert.True(t, errors.As(err, &connErr))
}
