package main

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gr-butler/wxnode/sensors"
	"github.com/gr-butler/wxnode/store"
	"github.com/gr-butler/wxnode/wire"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStation(t *testing.T) (*weatherstation, *int) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	cfg := store.NewMem()
	require.NoError(t, cfg.Write(store.FieldPassword, "hunter2"))
	require.NoError(t, cfg.Write(store.FieldReportInterval, "10"))

	restarts := 0
	w := newStation(sensors.NewFakeSensors(clock), cfg, clock, func(reason string) {
		restarts++
	})
	return w, &restarts
}

func TestReportIntervalBounds(t *testing.T) {
	w, _ := testStation(t)

	assert.Equal(t, 10*time.Second, w.reportInterval())

	require.NoError(t, w.cfg.Write(store.FieldReportInterval, "999"))
	assert.Equal(t, 999*time.Second, w.reportInterval())

	// Garbage or out-of-range values fall back to the default.
	require.NoError(t, w.cfg.Write(store.FieldReportInterval, "0"))
	assert.Equal(t, 10*time.Second, w.reportInterval())
	require.NoError(t, w.cfg.Write(store.FieldReportInterval, "abc"))
	assert.Equal(t, 10*time.Second, w.reportInterval())
	require.NoError(t, w.cfg.Write(store.FieldReportInterval, ""))
	assert.Equal(t, 10*time.Second, w.reportInterval())
}

func TestComputeSnapshotUsesCollaborators(t *testing.T) {
	w, _ := testStation(t)

	w.s.Wind.Pulse()
	w.sampleWind()
	snap := w.computeSnapshot()

	assert.InDelta(t, 68.5, snap.TempF, 1e-9)
	assert.InDelta(t, 48.0, snap.Humidity, 1e-9)
	assert.InDelta(t, 101200.0, snap.Pressure, 1e-9)
	assert.InDelta(t, 0.88*4.90, snap.Battery, 1e-9)
	assert.InDelta(t, 2.9, snap.Light, 1e-9)
	assert.InDelta(t, 1.492, snap.WindSpeed, 1e-9)
	assert.Equal(t, 0, snap.WindDir) // fake vane points north

	// The responder sees the same reading.
	assert.Equal(t, snap, w.snapshot())
}

// collectOnce accepts a single push exchange and replies with body.
func collectOnce(t *testing.T, body string) (addr string, got chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	got = make(chan string, 1)
	go func() {
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		var req strings.Builder
		for {
			line, err := r.ReadString('\n')
			req.WriteString(line)
			if err != nil || line == "\r\n" || line == "\n" {
				break
			}
		}
		got <- req.String()
		fmt.Fprintf(conn, "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\n%s", body)
	}()
	return ln.Addr().String(), got
}

func TestPushReportDeliversSnapshotAndAppliesDirective(t *testing.T) {
	w, restarts := testStation(t)

	addr, got := collectOnce(t, "!t=15\n")
	require.NoError(t, w.cfg.Write(store.FieldCollectorURL, addr+"/weather/submit.php"))

	w.reportFails = 2 // a clean exchange must wipe the slate
	w.reportSnapshot()

	req := <-got
	assert.Contains(t, req, "GET /weather/submit.php?stationData=ws=")
	assert.Contains(t, req, ",l=")

	assert.Equal(t, 0, w.reportFails)
	assert.Equal(t, "15", w.cfg.Read(store.FieldReportInterval))
	assert.Equal(t, 0, *restarts)
}

func TestPushReportRestartDirective(t *testing.T) {
	w, restarts := testStation(t)

	addr, _ := collectOnce(t, "!r\n")
	require.NoError(t, w.cfg.Write(store.FieldCollectorURL, addr+"/weather/submit.php"))

	w.reportSnapshot()
	assert.Equal(t, 1, *restarts)
}

func TestPushReportFailureCeiling(t *testing.T) {
	w, restarts := testStation(t)

	// A listener that is already closed refuses instantly.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()
	require.NoError(t, w.cfg.Write(store.FieldCollectorURL, addr+"/weather/submit.php"))

	w.report("ws=0.0")
	w.report("ws=0.0")
	assert.Equal(t, 0, *restarts)
	w.report("ws=0.0")
	assert.Equal(t, 1, *restarts)
	assert.Equal(t, 3, w.reportFails)
}

func TestPushReportRejectsMalformedDirective(t *testing.T) {
	w, restarts := testStation(t)

	addr, _ := collectOnce(t, "reset please\n")
	require.NoError(t, w.cfg.Write(store.FieldCollectorURL, addr+"/weather/submit.php"))

	before := w.cfg.Read(store.FieldReportInterval)
	w.reportSnapshot()
	assert.Equal(t, before, w.cfg.Read(store.FieldReportInterval))
	assert.Equal(t, 0, *restarts)
	// The exchange itself was clean, so it is not a failure either.
	assert.Equal(t, 0, w.reportFails)
}

// pullExchange runs one inbound request against the responder and returns
// the raw response.
func pullExchange(t *testing.T, w *weatherstation, request string) string {
	t.Helper()
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		w.handleRequest(server)
		close(done)
	}()
	_, err := client.Write([]byte(request))
	require.NoError(t, err)

	resp := make([]byte, 4096)
	n, _ := client.Read(resp)
	client.Close()
	<-done
	return string(resp[:n])
}

func TestPullBarePathReturnsSnapshot(t *testing.T) {
	w, _ := testStation(t)
	w.computeSnapshot()

	resp := pullExchange(t, w, "GET / HTTP/1.1\r\nHost: station\r\n\r\n")
	require.Contains(t, resp, "HTTP/1.1 200 OK")

	_, body, found := strings.Cut(resp, "\r\n\r\n")
	require.True(t, found)
	snap, err := wire.Decode(strings.TrimSpace(body))
	require.NoError(t, err)
	assert.InDelta(t, 68.5, snap.TempF, 1e-9)
}

func TestPullCommandAcceptedAndRejected(t *testing.T) {
	w, restarts := testStation(t)

	resp := pullExchange(t, w, "GET /hunter2/t/30 HTTP/1.1\r\n\r\n")
	assert.Contains(t, resp, "ok")
	assert.Equal(t, "30", w.cfg.Read(store.FieldReportInterval))

	resp = pullExchange(t, w, "GET /wrongpw/t/60 HTTP/1.1\r\n\r\n")
	assert.Contains(t, resp, "error")
	assert.Equal(t, "30", w.cfg.Read(store.FieldReportInterval))

	resp = pullExchange(t, w, "GET /hunter2/x/1 HTTP/1.1\r\n\r\n")
	assert.Contains(t, resp, "error")

	resp = pullExchange(t, w, "GET /hunter2/r HTTP/1.1\r\n\r\n")
	assert.Contains(t, resp, "ok")
	assert.Equal(t, 1, *restarts)
}

// scriptedListener feeds servePull a canned sequence of accept results; a
// closed channel reads as a closed listener.
type scriptedListener struct {
	results chan acceptResult
}

type acceptResult struct {
	conn net.Conn
	err  error
}

func (l *scriptedListener) Accept() (net.Conn, error) {
	r, ok := <-l.results
	if !ok {
		return nil, net.ErrClosed
	}
	return r.conn, r.err
}

func (l *scriptedListener) Close() error   { return nil }
func (l *scriptedListener) Addr() net.Addr { return &net.TCPAddr{} }

func TestPullTransientAcceptErrorKeepsServing(t *testing.T) {
	w, restarts := testStation(t)
	w.computeSnapshot()

	client, server := net.Pipe()
	ln := &scriptedListener{results: make(chan acceptResult, 2)}
	ln.results <- acceptResult{err: errors.New("accept tcp: connection aborted")}
	ln.results <- acceptResult{conn: server}

	done := make(chan struct{})
	go func() {
		w.servePull(ln, time.Minute)
		close(done)
	}()

	// The aborted accept must not kill the loop: the next connection is
	// still answered.
	_, err := client.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	resp := make([]byte, 4096)
	n, _ := client.Read(resp)
	client.Close()
	assert.Contains(t, string(resp[:n]), "HTTP/1.1 200 OK")

	// A closed listener ends the loop quietly, without a restart.
	close(ln.results)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("responder did not exit on listener close")
	}
	assert.Equal(t, 0, *restarts)
}

func TestPullIdleTimeoutRestartsExactlyOnce(t *testing.T) {
	w, restarts := testStation(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		w.servePull(ln, 50*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("idle watchdog never fired")
	}
	assert.Equal(t, 1, *restarts)

	// The loop exited with the restart; a longer idle spell cannot stack
	// further restarts.
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 1, *restarts)
}
