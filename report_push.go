package main

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gr-butler/wxnode/command"
	"github.com/gr-butler/wxnode/env"
	"github.com/gr-butler/wxnode/store"
	"github.com/gr-butler/wxnode/wire"
	logger "github.com/sirupsen/logrus"
)

// Push variant: the node initiates the exchange. One GET, all snapshot
// fields packed into the stationData query parameter; whatever follows the
// response headers is a candidate maintenance directive.

// reportSnapshot is the push variant's periodic task: compute, then send.
func (w *weatherstation) reportSnapshot() {
	w.report(wire.Encode(w.computeSnapshot()))
}

// report sends the snapshot to the configured collector. Connect or
// exchange failures count against a ceiling; hitting it restarts the node.
func (w *weatherstation) report(encoded string) {
	hostport, path, err := splitCollectorURL(w.cfg.Read(store.FieldCollectorURL))
	if err != nil {
		logger.Errorf("Bad collector URL [%v]", err)
		w.reportFailed()
		return
	}

	conn, err := net.DialTimeout("tcp", hostport, env.ExchangeTimeout)
	if err != nil {
		logger.Errorf("Failed to reach collector [%v]", err)
		w.reportFailed()
		return
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(env.ExchangeTimeout))

	fmt.Fprintf(conn, "GET /%s?stationData=%s HTTP/1.1\r\nHost: %s\r\nConnection: close\r\n\r\n",
		path, encoded, hostport)

	sc := wire.NewScanner(env.ExchangeBufferSize)
	r := bufio.NewReader(conn)
	for {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		sc.Feed(b)
	}

	if sc.State() != wire.StateBody {
		logger.Errorf("Collector response had no header/body boundary")
		w.reportFailed()
		return
	}

	// A clean boundary means the collector answered; the slate is wiped.
	w.reportFails = 0
	if w.reportLed != nil {
		go w.reportLed.Flash()
	}

	w.applyDirective(sc.Body())
}

// applyDirective hands any embedded command text to the processor. A bad
// directive aborts without mutation; only `r` escalates to a restart.
func (w *weatherstation) applyDirective(body string) {
	cmd, ok, err := command.ParseBody(body)
	if err != nil {
		logger.Errorf("Malformed maintenance directive [%v]", err)
		return
	}
	if !ok {
		return
	}
	out, err := w.proc.Apply(cmd)
	if err != nil {
		logger.Errorf("Maintenance directive rejected [%v]", err)
		return
	}
	if out == command.OutcomeRestart {
		w.restart("maintenance command")
	}
}

func (w *weatherstation) reportFailed() {
	w.reportFails++
	logger.Errorf("Report failure %d of %d", w.reportFails, env.MaxReportFailures)
	if w.reportFails >= env.MaxReportFailures {
		w.restart("too many consecutive report failures")
	}
}

// splitCollectorURL splits the stored "host:port/path" form. The node does
// not speak URLs in general; this is the one shape it stores.
func splitCollectorURL(raw string) (hostport, path string, err error) {
	if raw == "" {
		return "", "", fmt.Errorf("collector URL not configured")
	}
	hostport, path, found := strings.Cut(raw, "/")
	if !found || hostport == "" {
		return "", "", fmt.Errorf("collector URL [%v] missing path", raw)
	}
	return hostport, path, nil
}
