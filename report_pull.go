package main

import (
	"bufio"
	"errors"
	"net"
	"time"

	"github.com/gr-butler/wxnode/command"
	"github.com/gr-butler/wxnode/env"
	"github.com/gr-butler/wxnode/store"
	"github.com/gr-butler/wxnode/wire"
	logger "github.com/sirupsen/logrus"
)

// Pull variant: the node is the responder. A bare path returns the current
// snapshot; /{password}/{verb}/{parameter} drives the command processor.

// The response header never varies, so it is kept whole.
const pullHeader = "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nConnection: close\r\n\r\n"

// servePull accepts inbound exchanges until the idle watchdog fires. If
// nothing connects within the idle window the network interface is assumed
// wedged and the node restarts - once; the accept loop ends with it.
func (w *weatherstation) servePull(ln net.Listener, idle time.Duration) {
	logger.Infof("Accepting collector connections on [%v]", ln.Addr())
	tl, _ := ln.(*net.TCPListener)
	for {
		if tl != nil {
			_ = tl.SetDeadline(time.Now().Add(idle))
		}
		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				w.restart("no inbound request within idle timeout")
				return
			}
			if errors.Is(err, net.ErrClosed) {
				logger.Info("Responder listener closed")
				return
			}
			// Transient accept failures (ECONNABORTED and friends) must not
			// kill the responder; the idle watchdog still bounds a wedged
			// interface.
			logger.Errorf("Accept failed, retrying [%v]", err)
			continue
		}
		w.handleRequest(conn)
	}
}

func (w *weatherstation) handleRequest(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(env.ExchangeTimeout))

	// Read until the request-line terminator; header lines beyond it are
	// of no interest.
	sc := wire.NewScanner(env.ExchangeBufferSize)
	r := bufio.NewReader(conn)
	for sc.State() == wire.StateFirstLine {
		b, err := r.ReadByte()
		if err != nil {
			logger.Errorf("Inbound request ended early [%v]", err)
			return
		}
		sc.Feed(b)
	}

	path, err := wire.RequestPath(sc.FirstLine())
	if err != nil {
		// Malformed exchange: log and abort, nothing mutates.
		logger.Errorf("Rejecting inbound request [%v]", err)
		return
	}

	if path == "" {
		w.respond(conn, wire.Encode(w.snapshot()))
		if w.reportLed != nil {
			go w.reportLed.Flash()
		}
		return
	}

	cmd, err := command.ParsePath(path, w.cfg.Read(store.FieldPassword))
	if err != nil {
		logger.Errorf("Rejecting maintenance request [%v]", err)
		w.respond(conn, "error")
		return
	}
	out, err := w.proc.Apply(cmd)
	if err != nil {
		logger.Errorf("Maintenance request rejected [%v]", err)
		w.respond(conn, "error")
		return
	}
	w.respond(conn, "ok")
	if out == command.OutcomeRestart {
		_ = conn.Close()
		w.restart("maintenance command")
	}
}

func (w *weatherstation) respond(conn net.Conn, body string) {
	if _, err := conn.Write([]byte(pullHeader + body + "\n")); err != nil {
		logger.Errorf("Failed to write response [%v]", err)
	}
}
