// Package command parses and applies the maintenance directives that ride
// on the reporting exchange. A directive either mutates the persisted
// configuration or asks for a full restart; rejection never touches the
// store.
package command

import (
	"fmt"
	"strings"

	"github.com/gr-butler/wxnode/store"
	logger "github.com/sirupsen/logrus"
)

type Verb byte

const (
	VerbRestart  Verb = 'r'
	VerbWifiName Verb = 's'
	VerbWifiCred Verb = 'p'
	VerbURL      Verb = 'u'
	VerbInterval Verb = 't'
)

// Command is consumed exactly once and then discarded.
type Command struct {
	Verb  Verb
	Param string
}

type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeRestart
)

// paramCap returns the parameter bound for a verb, or false for an unknown
// verb.
func paramCap(v Verb) (int, bool) {
	switch v {
	case VerbRestart:
		return 0, true
	case VerbWifiName:
		return 32, true
	case VerbWifiCred:
		return 64, true
	case VerbURL:
		return 66, true
	case VerbInterval:
		return 3, true
	}
	return 0, false
}

// ParsePath parses the pull-variant grammar /{password}/{verb}/{parameter}.
// The leading slash is assumed already stripped by the request scanner. The
// password is compared in the clear against the stored one; a mismatch is a
// rejection like any other.
func ParsePath(path, password string) (Command, error) {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 2 {
		return Command{}, fmt.Errorf("missing command verb in [%v]", path)
	}
	if parts[0] != password {
		return Command{}, fmt.Errorf("password mismatch")
	}
	if len(parts[1]) != 1 {
		return Command{}, fmt.Errorf("bad verb token [%v]", parts[1])
	}
	cmd := Command{Verb: Verb(parts[1][0])}
	if len(parts) == 3 {
		cmd.Param = parts[2]
	}
	return cmd, nil
}

// ParseBody parses the push-variant grammar !{verb}[={parameter}] from a
// response body. An empty body means no directive is pending.
func ParseBody(body string) (Command, bool, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Command{}, false, nil
	}
	rest, ok := strings.CutPrefix(body, "!")
	if !ok || rest == "" {
		return Command{}, false, fmt.Errorf("missing command verb in [%v]", body)
	}
	verb, param, _ := strings.Cut(rest, "=")
	if len(verb) != 1 {
		return Command{}, false, fmt.Errorf("bad verb token [%v]", verb)
	}
	return Command{Verb: Verb(verb[0]), Param: param}, true, nil
}

// Processor validates commands and applies them to the store.
type Processor struct {
	cfg *store.Store
}

func NewProcessor(cfg *store.Store) *Processor {
	return &Processor{cfg: cfg}
}

// Apply validates the command bounds and mutates the store, or reports an
// OutcomeRestart for the caller to act on. Any error leaves the store
// untouched.
func (p *Processor) Apply(cmd Command) (Outcome, error) {
	bound, known := paramCap(cmd.Verb)
	if !known {
		return 0, fmt.Errorf("unknown verb [%c]", cmd.Verb)
	}
	if len(cmd.Param) > bound {
		return 0, fmt.Errorf("parameter for [%c] exceeds %d chars", cmd.Verb, bound)
	}

	switch cmd.Verb {
	case VerbRestart:
		logger.Info("Restart requested by maintenance command")
		return OutcomeRestart, nil
	case VerbWifiName:
		return OutcomeApplied, p.cfg.Write(store.FieldWifiName, cmd.Param)
	case VerbWifiCred:
		return OutcomeApplied, p.cfg.Write(store.FieldWifiCredential, cmd.Param)
	case VerbURL:
		return OutcomeApplied, p.cfg.Write(store.FieldCollectorURL, cmd.Param)
	case VerbInterval:
		for i := 0; i < len(cmd.Param); i++ {
			if cmd.Param[i] < '0' || cmd.Param[i] > '9' {
				return 0, fmt.Errorf("interval is not numeric [%v]", cmd.Param)
			}
		}
		if cmd.Param == "" {
			return 0, fmt.Errorf("interval parameter missing")
		}
		logger.Infof("Report interval set to [%v]s", cmd.Param)
		return OutcomeApplied, p.cfg.Write(store.FieldReportInterval, cmd.Param)
	}
	return 0, fmt.Errorf("unknown verb [%c]", cmd.Verb)
}
