package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FIAP-IA2024/CARDIO-IOT-edge/internal/app/acquire"
)

// Kind discriminates operator commands.
type Kind int

const (
	KindSetBPM Kind = iota + 1
	KindAuto
	KindWifiOn
	KindWifiOff
	KindStatus
	KindHelp
)

// Command is one parsed operator instruction. Commands are applied by the
// runtime at tick boundaries so the dispatch loop stays the single mutator
// of agent state.
type Command struct {
	Kind Kind
	BPM  int
}

// ErrUnknownCommand is returned for input that matches no command.
var ErrUnknownCommand = errors.New("unknown command, type 'help' for a list")

// Parse turns one input line into a Command. Matching is case-insensitive;
// surrounding whitespace is ignored.
func Parse(line string) (Command, error) {
	norm := strings.ToLower(strings.TrimSpace(line))

	switch norm {
	case "auto":
		return Command{Kind: KindAuto}, nil
	case "wifi on":
		return Command{Kind: KindWifiOn}, nil
	case "wifi off":
		return Command{Kind: KindWifiOff}, nil
	case "status":
		return Command{Kind: KindStatus}, nil
	case "help":
		return Command{Kind: KindHelp}, nil
	}

	if v, ok := strings.CutPrefix(norm, "bpm="); ok {
		bpm, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || bpm < acquire.MinManualBPM || bpm > acquire.MaxManualBPM {
			return Command{}, fmt.Errorf("invalid bpm %q: value must be an integer between %d and %d",
				strings.TrimSpace(v), acquire.MinManualBPM, acquire.MaxManualBPM)
		}
		return Command{Kind: KindSetBPM, BPM: bpm}, nil
	}

	return Command{}, ErrUnknownCommand
}

// HelpText lists the operator commands.
func HelpText() string {
	return `commands:
  bpm=<30..200>  set a manual heart-rate override
  auto           return heart rate to automatic derivation
  wifi on        enable connectivity
  wifi off       disable connectivity
  status         print current agent state
  help           show this list`
}

// Listen reads lines from r until ctx is done or r is exhausted, writing
// parse errors to w and sending valid commands on the returned channel. The
// channel closes when the input ends.
func Listen(ctx context.Context, r io.Reader, w io.Writer) <-chan Command {
	out := make(chan Command)

	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			cmd, err := Parse(line)
			if err != nil {
				fmt.Fprintf(w, "error: %v\n", err)
				continue
			}
			select {
			case out <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
