package console

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseValidCommands(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{"bpm=75", Command{Kind: KindSetBPM, BPM: 75}},
		{"BPM=120", Command{Kind: KindSetBPM, BPM: 120}},
		{"  bpm=30 ", Command{Kind: KindSetBPM, BPM: 30}},
		{"bpm=200", Command{Kind: KindSetBPM, BPM: 200}},
		{"auto", Command{Kind: KindAuto}},
		{"AUTO", Command{Kind: KindAuto}},
		{"wifi on", Command{Kind: KindWifiOn}},
		{"WiFi OFF", Command{Kind: KindWifiOff}},
		{"status", Command{Kind: KindStatus}},
		{"Help", Command{Kind: KindHelp}},
	}

	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsInvalidBPM(t *testing.T) {
	for _, in := range []string{"bpm=29", "bpm=201", "bpm=abc", "bpm=", "bpm=-10"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) should fail", in)
		} else if errors.Is(err, ErrUnknownCommand) {
			t.Fatalf("Parse(%q) should report an invalid value, not an unknown command", in)
		}
	}
}

func TestParseRejectsUnknownCommands(t *testing.T) {
	for _, in := range []string{"restart", "wifi", "wifi maybe", "bpm 75", "x"} {
		if _, err := Parse(in); !errors.Is(err, ErrUnknownCommand) {
			t.Fatalf("Parse(%q) = %v, want ErrUnknownCommand", in, err)
		}
	}
}

func TestListenStreamsCommandsAndReportsErrors(t *testing.T) {
	in := strings.NewReader("bpm=80\n\nnonsense\nwifi off\n")
	var errOut strings.Builder

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch := Listen(ctx, in, &errOut)

	var got []Command
	for cmd := range ch {
		got = append(got, cmd)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(got))
	}
	if got[0].Kind != KindSetBPM || got[0].BPM != 80 {
		t.Fatalf("first command %+v", got[0])
	}
	if got[1].Kind != KindWifiOff {
		t.Fatalf("second command %+v", got[1])
	}
	if !strings.Contains(errOut.String(), "unknown command") {
		t.Fatalf("parse error not reported: %q", errOut.String())
	}
}
