package main

import (
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// backend drives one platform's mixer command.
type backend interface {
	SetPercent(pct int) error
	Percent() (int, error)
	ToggleMute() error
}

// runner executes a command and returns its combined output.
type runner func(name string, args ...string) (string, error)

func execRunner(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func backendFor() backend {
	switch runtime.GOOS {
	case "darwin":
		return osascript{run: execRunner}
	case "linux":
		return amixer{run: execRunner}
	default:
		return nil
	}
}

type osascript struct {
	run runner
}

func (o osascript) SetPercent(pct int) error {
	_, err := o.run("osascript", "-e", fmt.Sprintf("set volume output volume %d", pct))
	return err
}

func (o osascript) Percent() (int, error) {
	out, err := o.run("osascript", "-e", "output volume of (get volume settings)")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(out))
}

func (o osascript) ToggleMute() error {
	_, err := o.run("osascript", "-e", "set volume output muted (not (output muted of (get volume settings)))")
	return err
}

type amixer struct {
	run runner
}

var amixerPercent = regexp.MustCompile(`\[(\d+)%\]`)

func (a amixer) SetPercent(pct int) error {
	_, err := a.run("amixer", "-q", "-M", "set", "Master", fmt.Sprintf("%d%%", pct))
	return err
}

func (a amixer) Percent() (int, error) {
	out, err := a.run("amixer", "-M", "get", "Master")
	if err != nil {
		return 0, err
	}
	m := amixerPercent.FindStringSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("no volume in amixer output")
	}
	return strconv.Atoi(m[1])
}

func (a amixer) ToggleMute() error {
	_, err := a.run("amixer", "-q", "set", "Master", "toggle")
	return err
}
