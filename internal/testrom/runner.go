// Package testrom runs diagnostic cartridges that report through the serial
// port and classifies their verdict.
package testrom

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"dotmatrix/internal/machine"
)

// ErrNoVerdict indicates the ROM produced no verdict within the cycle bound.
var ErrNoVerdict = errors.New("no verdict within cycle bound")

// DefaultMaxCycles bounds a run at roughly 30 emulated seconds, which is
// generous for every known diagnostic ROM.
const DefaultMaxCycles = 30 * machine.CyclesPerSecond

// Result is the outcome of one diagnostic run.
type Result struct {
	Output string
	Cycles uint64
	Passed bool
	Failed bool
	Error  error
}

// Run executes the ROM at romPath until it prints a verdict or maxCycles
// elapse. Pass 0 for the default bound. Runs are deterministic: the same ROM
// and bound always produce the same result.
func Run(romPath string, maxCycles uint64) *Result {
	result := &Result{}

	// #nosec G304 -- romPath comes from the CLI invocation
	data, err := os.ReadFile(romPath)
	if err != nil {
		result.Error = fmt.Errorf("read rom: %w", err)
		return result
	}

	m, err := machine.New(data)
	if err != nil {
		result.Error = err
		return result
	}
	return run(m, maxCycles)
}

// RunImage is Run for an in-memory cartridge image.
func RunImage(rom []byte, maxCycles uint64) *Result {
	result := &Result{}
	m, err := machine.New(rom)
	if err != nil {
		result.Error = err
		return result
	}
	return run(m, maxCycles)
}

func run(m *machine.Machine, maxCycles uint64) *Result {
	if maxCycles == 0 {
		maxCycles = DefaultMaxCycles
	}
	result := &Result{}

	const slice = 65536
	for m.CPU.Cycles < maxCycles {
		m.RunCycles(slice)

		output := string(m.SerialOutput())
		if strings.Contains(output, "Failed") {
			result.Failed = true
			break
		}
		if strings.Contains(output, "Passed") {
			result.Passed = true
			break
		}
	}

	result.Output = string(m.SerialOutput())
	result.Cycles = m.CPU.Cycles
	if !result.Passed && !result.Failed {
		result.Error = ErrNoVerdict
	}
	return result
}

// String returns a one-word summary of the result.
func (r *Result) String() string {
	switch {
	case r.Passed:
		return "PASSED"
	case r.Failed:
		return "FAILED"
	case errors.Is(r.Error, ErrNoVerdict):
		return "TIMEOUT"
	case r.Error != nil:
		return fmt.Sprintf("ERROR: %v", r.Error)
	default:
		return "UNKNOWN"
	}
}

// IsSuccess reports a clean pass.
func (r *Result) IsSuccess() bool {
	return r.Passed && !r.Failed && r.Error == nil
}
