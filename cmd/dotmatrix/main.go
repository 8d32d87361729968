// Package main provides the dotmatrix CLI application.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"dotmatrix/internal/cartridge"
	"dotmatrix/internal/machine"
	"dotmatrix/internal/testrom"
	"dotmatrix/internal/video"
)

var (
	// ErrTestFailed indicates a diagnostic ROM failed.
	ErrTestFailed = errors.New("test failed")

	// ErrInvalidScale indicates the scale factor is out of valid range.
	ErrInvalidScale = errors.New("scale must be between 1 and 10")
)

// CLI represents the command-line interface structure.
type CLI struct {
	Config string `help:"Path to TOML config file." type:"path"`
	Debug  bool   `help:"Enable debug logging."`

	Info InfoCmd `cmd:"" help:"Display cartridge information."`
	Run  RunCmd  `cmd:"" help:"Run a cartridge image."`
	Test TestCmd `cmd:"" help:"Run a diagnostic ROM and report its verdict."`
}

// InfoCmd displays cartridge header information.
type InfoCmd struct {
	ROM string `arg:"" type:"existingfile" help:"Path to ROM file."`
}

// Run executes the info command.
func (c *InfoCmd) Run(*Config) error {
	data, err := os.ReadFile(c.ROM)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}

	cart, err := cartridge.New(data)
	if err != nil {
		return fmt.Errorf("load cartridge: %w", err)
	}

	h := cart.Header()
	fmt.Printf("ROM Information:\n")
	fmt.Printf("  Title:        %s\n", h.Title())
	fmt.Printf("  Controller:   %s (0x%02X)\n", h.ControllerType, byte(h.ControllerType))
	fmt.Printf("  ROM Size:     %d KiB (%d banks)\n", h.ROMSizeBytes()/1024, h.ROMBanks())
	fmt.Printf("  RAM Size:     %d KiB (%d banks)\n", h.RAMSizeBytes()/1024, h.RAMBanks())
	fmt.Printf("  Battery:      %v\n", cart.HasBattery())
	fmt.Printf("  RTC:          %v\n", h.ControllerType.HasRTC())
	fmt.Printf("  CGB Flag:     0x%02X\n", h.CGBFlag)
	fmt.Printf("  SGB Flag:     0x%02X\n", h.SGBFlag)
	fmt.Printf("  Mask Version: 0x%02X\n", h.MaskROMVersion)

	return nil
}

// RunCmd runs a cartridge image in a window.
type RunCmd struct {
	ROM   string `arg:"" type:"existingfile" help:"Path to ROM file."`
	Scale int    `help:"Display scale factor (1-10), overrides config." default:"0"`
}

// Run executes the run command.
func (c *RunCmd) Run(cfg *Config) error {
	scale := cfg.Scale
	if c.Scale != 0 {
		scale = c.Scale
	}
	if scale < 1 || scale > 10 {
		return fmt.Errorf("%w: got %d", ErrInvalidScale, scale)
	}

	data, err := os.ReadFile(c.ROM)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}

	m, err := machine.New(data)
	if err != nil {
		return err
	}

	display, err := NewDisplay(m, c.ROM, cfg)
	if err != nil {
		return err
	}
	display.LoadBattery()

	ebiten.SetWindowTitle("dotmatrix")
	ebiten.SetWindowSize(video.ScreenWidth*scale, video.ScreenHeight*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(display); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	display.SaveBattery()
	return nil
}

// TestCmd runs a diagnostic ROM and reports its verdict.
type TestCmd struct {
	ROM       string `arg:"" type:"existingfile" help:"Path to diagnostic ROM file."`
	MaxCycles uint64 `help:"Cycle bound for the run (0 = default)."`
	Verbose   bool   `short:"v" help:"Show the ROM's serial output."`
}

// Run executes the test command.
func (c *TestCmd) Run(*Config) error {
	fmt.Printf("Running diagnostic ROM: %s\n", c.ROM)

	result := testrom.Run(c.ROM, c.MaxCycles)
	fmt.Printf("Result: %s (%d cycles)\n", result.String(), result.Cycles)

	if c.Verbose || !result.IsSuccess() {
		fmt.Printf("\nOutput:\n%s\n", result.Output)
	}

	if !result.IsSuccess() {
		return ErrTestFailed
	}
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("dotmatrix"),
		kong.Description("A Game Boy (DMG) emulator written in Go."),
		kong.UsageOnError(),
	)

	if cli.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
