package main

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"dotmatrix/internal/joypad"
	"dotmatrix/internal/machine"
	"dotmatrix/internal/video"
)

// Palettes map the four DMG shades to display colors.
var palettes = map[string][4]color.RGBA{
	"green": {
		{0xE0, 0xF8, 0xD0, 0xFF},
		{0x88, 0xC0, 0x70, 0xFF},
		{0x34, 0x68, 0x56, 0xFF},
		{0x08, 0x18, 0x20, 0xFF},
	},
	"gray": {
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xAA, 0xAA, 0xAA, 0xFF},
		{0x55, 0x55, 0x55, 0xFF},
		{0x00, 0x00, 0x00, 0xFF},
	},
}

// keyByName resolves the config file's key names to ebiten keys.
var keyByName = func() map[string]ebiten.Key {
	m := make(map[string]ebiten.Key)
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		m[strings.ToLower(k.String())] = k
	}
	// Aliases for the left/right modifier pairs.
	m["shift"] = ebiten.KeyShift
	m["ctrl"] = ebiten.KeyControl
	return m
}()

// Display implements the ebiten game interface around a machine.
type Display struct {
	machine *machine.Machine
	romPath string

	screen  *ebiten.Image
	pixels  []byte // reused RGBA buffer
	palette [4]color.RGBA
	keyMap  map[ebiten.Key]joypad.Button
}

// NewDisplay creates the frontend for a machine.
func NewDisplay(m *machine.Machine, romPath string, cfg *Config) (*Display, error) {
	palette, ok := palettes[cfg.Palette]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q", cfg.Palette)
	}

	keyMap := make(map[ebiten.Key]joypad.Button)
	bindings := []struct {
		name   string
		button joypad.Button
	}{
		{cfg.Keys.A, joypad.A},
		{cfg.Keys.B, joypad.B},
		{cfg.Keys.Start, joypad.Start},
		{cfg.Keys.Select, joypad.Select},
		{cfg.Keys.Up, joypad.Up},
		{cfg.Keys.Down, joypad.Down},
		{cfg.Keys.Left, joypad.Left},
		{cfg.Keys.Right, joypad.Right},
	}
	for _, b := range bindings {
		key, ok := keyByName[strings.ToLower(b.name)]
		if !ok {
			return nil, fmt.Errorf("unknown key %q for %s", b.name, b.button)
		}
		keyMap[key] = b.button
	}

	return &Display{
		machine: m,
		romPath: romPath,
		screen:  ebiten.NewImage(video.ScreenWidth, video.ScreenHeight),
		pixels:  make([]byte, video.ScreenWidth*video.ScreenHeight*4),
		palette: palette,
		keyMap:  keyMap,
	}, nil
}

// Update runs one frame of emulation. Called 60 times per second by ebiten.
func (d *Display) Update() error {
	d.handleInput()
	d.machine.RunFrame()
	return nil
}

func (d *Display) handleInput() {
	for key, button := range d.keyMap {
		if ebiten.IsKeyPressed(key) {
			d.machine.Joypad.Press(button)
		} else {
			d.machine.Joypad.Release(button)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		d.saveState()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		d.loadState()
	}
}

// Draw converts the framebuffer through the palette and blits it.
func (d *Display) Draw(screen *ebiten.Image) {
	frame := d.machine.Video.Frame()
	for i, shade := range frame {
		c := d.palette[shade&0x03]
		offset := i * 4
		d.pixels[offset] = c.R
		d.pixels[offset+1] = c.G
		d.pixels[offset+2] = c.B
		d.pixels[offset+3] = c.A
	}
	d.screen.WritePixels(d.pixels)
	screen.DrawImage(d.screen, nil)
}

// Layout returns the native screen size; ebiten handles window scaling.
func (d *Display) Layout(_, _ int) (int, int) {
	return video.ScreenWidth, video.ScreenHeight
}

func (d *Display) statePath() string { return d.romPath + ".state" }

func (d *Display) batteryPath() string { return d.romPath + ".sav" }

func (d *Display) saveState() {
	f, err := os.Create(d.statePath())
	if err != nil {
		logrus.WithError(err).Warn("save state failed")
		return
	}
	defer f.Close()
	if err := d.machine.SaveState(f); err != nil {
		logrus.WithError(err).Warn("save state failed")
		return
	}
	logrus.WithField("path", d.statePath()).Info("state saved")
}

func (d *Display) loadState() {
	f, err := os.Open(d.statePath())
	if err != nil {
		logrus.WithError(err).Warn("load state failed")
		return
	}
	defer f.Close()
	if err := d.machine.LoadState(f); err != nil {
		logrus.WithError(err).Warn("load state failed")
		return
	}
	logrus.WithField("path", d.statePath()).Info("state loaded")
}

// LoadBattery restores battery-backed cartridge RAM, if any exists on disk.
func (d *Display) LoadBattery() {
	if !d.machine.Cart.HasBattery() {
		return
	}
	data, err := os.ReadFile(d.batteryPath())
	if err != nil {
		return
	}
	if err := d.machine.LoadBatteryRAM(data); err != nil {
		logrus.WithError(err).Warn("battery load failed")
	}
}

// SaveBattery persists battery-backed cartridge RAM.
func (d *Display) SaveBattery() {
	ram := d.machine.BatteryRAM()
	if ram == nil {
		return
	}
	if err := os.WriteFile(d.batteryPath(), ram, 0o644); err != nil {
		logrus.WithError(err).Warn("battery save failed")
	}
}
