package collab

import "github.com/basicretro/gwbasic-core/value"

// NullScreen discards every call, for tests that exercise statement
// parsing without a real renderer attached.
type NullScreen struct{}

func (NullScreen) Print(text string)                                   {}
func (NullScreen) Pset(x, y, color int)                                {}
func (NullScreen) Preset(x, y, color int)                              {}
func (NullScreen) Line(x1, y1, x2, y2, color int, box, filled bool)    {}
func (NullScreen) Circle(x, y, r int, c int, s, e, a float64)          {}
func (NullScreen) Paint(x, y, color, border int)                       {}
func (NullScreen) Get(x1, y1, x2, y2 int, target string)                {}
func (NullScreen) Put(x, y int, source string, action string)          {}
func (NullScreen) Draw(commands string)                                {}
func (NullScreen) Locate(row, col int, cursor int)                     {}
func (NullScreen) Color(fg, bg, border int)                            {}
func (NullScreen) Palette(attr, color int)                             {}
func (NullScreen) View(x1, y1, x2, y2 int, fill, border int, sc bool)  {}
func (NullScreen) Window(x1, y1, x2, y2 float64, sc bool)              {}
func (NullScreen) SetScreenMode(mode, colorSwitch, active, visible int) {}
func (NullScreen) Pcopy(src, dst int)                                  {}
func (NullScreen) Cls(mode int)                                        {}

// NullSound discards every call.
type NullSound struct{}

func (NullSound) Sound(freq, durationTicks, volume int, background bool) {}
func (NullSound) Noise(source, duration int, background bool)           {}
func (NullSound) Beep()                                                 {}
func (NullSound) Play(macro string)                                     {}

// NullFiles accepts every file operation and does nothing (each method
// returns nil), for a headless test session with no filesystem access.
type NullFiles struct{}

func (NullFiles) Open(name string, mode, access string, fileNum, recLen int) error { return nil }
func (NullFiles) Close(fileNum int) error                                         { return nil }
func (NullFiles) Field(fileNum int, layout []FieldSpec) error                     { return nil }
func (NullFiles) Print(fileNum int, text string) error                            { return nil }
func (NullFiles) Write(fileNum int, values []value.Value) error                   { return nil }
func (NullFiles) Lprint(text string)                                              {}
func (NullFiles) Get(fileNum, record int) error                                   { return nil }
func (NullFiles) Put(fileNum, record int) error                                   { return nil }
func (NullFiles) Lock(fileNum, from, to int) error                                { return nil }
func (NullFiles) Unlock(fileNum, from, to int) error                              { return nil }
func (NullFiles) Ioctl(fileNum int, command string) error                         { return nil }
func (NullFiles) ResetAll() error                                                 { return nil }
func (NullFiles) Width(fileNum, cols int) error                                   { return nil }

// NullDevices discards every call.
type NullDevices struct{}

func (NullDevices) Name(oldName, newName string) error { return nil }
func (NullDevices) Kill(name string) error              { return nil }
func (NullDevices) Files(pattern string)                {}
func (NullDevices) Chdir(path string) error             { return nil }
func (NullDevices) Mkdir(path string) error             { return nil }
func (NullDevices) Rmdir(path string) error             { return nil }
func (NullDevices) Lcopy(mode int)                      {}
func (NullDevices) Motor(on bool)                       {}

// NullAllMemory discards POKE and reads PEEK as 0 outside the variable
// arena, and accepts binary load/save and machine-code CALL without
// doing anything (each returns nil).
type NullAllMemory struct{}

func (NullAllMemory) Poke(segment, offset int, b byte)               {}
func (NullAllMemory) Peek(segment, offset int) byte                  { return 0 }
func (NullAllMemory) Bload(name string, offset int) error            { return nil }
func (NullAllMemory) Bsave(name string, offset, length int) error    { return nil }
func (NullAllMemory) DefSeg(segment int)                             {}
func (NullAllMemory) DefUsr(slot int, address int)                   {}
func (NullAllMemory) Call(address int, args []value.Value) error     { return nil }

// NullEvents discards every trap registration.
type NullEvents struct{}

func (NullEvents) OnEventGosub(event string, enabled bool, target int) {}
func (NullEvents) Com(port int, enabled bool)                          {}
func (NullEvents) Pen(enabled bool)                                    {}
func (NullEvents) Timer(interval float64, enabled bool)                {}
func (NullEvents) PlayTrap(voicesLeft int, enabled bool)                {}
func (NullEvents) Strig(trigger int, enabled bool)                      {}
func (NullEvents) Key(slot int, enabled bool)                           {}

// NullClock returns fixed values, useful for deterministic tests.
type NullClock struct{}

func (NullClock) Date() string            { return "01-01-2026" }
func (NullClock) Time() string            { return "00:00:00" }
func (NullClock) SetDate(s string) error  { return nil }
func (NullClock) SetTime(s string) error  { return nil }

// NullStick discards joystick trigger configuration.
type NullStick struct{}

func (NullStick) StrigStatement(trigger int, enabled bool) {}
