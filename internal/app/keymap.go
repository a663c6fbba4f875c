package app

// Key binding constants used in handleKey.
const (
	KeyQuit         = "q"
	KeyQuitUpper    = "Q"
	KeyCtrlC        = "ctrl+c"
	KeySpace        = " "
	KeyTab          = "tab"
	KeyShiftTab     = "shift+tab"
	KeyUp           = "up"
	KeyDown         = "down"
	KeyJ            = "j"
	KeyK            = "k"
	KeyEnter        = "enter"
	KeyEsc          = "esc"
	KeyBackspace    = "backspace"
	KeyEnableCamera = "e"
	KeyCalibrate    = "c"
	KeySave         = "s"
	KeySpeak        = "p"
	KeyDelete       = "d"
	KeyTheme        = "t"
	KeySearch       = "/"
)
