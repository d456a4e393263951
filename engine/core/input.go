package core

// Key code definitions
type KeyCode uint16

const (
	KEY_UNKNOWN KeyCode = 0x00
	KEY_ENTER   KeyCode = 0x0D
	KEY_ESCAPE  KeyCode = 0x1B
	KEY_SPACE   KeyCode = 0x20

	KEY_0 KeyCode = 0x30
	KEY_1 KeyCode = 0x31
	KEY_2 KeyCode = 0x32
	KEY_3 KeyCode = 0x33
	KEY_4 KeyCode = 0x34
	KEY_5 KeyCode = 0x35
	KEY_6 KeyCode = 0x36
	KEY_7 KeyCode = 0x37
	KEY_8 KeyCode = 0x38
	KEY_9 KeyCode = 0x39

	KEY_A KeyCode = 0x41
	KEY_B KeyCode = 0x42
	KEY_C KeyCode = 0x43
	KEY_D KeyCode = 0x44
	KEY_E KeyCode = 0x45
	KEY_F KeyCode = 0x46
	KEY_G KeyCode = 0x47
	KEY_H KeyCode = 0x48
	KEY_I KeyCode = 0x49
	KEY_J KeyCode = 0x4A
	KEY_K KeyCode = 0x4B
	KEY_L KeyCode = 0x4C
	KEY_M KeyCode = 0x4D
	KEY_N KeyCode = 0x4E
	KEY_O KeyCode = 0x4F
	KEY_P KeyCode = 0x50
	KEY_Q KeyCode = 0x51
	KEY_R KeyCode = 0x52
	KEY_S KeyCode = 0x53
	KEY_T KeyCode = 0x54
	KEY_U KeyCode = 0x55
	KEY_V KeyCode = 0x56
	KEY_W KeyCode = 0x57
	KEY_X KeyCode = 0x58
	KEY_Y KeyCode = 0x59
	KEY_Z KeyCode = 0x5A

	KEY_NUMPAD0 KeyCode = 0x60
	KEY_NUMPAD1 KeyCode = 0x61
	KEY_NUMPAD2 KeyCode = 0x62
	KEY_NUMPAD3 KeyCode = 0x63
	KEY_NUMPAD4 KeyCode = 0x64
	KEY_NUMPAD5 KeyCode = 0x65
	KEY_NUMPAD6 KeyCode = 0x66
	KEY_NUMPAD7 KeyCode = 0x67
	KEY_NUMPAD8 KeyCode = 0x68
	KEY_NUMPAD9 KeyCode = 0x69

	KEY_NUMPAD_ENTER KeyCode = 0x6C
)

// Digit reports the decimal value of a digit key, top row or numpad.
func (k KeyCode) Digit() (uint32, bool) {
	switch {
	case k >= KEY_0 && k <= KEY_9:
		return uint32(k - KEY_0), true
	case k >= KEY_NUMPAD0 && k <= KEY_NUMPAD9:
		return uint32(k - KEY_NUMPAD0), true
	}
	return 0, false
}

func (k KeyCode) String() string {
	switch {
	case k == KEY_ENTER || k == KEY_NUMPAD_ENTER:
		return "Enter"
	case k == KEY_ESCAPE:
		return "Escape"
	case k == KEY_SPACE:
		return "Space"
	case k >= KEY_0 && k <= KEY_9, k >= KEY_A && k <= KEY_Z:
		return string(rune(k))
	case k >= KEY_NUMPAD0 && k <= KEY_NUMPAD9:
		return "Numpad" + string(rune('0'+k-KEY_NUMPAD0))
	}
	return "Unknown"
}
