package protocol

// Mode is the operating state reported by the radio's STATE register.
// It is never cached: every query decodes a fresh register read.
type Mode uint8

const (
	ModeDisabled     Mode = 0
	ModeRxRampUp     Mode = 1
	ModeRxIdle       Mode = 2
	ModeReceiving    Mode = 3
	ModeRxDisabling  Mode = 4
	ModeTxRampUp     Mode = 9
	ModeTxIdle       Mode = 10
	ModeTransmitting Mode = 11
	ModeTxDisabling  Mode = 12

	// ModeUnrecognized is returned alongside a *ModeError for codes outside
	// the set above.
	ModeUnrecognized Mode = 0xFF
)

// Modes lists every defined state in hardware order.
var Modes = [...]Mode{
	ModeDisabled,
	ModeRxRampUp,
	ModeRxIdle,
	ModeReceiving,
	ModeRxDisabling,
	ModeTxRampUp,
	ModeTxIdle,
	ModeTransmitting,
	ModeTxDisabling,
}

// DecodeMode maps a raw STATE value to a Mode. Reserved or transient codes
// are a data condition: they yield ModeUnrecognized and a *ModeError.
func DecodeMode(raw uint32) (Mode, error) {
	switch raw {
	case 0, 1, 2, 3, 4, 9, 10, 11, 12:
		return Mode(raw), nil
	}
	return ModeUnrecognized, &ModeError{Code: raw}
}

func (m Mode) String() string {
	switch m {
	case ModeDisabled:
		return "Disabled"
	case ModeRxRampUp:
		return "RxRampUp"
	case ModeRxIdle:
		return "RxIdle"
	case ModeReceiving:
		return "Receiving"
	case ModeRxDisabling:
		return "RxDisabling"
	case ModeTxRampUp:
		return "TxRampUp"
	case ModeTxIdle:
		return "TxIdle"
	case ModeTransmitting:
		return "Transmitting"
	case ModeTxDisabling:
		return "TxDisabling"
	}
	return "Unrecognized"
}

func (m Mode) IsReceive() bool { return m >= ModeRxRampUp && m <= ModeRxDisabling }

func (m Mode) IsTransmit() bool { return m >= ModeTxRampUp && m <= ModeTxDisabling }

func (m Mode) IsIdle() bool { return m == ModeRxIdle || m == ModeTxIdle }

func (m Mode) IsRampUp() bool { return m == ModeRxRampUp || m == ModeTxRampUp }

func (m Mode) IsDisabling() bool { return m == ModeRxDisabling || m == ModeTxDisabling }
