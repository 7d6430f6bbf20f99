package protocol

// Generic radio & protocol constants (platform independent). All higher layers should depend on this file.
const (
	// Frame sizing
	// RAM layout handed to the peripheral:
	//   S0 (0-1 byte) | LENGTH (1 byte) | S1 (0-1 byte) | PAYLOAD (LENGTH bytes)
	// The whole frame never exceeds MaxFrameSize bytes.
	MaxFrameSize = 254

	LengthFieldSize = 1
	MaxS0Size       = 1
	MaxS1Size       = 1

	// RF defaults (can be overridden per radio)
	DefaultChannel = 7
	DefaultAddress = 0xE7E7E7E7
	DefaultPrefix  = 0xE7

	// Highest FREQUENCY value; the carrier sits at 2400 MHz + channel.
	MaxChannel = 100

	// Timeouts (milliseconds)
	DefaultReceiveTimeout  = 100
	DefaultTransmitTimeout = 10
)

// Packet configuration register fields (PCNF0 / PCNF1).
const (
	pcnf0LFLENPos   = 0
	pcnf0LFLENBits  = 4
	pcnf0S0LENPos   = 8
	pcnf0S0LENBits  = 1
	pcnf0S1LENPos   = 16
	pcnf0S1LENBits  = 4
	pcnf1MAXLENPos  = 0
	pcnf1MAXLENBits = 8
	pcnf1STATLENPos = 8
	pcnf1BALENPos   = 16
	pcnf1BALENBits  = 3
	pcnf1ENDIANPos  = 24

	lengthFieldBits = 8
	baseAddressLen  = 3 // 4-byte base + 1-byte prefix
)
