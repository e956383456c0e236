package types

const (
	TargetChipSTM32F401 = "STM32F401"
	TargetChipESP32     = "ESP32"

	DefaultTargetChip = TargetChipSTM32F401
)

// KnownTargetChips lists the compilation targets the compiler service
// currently supports. The set is extensible, unknown chips are stored as-is.
var KnownTargetChips = []string{
	TargetChipSTM32F401,
	TargetChipESP32,
}
