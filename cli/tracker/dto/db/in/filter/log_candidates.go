package filter

// LogCandidates отбирает записи журнала устройства, созданные строго позже SinceMs
// и содержащие хотя бы одну из подстрок Patterns (без учёта регистра).
type LogCandidates struct {
	DeviceID int32
	SinceMs  int64
	Patterns []string
}
