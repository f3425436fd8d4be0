package channel

// Hardware count names used by the default templates.
const (
	CountCPUCores = "cpu_cores"
	CountDisks    = "disks"
	CountFans     = "fans"
)

// Template names of the default indexed families.
const (
	FamilyCoreUtil  = "cpu_core_util"
	FamilyCoreClock = "cpu_core_clock"
	FamilyDiskRead  = "disk_read"
	FamilyDiskWrite = "disk_write"
	FamilyDiskTemp  = "disk_temp"
	FamilyFanSpeed  = "fan_speed"
)

// DefaultScalars is the built-in catalog of single-instance channels.
func DefaultScalars() []Descriptor {
	return []Descriptor{
		{Key: "cpu_util", Label: "CPU", Unit: "%", Limits: Limits{Min: 0, Max: 100, Caution: At(70), Warn: At(90)}},
		{Key: "cpu_temp", Label: "CPU Temp", Unit: "C", Limits: Limits{Min: 20, Max: 100, Caution: At(75), Warn: At(88)}},
		{Key: "cpu_clock", Label: "CPU Clock", Unit: "MHz", Limits: Limits{Min: 0, Max: 5500}},
		{Key: "cpu_power", Label: "CPU Power", Unit: "W", Precision: 1, Limits: Limits{Min: 0, Max: 250, Warn: At(200)}},
		{Key: "cpu_fan", Label: "CPU Fan", Unit: "rpm", Limits: Limits{Min: 0, Max: 2500}},
		{Key: "gpu_util", Label: "GPU", Unit: "%", Limits: Limits{Min: 0, Max: 100, Caution: At(80), Warn: At(95)}},
		{Key: "gpu_temp", Label: "GPU Temp", Unit: "C", Limits: Limits{Min: 20, Max: 100, Caution: At(75), Warn: At(85)}},
		{Key: "gpu_clock", Label: "GPU Clock", Unit: "MHz", Limits: Limits{Min: 0, Max: 3000}},
		{Key: "gpu_mem_used", Label: "VRAM", Unit: "MB", Limits: Limits{Min: 0, Max: 24576}},
		{Key: "gpu_power", Label: "GPU Power", Unit: "W", Precision: 1, Limits: Limits{Min: 0, Max: 450, Warn: At(380)}},
		{Key: "gpu_fan", Label: "GPU Fan", Unit: "%", Limits: Limits{Min: 0, Max: 100}},
		{Key: "fps", Label: "FPS", Limits: Limits{Min: 0, Max: 240}},
		{Key: "ram_used", Label: "RAM", Unit: "%", Limits: Limits{Min: 0, Max: 100, Caution: At(80), Warn: At(92)}},
		{Key: "net_down", Label: "Down", Format: FormatByteRate, Limits: Limits{Min: 0, Max: 125_000_000}},
		{Key: "net_up", Label: "Up", Format: FormatByteRate, Limits: Limits{Min: 0, Max: 125_000_000}},
		{Key: "desktop_resolution", Label: "Display", Format: FormatText},
		{Key: "cpu_name", Label: "CPU", Format: FormatText},
		{Key: "gpu_name", Label: "GPU", Format: FormatText},
	}
}

// DefaultTemplates is the built-in catalog of indexed channel families.
func DefaultTemplates() []Template {
	return []Template{
		{Name: FamilyCoreUtil, KeyFormat: "cpu_core_util_%d", LabelFormat: "Core %d", Unit: "%", Limits: Limits{Min: 0, Max: 100}, Count: CountCPUCores},
		{Name: FamilyCoreClock, KeyFormat: "cpu_core_clock_%d", LabelFormat: "Core %d", Unit: "MHz", Limits: Limits{Min: 0, Max: 5500}, Count: CountCPUCores},
		{Name: FamilyDiskRead, KeyFormat: "disk_read_%d", LabelFormat: "Disk %d R", Format: FormatByteRate, Limits: Limits{Min: 0, Max: 3_500_000_000}, Count: CountDisks},
		{Name: FamilyDiskWrite, KeyFormat: "disk_write_%d", LabelFormat: "Disk %d W", Format: FormatByteRate, Limits: Limits{Min: 0, Max: 3_500_000_000}, Count: CountDisks},
		{Name: FamilyDiskTemp, KeyFormat: "disk_temp_%d", LabelFormat: "Disk %d", Unit: "C", Limits: Limits{Min: 20, Max: 80, Warn: At(65)}, Count: CountDisks},
		{Name: FamilyFanSpeed, KeyFormat: "fan_speed_%d", LabelFormat: "Fan %d", Unit: "rpm", Limits: Limits{Min: 0, Max: 2500}, Count: CountFans},
	}
}

// NewDefaultRegistry builds the built-in catalog for the given hardware.
func NewDefaultRegistry(counts HardwareCounts, overrides map[string]Override) (*Registry, error) {
	return NewRegistry(DefaultScalars(), DefaultTemplates(), counts, overrides)
}
