package health

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"tetherworker/pkg/types"
)

// DefaultInterval is how long CPU utilization is measured for.
const DefaultInterval = 100 * time.Millisecond

// Sampler reads host resource usage.
type Sampler interface {
	// CPUPercent blocks for interval and returns aggregate utilization over it.
	CPUPercent(ctx context.Context, interval time.Duration) (float64, error)
	VirtualMemory(ctx context.Context) (types.MemorySnapshot, error)
}

// HostSampler is the gopsutil-backed Sampler.
type HostSampler struct{}

func (HostSampler) CPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	pcts, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, fmt.Errorf("cpu percent: %w", err)
	}
	if len(pcts) == 0 {
		return 0, fmt.Errorf("cpu percent: no samples")
	}
	return pcts[0], nil
}

func (HostSampler) VirtualMemory(ctx context.Context) (types.MemorySnapshot, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return types.MemorySnapshot{}, fmt.Errorf("virtual memory: %w", err)
	}
	return fromVirtualMemory(vm), nil
}

func fromVirtualMemory(vm *mem.VirtualMemoryStat) types.MemorySnapshot {
	return types.MemorySnapshot{
		Total:     vm.Total,
		Available: vm.Available,
		Percent:   vm.UsedPercent,
		Used:      vm.Used,
		Free:      vm.Free,
		Active:    vm.Active,
		Inactive:  vm.Inactive,
		Buffers:   vm.Buffers,
		Cached:    vm.Cached,
		Shared:    vm.Shared,
		Slab:      vm.Slab,
	}
}
