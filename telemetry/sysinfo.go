// SPDX-License-Identifier: MIT

package telemetry

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// SysInfo describes the machine a run executed on.
type SysInfo struct {
	Platform string `json:"platform"`
	CPU      string `json:"cpu"`
	Cores    int    `json:"cores"`
	Memory   string `json:"memory"`
}

// CollectSysInfo queries the host. Fields that cannot be determined are left
// at a runtime-derived fallback; the first error encountered is returned
// alongside the partial result.
func CollectSysInfo() (SysInfo, error) {
	info := SysInfo{Platform: runtime.GOOS, Cores: runtime.NumCPU()}
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if h, err := host.Info(); err != nil {
		keep(err)
	} else if h.Platform != "" {
		info.Platform = fmt.Sprintf("%s %s", h.Platform, h.PlatformVersion)
	}
	if c, err := cpu.Info(); err != nil {
		keep(err)
	} else if len(c) > 0 {
		info.CPU = c[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err != nil {
		keep(err)
	} else {
		info.Memory = fmt.Sprintf("%d GB", vm.Total/1024/1024/1024)
	}

	return info, firstErr
}

// Attrs renders s as log attributes.
func (s SysInfo) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("platform", s.Platform),
		slog.String("cpu", s.CPU),
		slog.Int("cores", s.Cores),
		slog.String("memory", s.Memory),
	}
}
