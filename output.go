package cvrp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// CollectSysInfo describes the machine the solver runs on.
func CollectSysInfo() SysInfo {
	info := SysInfo{}
	if hostStat, err := host.Info(); err == nil {
		info.Platform = hostStat.Platform
	}
	if cpuStat, err := cpu.Info(); err == nil && len(cpuStat) > 0 {
		info.CPU = cpuStat[0].ModelName
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		info.RAM = fmt.Sprintf("%d GB", vmStat.Total/1024/1024/1024)
	}
	return info
}

// WriteSolution writes solutionEdges.txt ("i j value" per selected edge) and
// coords.txt ("x y demand" per node) into dir.
func WriteSolution(dir string, inst *CVRPInstance, sol *CVRPSolution) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	err := writeLines(filepath.Join(dir, "solutionEdges.txt"), func(w *bufio.Writer) {
		for _, e := range sol.Edges {
			fmt.Fprintf(w, "%d %d %d\n", e[0], e[1], e[2])
		}
	})
	if err != nil {
		return err
	}
	return writeLines(filepath.Join(dir, "coords.txt"), func(w *bufio.Writer) {
		for i, xy := range inst.NodeCoordinates {
			fmt.Fprintf(w, "%g %g %d\n", xy[0], xy[1], inst.Demands[i])
		}
	})
}

func writeLines(path string, fill func(w *bufio.Writer)) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	w := bufio.NewWriter(f)
	fill(w)
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}

// WriteInstanceJSON stores inst (with its solution) the way the generator
// writes instances, keeping number arrays on one line.
func WriteInstanceJSON(path string, inst *CVRPInstance) error {
	jsonInst, err := json.MarshalIndent(inst, "", "\t")
	if err != nil {
		return errors.Wrap(err, "encoding instance")
	}
	jsonInst = []byte(SanitizeJsonArrayLineBreaks(string(jsonInst)))
	return errors.Wrapf(os.WriteFile(path, jsonInst, 0644), "writing %s", path)
}
