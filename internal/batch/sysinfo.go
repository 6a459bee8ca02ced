package batch

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"
)

// memInfo is a point-in-time snapshot of host memory, in bytes. Zero values
// mean the information was unavailable.
type memInfo struct {
	Total     uint64
	Available uint64
}

// UsedPercent returns memory utilisation in [0,100], or 0 when unknown.
func (m memInfo) UsedPercent() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Total-m.Available) / float64(m.Total) * 100
}

// readMemInfo parses /proc/meminfo. Any failure yields a zero snapshot; the
// sizer treats that as "no adjustment".
func readMemInfo() memInfo {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return memInfo{}
	}
	defer f.Close()

	var info memInfo
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			info.Total = kb * 1024
		case "MemAvailable:":
			info.Available = kb * 1024
		}
	}
	return info
}

// cpuTimes holds the cumulative jiffy counters from the aggregate cpu line
// of /proc/stat.
type cpuTimes struct {
	Idle  uint64
	Total uint64
}

// readCPUTimes parses the first line of /proc/stat. A zero value means the
// read failed.
func readCPUTimes() cpuTimes {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return cpuTimes{}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return cpuTimes{}
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 5 || fields[0] != "cpu" {
		return cpuTimes{}
	}

	var times cpuTimes
	for i, field := range fields[1:] {
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return cpuTimes{}
		}
		times.Total += v
		// idle is field 4, iowait field 5 (1-based after "cpu").
		if i == 3 || i == 4 {
			times.Idle += v
		}
	}
	return times
}

// sampleCPUPercent measures CPU utilisation over the interval from two
// /proc/stat snapshots. Returns 0 when the counters are unreadable.
func sampleCPUPercent(interval time.Duration) float64 {
	before := readCPUTimes()
	if before.Total == 0 {
		return 0
	}
	time.Sleep(interval)
	after := readCPUTimes()

	totalDelta := after.Total - before.Total
	if after.Total <= before.Total || totalDelta == 0 {
		return 0
	}
	idleDelta := after.Idle - before.Idle
	return float64(totalDelta-idleDelta) / float64(totalDelta) * 100
}
