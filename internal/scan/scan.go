// Package scan discovers plot files on disk and groups them by physical
// drive.
package scan

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/emmanuelapp/scavenger/internal/display"
	"github.com/emmanuelapp/scavenger/internal/driveio"
	"github.com/emmanuelapp/scavenger/internal/plot"
)

// DriveGroup is one physical drive's ordered plot sequence, newest first.
type DriveGroup struct {
	DriveID string
	Plots   []*plot.Plot
}

// Result is the outcome of scanning every configured plot_dirs entry.
type Result struct {
	Drives      map[string]*DriveGroup
	TotalNonces uint64
}

// Scan walks every directory in plotDirs, opens each plot file, and groups
// them by the physical device backing it. Parse errors and size mismatches
// are warned and the file skipped, never fatal.
func Scan(plotDirs []string, useDirectIO bool, d display.Displayer) *Result {
	drives := make(map[string]*DriveGroup)
	var totalNonces uint64

	for _, dir := range plotDirs {
		info, err := os.Stat(dir)
		if err != nil {
			d.Warn("path %s does not exist", dir)
			continue
		}
		if !info.IsDir() {
			d.Warn("path %s is not a directory", dir)
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			d.Warn("cannot read directory %s: %v", dir, err)
			continue
		}

		var numPlots int
		var localNonces uint64
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())

			p, err := plot.Open(path, useDirectIO)
			if err != nil {
				d.Warn("%v", err)
				continue
			}
			if useDirectIO && !p.UsesDirectIO() {
				d.Warn("direct io disabled (too few nonces or unknown sector size): plot=%s", p.Name)
			}

			driveID, err := driveio.DeviceID(path)
			if err != nil {
				d.Warn("cannot resolve device for %s: %v", path, err)
				driveID = dir // degrade to per-directory grouping
			}

			group, ok := drives[driveID]
			if !ok {
				group = &DriveGroup{DriveID: driveID}
				drives[driveID] = group
			}
			group.Plots = append(group.Plots, p)

			localNonces += p.Nonces
			numPlots++
		}

		d.ShowDirectoryCapacity(dir, numPlots, localNonces)
		totalNonces += localNonces
		if numPlots == 0 {
			d.Warn("no plots in %s", dir)
		}
	}

	d.ShowTotalCapacity(totalNonces)

	for _, group := range drives {
		sortByModTimeDesc(group.Plots)
	}
	warnOverlaps(drives, d)

	return &Result{Drives: drives, TotalNonces: totalNonces}
}

// sortByModTimeDesc orders plots newest-first so recent work is scanned
// first after a restart.
func sortByModTimeDesc(plots []*plot.Plot) {
	sort.SliceStable(plots, func(i, j int) bool {
		return plots[i].ModTime().After(plots[j].ModTime())
	})
}

// warnOverlaps logs a warning for every pair of plots sharing a nonce
// range under the same account, across the whole scan - a warning, never
// a rejection.
func warnOverlaps(drives map[string]*DriveGroup, d display.Displayer) {
	var all []*plot.Plot
	for _, group := range drives {
		all = append(all, group.Plots...)
	}

	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.AccountID != b.AccountID {
				continue
			}
			if overlaps, count := a.OverlapsWith(b); overlaps {
				d.Warn("overlap: %s and %s share %d nonces!", a.Name, b.Name, count)
			}
		}
	}
}
