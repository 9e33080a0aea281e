// Package scan audits a project archive for Revit models.
//
// Projects live under <base>/<year>/<project>. Current models are expected in
// 01_CDS/01_CURRENT/01_REVIT; when that folder has none, the project's
// 01_CDS/02_ARCHIVE folder is printed as a tree so someone can find where the
// models went.
package scan

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	// ProjectSubpath holds a project's current models.
	ProjectSubpath = filepath.Join("01_CDS", "01_CURRENT", "01_REVIT")
	// ArchiveSubpath holds a project's superseded models.
	ArchiveSubpath = filepath.Join("01_CDS", "02_ARCHIVE")
)

const rvtExt = ".rvt"

// Options selects what to scan.
type Options struct {
	BaseDir  string
	FromYear int
	ToYear   int
}

// Totals summarizes a scan.
type Totals struct {
	YearsScanned    int
	YearDirsMissing int
	ProjectsChecked int
	ProjectsWithRVT int
	RVTFiles        int
}

type report struct {
	w   *bufio.Writer
	err error
}

func (r *report) line(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format+"\n", args...)
}

// Run scans every year in [FromYear, ToYear] and writes the report to w.
func Run(ctx context.Context, opts Options, w io.Writer) (Totals, error) {
	var t Totals
	if opts.FromYear > opts.ToYear {
		return t, fmt.Errorf("from year %d is after to year %d", opts.FromYear, opts.ToYear)
	}

	r := &report{w: bufio.NewWriter(w)}
	r.line("Revit scan")
	r.line("%s", strings.Repeat("=", 30))

	for year := opts.FromYear; year <= opts.ToYear; year++ {
		yearDir := filepath.Join(opts.BaseDir, strconv.Itoa(year))
		r.line("")
		r.line("Year %d", year)
		r.line("%s", strings.Repeat("-", 40))

		if !isDir(yearDir) {
			r.line("%d: year directory not found -> %s", year, yearDir)
			t.YearDirsMissing++
			continue
		}
		t.YearsScanned++

		projects, err := subdirs(yearDir)
		if err != nil {
			return t, fmt.Errorf("failed to list %s: %w", yearDir, err)
		}
		if len(projects) == 0 {
			r.line("%d: no project folders inside %s", year, yearDir)
			continue
		}

		for _, name := range projects {
			if err := ctx.Err(); err != nil {
				return t, err
			}
			t.ProjectsChecked++
			scanProject(r, &t, year, filepath.Join(yearDir, name))
		}
	}

	r.line("")
	r.line("Totals")
	r.line("------")
	r.line("Years scanned: %d", t.YearsScanned)
	r.line("Year directories missing: %d", t.YearDirsMissing)
	r.line("Projects checked: %d", t.ProjectsChecked)
	r.line("Projects with .rvt files: %d", t.ProjectsWithRVT)
	r.line("Total .rvt files found (01_REVIT only): %d", t.RVTFiles)

	if r.err != nil {
		return t, fmt.Errorf("failed to write report: %w", r.err)
	}
	return t, r.w.Flush()
}

func scanProject(r *report, t *Totals, year int, projectDir string) {
	r.line("%d | %s", year, filepath.Base(projectDir))

	target := filepath.Join(projectDir, ProjectSubpath)
	var models []string
	if !isDir(target) {
		r.line("  Current folder missing -> %s", target)
	} else {
		models = rvtFiles(target)
	}

	if len(models) > 0 {
		t.ProjectsWithRVT++
		t.RVTFiles += len(models)
		r.line("  Found %d .rvt file(s) within %s", len(models), target)
		for _, m := range models {
			r.line("    - %s", filepath.Join(target, m))
		}
		return
	}

	r.line("  No .rvt files in %s", target)
	archive := filepath.Join(projectDir, ArchiveSubpath)
	r.line("  Checking archive -> %s", archive)
	for _, l := range Tree(archive) {
		r.line("    %s", l)
	}
}

// Tree renders the folders and .rvt files under root, folders first, names compared
// case-insensitively. Unreadable folders are shown empty. Symlinked folders are
// followed once; a link back into a folder already shown is listed but not entered.
func Tree(root string) []string {
	if _, err := os.Stat(root); err != nil {
		return []string{"Archive directory not found -> " + root}
	}

	lines := []string{fmt.Sprintf("Tree for %s:", root)}
	seen := map[string]bool{}
	var walk func(dir, prefix string)
	walk = func(dir, prefix string) {
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			if seen[real] {
				return
			}
			seen[real] = true
		}
		entries := treeEntries(dir)
		for i, e := range entries {
			last := i == len(entries)-1
			connector, extension := "├──", "│   "
			if last {
				connector, extension = "└──", "    "
			}
			path := filepath.Join(dir, e.name)
			if e.dir {
				lines = append(lines, fmt.Sprintf("%s%s %s/", prefix, connector, e.name))
				walk(path, prefix+extension)
			} else {
				lines = append(lines, fmt.Sprintf("%s%s %s", prefix, connector, path))
			}
		}
	}
	walk(root, "")

	if len(lines) == 1 {
		lines = append(lines, "  (no folders or .rvt files found)")
	}
	return lines
}

// entry is a directory entry with symlinks resolved.
type entry struct {
	name string
	dir  bool
}

// readDir lists dir in name order. A symlink is reported as what it points to;
// a dangling one is dropped.
func readDir(dir string) ([]entry, error) {
	all, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]entry, 0, len(all))
	for _, e := range all {
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			isDir = info.IsDir()
		}
		out = append(out, entry{name: e.Name(), dir: isDir})
	}
	return out, nil
}

func treeEntries(dir string) []entry {
	all, err := readDir(dir)
	if err != nil {
		return nil
	}
	var out []entry
	for _, e := range all {
		if e.dir || isRVT(e.name) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].dir != out[j].dir {
			return out[i].dir
		}
		return strings.ToLower(out[i].name) < strings.ToLower(out[j].name)
	})
	return out
}

func rvtFiles(dir string) []string {
	entries, err := readDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.dir && isRVT(e.name) {
			out = append(out, e.name)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func subdirs(dir string) ([]string, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.dir {
			out = append(out, e.name)
		}
	}
	return out, nil
}

func isRVT(name string) bool {
	return strings.EqualFold(filepath.Ext(name), rvtExt)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
