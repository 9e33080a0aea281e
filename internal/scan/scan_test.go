package scan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0755))
}

func TestRun(t *testing.T) {
	base := t.TempDir()

	// 2023/Alpha has current models.
	alpha := filepath.Join(base, "2023", "Alpha")
	touch(t, filepath.Join(alpha, ProjectSubpath, "b_model.RVT"))
	touch(t, filepath.Join(alpha, ProjectSubpath, "A_model.rvt"))
	touch(t, filepath.Join(alpha, ProjectSubpath, "notes.txt"))

	// 2023/Beta only has archived ones.
	beta := filepath.Join(base, "2023", "Beta")
	mkdir(t, filepath.Join(beta, ProjectSubpath))
	touch(t, filepath.Join(beta, ArchiveSubpath, "old", "v1.rvt"))
	touch(t, filepath.Join(beta, ArchiveSubpath, "final.rvt"))
	touch(t, filepath.Join(beta, ArchiveSubpath, "readme.pdf"))

	// 2024 exists but is empty; 2022 does not exist.
	mkdir(t, filepath.Join(base, "2024"))

	var out bytes.Buffer
	totals, err := Run(context.Background(), Options{BaseDir: base, FromYear: 2022, ToYear: 2024}, &out)
	require.NoError(t, err)

	assert.Equal(t, Totals{
		YearsScanned:    2,
		YearDirsMissing: 1,
		ProjectsChecked: 2,
		ProjectsWithRVT: 1,
		RVTFiles:        2,
	}, totals)

	report := out.String()
	assert.True(t, strings.HasPrefix(report, "Revit scan\n==============================\n\nYear 2022\n"))
	assert.Contains(t, report, "2022: year directory not found -> "+filepath.Join(base, "2022"))
	assert.Contains(t, report, "2024: no project folders inside "+filepath.Join(base, "2024"))
	assert.Contains(t, report, "2023 | Alpha\n  Found 2 .rvt file(s) within ")

	current := filepath.Join(alpha, ProjectSubpath)
	first := strings.Index(report, filepath.Join(current, "A_model.rvt"))
	second := strings.Index(report, filepath.Join(current, "b_model.RVT"))
	assert.True(t, first >= 0 && second > first, "models sorted case-insensitively")
	assert.NotContains(t, report, "notes.txt")

	assert.Contains(t, report, "2023 | Beta\n  No .rvt files in ")
	assert.Contains(t, report, "    ├── old/\n")
	assert.Contains(t, report, "    │   └── "+filepath.Join(beta, ArchiveSubpath, "old", "v1.rvt")+"\n")
	assert.Contains(t, report, "    └── "+filepath.Join(beta, ArchiveSubpath, "final.rvt")+"\n")
	assert.NotContains(t, report, "readme.pdf")

	assert.True(t, strings.HasSuffix(report, "Total .rvt files found (01_REVIT only): 2\n"))
}

func TestRun_MissingCurrentFolder(t *testing.T) {
	base := t.TempDir()
	mkdir(t, filepath.Join(base, "2025", "Gamma"))

	var out bytes.Buffer
	totals, err := Run(context.Background(), Options{BaseDir: base, FromYear: 2025, ToYear: 2025}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.ProjectsChecked)
	assert.Contains(t, out.String(), "  Current folder missing -> ")
	assert.Contains(t, out.String(), "Archive directory not found -> ")
}

func TestRun_Canceled(t *testing.T) {
	base := t.TempDir()
	mkdir(t, filepath.Join(base, "2025", "Gamma"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{BaseDir: base, FromYear: 2025, ToYear: 2025}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_InvalidRange(t *testing.T) {
	_, err := Run(context.Background(), Options{FromYear: 2025, ToYear: 2022}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestTree_Empty(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"))

	assert.Equal(t, []string{
		"Tree for " + dir + ":",
		"  (no folders or .rvt files found)",
	}, Tree(dir))
}

func TestTree_DirsFirst(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.rvt"))
	mkdir(t, filepath.Join(dir, "Zeta"))
	mkdir(t, filepath.Join(dir, "alpha"))

	assert.Equal(t, []string{
		"Tree for " + dir + ":",
		"├── alpha/",
		"├── Zeta/",
		"└── " + filepath.Join(dir, "a.rvt"),
	}, Tree(dir))
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0755))
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func TestRun_FollowsSymlinks(t *testing.T) {
	base := t.TempDir()
	elsewhere := t.TempDir()

	// 2024/Delta is a link to a project kept on another volume.
	delta := filepath.Join(elsewhere, "Delta")
	touch(t, filepath.Join(delta, ProjectSubpath, "tower.rvt"))
	shared := filepath.Join(elsewhere, "shared.rvt")
	touch(t, shared)
	symlink(t, shared, filepath.Join(delta, ProjectSubpath, "linked.rvt"))
	symlink(t, filepath.Join(elsewhere, "gone.rvt"), filepath.Join(delta, ProjectSubpath, "dangling.rvt"))
	symlink(t, delta, filepath.Join(base, "2024", "Delta"))

	var out bytes.Buffer
	totals, err := Run(context.Background(), Options{BaseDir: base, FromYear: 2024, ToYear: 2024}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.ProjectsChecked)
	assert.Equal(t, 2, totals.RVTFiles)
	assert.Contains(t, out.String(), "linked.rvt")
	assert.NotContains(t, out.String(), "dangling.rvt")
}

func TestTree_FollowsSymlinkedFolders(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(t.TempDir(), "old")
	touch(t, filepath.Join(old, "v1.rvt"))
	symlink(t, old, filepath.Join(dir, "old"))
	symlink(t, dir, filepath.Join(dir, "loop"))

	assert.Equal(t, []string{
		"Tree for " + dir + ":",
		"├── loop/",
		"└── old/",
		"    └── " + filepath.Join(dir, "old", "v1.rvt"),
	}, Tree(dir))
}
