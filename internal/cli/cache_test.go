package cli

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/stackchart/pkg/cache"
)

func TestCachePathCommand(t *testing.T) {
	c := testCLI(t)
	var out bytes.Buffer
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	want, _ := cacheDir()
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	c := testCLI(t)
	dir, _ := cacheDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "layout:abc", []byte("{}"), time.Hour); err != nil {
		t.Fatal(err)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := fc.Get(ctx, "layout:abc"); ok {
		t.Error("entry survived cache clear")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache root removed: %v", err)
	}
}

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"default under home", "", filepath.Join(home, ".cache", appName)},
		{"xdg cache home", "/tmp/xdg-cache", filepath.Join("/tmp/xdg-cache", appName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			got, err := cacheDir()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

// cachedFiles counts the entries stored below dir.
func cachedFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	return n
}

func TestRenderFillsCacheThatClearEmpties(t *testing.T) {
	c := testCLI(t)
	dir, _ := cacheDir()
	input := writeFixture(t, "sales.csv", salesCSV)
	render := func(extra ...string) {
		t.Helper()
		root := c.RootCommand()
		root.SetArgs(append([]string{"render", input, "--dims", "2", "-o", input + ".svg"}, extra...))
		if err := root.Execute(); err != nil {
			t.Fatal(err)
		}
	}

	render("--no-cache")
	if n := cachedFiles(t, dir); n != 0 {
		t.Fatalf("--no-cache wrote %d cache entries", n)
	}

	render()
	if n := cachedFiles(t, dir); n != 2 {
		t.Fatalf("render cached %d entries, want layout + svg", n)
	}

	root := c.RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if n := cachedFiles(t, dir); n != 0 {
		t.Errorf("%d entries survived cache clear", n)
	}
}
