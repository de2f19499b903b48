package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "instruments.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadPreservesOrderAndDerivesNames(t *testing.T) {
	p := writeCatalog(t, t.TempDir(), "instruments:\n  - APOLLO HOSPITALS.CSV\n  - ADANI_PORTS.csv\n  - ITC.csv\n  - ITC.csv\n")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	list := c.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 instruments, got %d", len(list))
	}
	if list[0].Name != "APOLLO HOSPITALS" || list[1].Name != "ADANI PORTS" {
		t.Fatalf("unexpected names %q %q", list[0].Name, list[1].Name)
	}
	def, ok := c.Default()
	if !ok || def.Key != "APOLLO HOSPITALS.CSV" {
		t.Fatalf("default = %+v", def)
	}
	if _, ok := c.Lookup("ITC.csv"); !ok {
		t.Fatalf("lookup ITC.csv failed")
	}
	if _, ok := c.Lookup("itc.csv"); ok {
		t.Fatalf("lookup must be exact")
	}
}

func TestLoadRejectsEmpty(t *testing.T) {
	p := writeCatalog(t, t.TempDir(), "instruments: []\n")
	if _, err := Load(p); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestReloadKeepsListOnError(t *testing.T) {
	dir := t.TempDir()
	p := writeCatalog(t, dir, "instruments: [A.csv, B.csv]\n")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	writeCatalog(t, dir, "instruments: [A.csv, B.csv]\n")
	if changed, err := c.Reload(); err != nil || changed {
		t.Fatalf("unchanged file: changed=%v err=%v", changed, err)
	}

	writeCatalog(t, dir, "instruments: [C.csv]\n")
	if changed, err := c.Reload(); err != nil || !changed {
		t.Fatalf("changed file: changed=%v err=%v", changed, err)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d", c.Len())
	}

	writeCatalog(t, dir, "instruments: [\n")
	if _, err := c.Reload(); err == nil {
		t.Fatalf("expected parse error")
	}
	if def, _ := c.Default(); def.Key != "C.csv" {
		t.Fatalf("list should survive a bad reload, default = %q", def.Key)
	}
}

func TestShippedCatalog(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "instruments.yaml"))
	if err != nil {
		t.Fatalf("load shipped catalog: %v", err)
	}
	if c.Len() != 47 {
		t.Fatalf("expected 47 instruments, got %d", c.Len())
	}
	if def, _ := c.Default(); def.Name != "APOLLO HOSPITALS" {
		t.Fatalf("default = %q", def.Name)
	}
}

func TestRefresherRejectsBadSpec(t *testing.T) {
	c, _ := New([]string{"A.csv"})
	if _, err := NewRefresher(c, "not a cron", nil); err == nil {
		t.Fatalf("expected error")
	}
	r, err := NewRefresher(c, "", nil)
	if err != nil {
		t.Fatalf("empty schedule: %v", err)
	}
	r.Start()
	r.Stop()
}
