package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// CacheStore is the part of the local cache the check inspects.
type CacheStore interface {
	ListKeys(ctx context.Context) ([]string, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// CacheCheck inspects the data directory and the local cache database.
// Fixing removes expired cache entries and backups of corrupted databases.
type CacheCheck struct {
	dataDir string
	dbFile  string
	store   CacheStore
}

func NewCacheCheck(dataDir, dbFile string, store CacheStore) *CacheCheck {
	return &CacheCheck{dataDir: dataDir, dbFile: dbFile, store: store}
}

func (c *CacheCheck) Name() string {
	return "Local Cache"
}

func (c *CacheCheck) Run(ctx context.Context, fix bool) Result {
	result := Result{Name: c.Name()}

	if err := checkWritable(c.dataDir); err != nil {
		result.add("data dir", StatusFail, err.Error())
		return result
	}
	result.add("data dir", StatusPass, c.dataDir)

	keys, err := c.store.ListKeys(ctx)
	if err != nil {
		result.add("database", StatusFail, err.Error())
	} else {
		result.add("database", StatusPass, fmt.Sprintf("%d cached entries", len(keys)))
	}

	if fix {
		n, err := c.store.SweepExpired(ctx)
		if err != nil {
			result.add("expired entries", StatusFail, err.Error())
		} else {
			result.add("expired entries", StatusPass, fmt.Sprintf("removed %d", n))
		}
	}

	backups, _ := filepath.Glob(filepath.Join(c.dataDir, c.dbFile+".corrupt.*"))
	if len(backups) == 0 {
		return result
	}

	if !fix {
		result.Items = append(result.Items, CheckItem{
			Label:   "corrupt backups",
			Status:  StatusWarn,
			Detail:  fmt.Sprintf("%d left over from database recovery", len(backups)),
			Fixable: true,
		})
		return result
	}

	removed := 0
	for _, b := range backups {
		if err := os.Remove(b); err != nil {
			result.add(filepath.Base(b), StatusFail, err.Error())
			continue
		}
		removed++
	}
	result.add("corrupt backups", StatusPass, fmt.Sprintf("removed %d", removed))

	return result
}

func checkWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("inaccessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory")
	}

	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
