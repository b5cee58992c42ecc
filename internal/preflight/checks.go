package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"reach/internal/persist"
	"reach/internal/taxonomy"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTaxonomyFile verifies that the taxonomy snapshot is readable and parses.
func CheckTaxonomyFile(path string) Result {
	const name = "Taxonomy file"

	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	tree, err := taxonomy.Load(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	categories := len(taxonomy.ListCategories(tree))
	if categories == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no categories)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d categories)", path, categories)}
}

// CheckWriterLock reports whether another process owns the selection. A held
// lock is not a failure when a server is expected to hold it.
func CheckWriterLock(path string) Result {
	const name = "Writer lock"

	lock := persist.NewWriterLock(path)
	if err := lock.Acquire(); err != nil {
		if errors.Is(err, persist.ErrWriterLocked) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (held by another process)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	_ = lock.Release()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (free)", path)}
}

// CheckServer verifies that a console server answers on bind.
func CheckServer(ctx context.Context, bind string) Result {
	const name = "Console server"

	bind = strings.TrimSpace(bind)
	if bind == "" {
		return Result{Name: name, Detail: "missing bind address"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, "http://"+bind+"/api/status", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("status check failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("not reachable (%v)", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("status check failed (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", bind)}
}
