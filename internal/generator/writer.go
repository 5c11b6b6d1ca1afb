package generator

import (
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vanshika/tallyline/internal/dataset"
)

// WriteDataset writes orders.<ext> and users.<ext> under dir, where ext is
// "json" or "yaml".
func WriteDataset(data Dataset, dir, ext string) error {
	if ext == "" {
		ext = "json"
	}

	var g errgroup.Group
	g.Go(func() error {
		return dataset.WriteFile(filepath.Join(dir, "orders."+ext), data.Orders)
	})
	g.Go(func() error {
		return dataset.WriteFile(filepath.Join(dir, "users."+ext), data.Users)
	})
	return g.Wait()
}
