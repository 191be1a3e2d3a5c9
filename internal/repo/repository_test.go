package repo_test

import (
	"testing"

	"github.com/hamed0406/httprobe/internal/repo"
	"github.com/hamed0406/httprobe/internal/repo/memory"
	pg "github.com/hamed0406/httprobe/internal/repo/postgres"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.AlertLog = memory.New(1)
	var _ repo.AlertLog = (*pg.Store)(nil)
}
