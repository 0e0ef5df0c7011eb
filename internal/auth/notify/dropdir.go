package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aussiebroadwan/campusauth/pkg/idx"
)

// DropDir writes each message as a JSON file into a directory instead of
// sending it. Meant for development, where the directory is the inbox.
type DropDir struct {
	dir string
	ttl time.Duration
}

func NewDropDir(dir string, codeTTL time.Duration) *DropDir {
	return &DropDir{dir: dir, ttl: codeTTL}
}

func (d *DropDir) SendResetCode(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o700); err != nil {
		return fmt.Errorf("%w: create drop directory: %w", ErrDeliveryFailed, err)
	}

	raw, err := json.MarshalIndent(resetMessage(email, code, d.ttl), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	// ULIDs sort by creation time, so the newest message lists last.
	path := filepath.Join(d.dir, idx.New().String()+".json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("%w: write message: %w", ErrDeliveryFailed, err)
	}
	return nil
}
