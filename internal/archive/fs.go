package archive

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FSWriter stores one JSON object per exchange under a root directory,
// mirroring an object-store layout:
//
//	{user_id}/sessions/{session_id}/turns/{timestamp}_{random}.json
type FSWriter struct {
	root string
	now  func() time.Time
}

func NewFSWriter(root string) (*FSWriter, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("archive root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive root: %w", err)
	}
	return &FSWriter{root: root, now: time.Now}, nil
}

func (w *FSWriter) Put(ctx context.Context, rec Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := objectKey(rec.UserID, rec.SessionID, w.now())
	path := filepath.Join(w.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create archive dirs: %w", err)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal archive record: %w", err)
	}

	// O_EXCL enforces write-once: the random suffix makes collisions
	// near-impossible, but an existing object must never be replaced.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create archive object: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		return "", fmt.Errorf("write archive object: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return "", fmt.Errorf("sync archive object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close archive object: %w", err)
	}
	return key, nil
}

func (w *FSWriter) Close() error { return nil }

func objectKey(userID, sessionID string, now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000000Z")
	return fmt.Sprintf("%s/sessions/%s/turns/%s_%s.json", userID, sessionID, ts, randomHex(12))
}

func randomHex(n int) string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:n]
}
