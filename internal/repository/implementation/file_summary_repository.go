package implementation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ampersand-agent/internal/repository/contract"
)

type fileSummaryRepository struct {
	dir string
}

// NewFileSummaryRepository stores summaries as summary_<id>.txt under dir.
func NewFileSummaryRepository(dir string) (contract.ISummaryRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create summary directory: %w", err)
	}
	return &fileSummaryRepository{dir: dir}, nil
}

func (r *fileSummaryRepository) path(conversationID string) string {
	return filepath.Join(r.dir, "summary_"+safeFileName(conversationID)+".txt")
}

func (r *fileSummaryRepository) Load(ctx context.Context, conversationID string) (string, error) {
	data, err := os.ReadFile(r.path(conversationID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func (r *fileSummaryRepository) Save(ctx context.Context, conversationID string, summary string) error {
	// Load never observes a partially written file.
	target := r.path(conversationID)
	tmp, err := os.CreateTemp(r.dir, ".summary-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(summary); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func safeFileName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}
