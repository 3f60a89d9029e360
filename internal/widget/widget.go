// Package widget builds the read-only summary shared with home screen widgets.
package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Raimguhinov/sleep-monster/internal/creature"
)

type Summary struct {
	Name          string              `json:"name"`
	HP            int                 `json:"hp"`
	Happiness     int                 `json:"happiness"`
	Streak        int                 `json:"streak"`
	BestStreak    int                 `json:"best_streak"`
	Dead          bool                `json:"dead"`
	Expression    creature.Expression `json:"expression"`
	Stage         string              `json:"stage,omitempty"`
	Equipped      []string            `json:"equipped"`
	NextAlarm     string              `json:"next_alarm"`
	Progression   string              `json:"progression"`
	UnlockedCount int                 `json:"unlocked_count"`
}

// Build snapshots c. nextAlarm is the countdown text shown under the creature.
func Build(c *creature.Creature, progression, nextAlarm string) Summary {
	s := Summary{
		Name:          c.Name,
		HP:            c.HP,
		Happiness:     c.Happiness,
		Streak:        c.Streak,
		BestStreak:    c.BestStreak,
		Dead:          c.Dead,
		Expression:    c.Expression(),
		Equipped:      make([]string, 0, len(c.Equipped)),
		NextAlarm:     nextAlarm,
		Progression:   progression,
		UnlockedCount: len(c.Unlocked),
	}
	if progression == creature.KindEvolution {
		s.Stage = c.Stage.String()
	}
	for _, a := range c.EquippedAccessories() {
		s.Equipped = append(s.Equipped, a.ID)
	}
	return s
}

type Publisher interface {
	Publish(ctx context.Context, s Summary) error
}

// FileWriter publishes the summary as a JSON file, replacing it atomically so
// readers never see a partial write.
type FileWriter struct {
	mu   sync.Mutex
	path string
}

func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

func (w *FileWriter) Publish(_ context.Context, s Summary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("widget - Publish - os.MkdirAll: %w", err)
	}
	if err := atomicWriteJSON(w.path, s); err != nil {
		return fmt.Errorf("widget - Publish - atomicWriteJSON: %w", err)
	}
	return nil
}

func atomicWriteJSON(path string, v any) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Read loads a summary previously written by a FileWriter.
func Read(path string) (Summary, error) {
	var s Summary
	b, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("widget - Read - os.ReadFile: %w", err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("widget - Read - json.Unmarshal: %w", err)
	}
	return s, nil
}

// Discard is a Publisher that drops every summary.
type Discard struct{}

func (Discard) Publish(context.Context, Summary) error { return nil }
