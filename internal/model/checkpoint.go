package model

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// checkpointParam is the gob wire form of one parameter.
type checkpointParam struct {
	Name string
	Rows int
	Cols int
	Data []float64
}

// checkpoint is the gob wire form of a full model snapshot.
type checkpoint struct {
	NumClasses int
	EmbedSize  int
	HiddenSize int
	VocabSize  int
	Params     []checkpointParam
}

// SaveCheckpoint writes all parameters to path, overwriting the previous
// snapshot. The write goes to a temp file first and is renamed into place so
// a crash mid-write cannot corrupt the only checkpoint slot.
func SaveCheckpoint(c *Classifier, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("model: checkpoint dir: %w", err)
		}
	}

	snap := checkpoint{
		NumClasses: c.NumClasses,
		EmbedSize:  c.EmbedSize,
		HiddenSize: c.HiddenSize,
		VocabSize:  c.VocabSize,
	}
	for _, p := range c.Parameters() {
		rows, cols := p.Dims()
		snap.Params = append(snap.Params, checkpointParam{
			Name: p.Name,
			Rows: rows,
			Cols: cols,
			Data: p.Value.RawMatrix().Data,
		})
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("model: checkpoint temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(&snap); err != nil {
		tmp.Close()
		return fmt.Errorf("model: checkpoint encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("model: checkpoint close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("model: checkpoint rename: %w", err)
	}
	return nil
}

// LoadCheckpoint restores a snapshot into the classifier. The classifier
// must have been constructed with the same dimensions; mismatches are
// errors, not silent truncation.
func LoadCheckpoint(c *Classifier, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("model: checkpoint: %w", err)
	}
	defer f.Close()

	var snap checkpoint
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return fmt.Errorf("model: checkpoint decode: %w", err)
	}

	if snap.NumClasses != c.NumClasses || snap.EmbedSize != c.EmbedSize ||
		snap.HiddenSize != c.HiddenSize || snap.VocabSize != c.VocabSize {
		return fmt.Errorf("model: checkpoint shape mismatch: saved (classes=%d embed=%d hidden=%d vocab=%d), model (classes=%d embed=%d hidden=%d vocab=%d)",
			snap.NumClasses, snap.EmbedSize, snap.HiddenSize, snap.VocabSize,
			c.NumClasses, c.EmbedSize, c.HiddenSize, c.VocabSize)
	}

	byName := make(map[string]checkpointParam, len(snap.Params))
	for _, p := range snap.Params {
		byName[p.Name] = p
	}
	for _, p := range c.Parameters() {
		saved, ok := byName[p.Name]
		if !ok {
			return fmt.Errorf("model: checkpoint missing parameter %q", p.Name)
		}
		rows, cols := p.Dims()
		if saved.Rows != rows || saved.Cols != cols {
			return fmt.Errorf("model: checkpoint parameter %q is %dx%d, model expects %dx%d",
				p.Name, saved.Rows, saved.Cols, rows, cols)
		}
		copy(p.Value.RawMatrix().Data, saved.Data)
	}
	return nil
}
