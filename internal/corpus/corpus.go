package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// LoadTopics reads the topic-list file produced by the upstream LDA stage,
// one topic description per line.
func LoadTopics(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	defer f.Close()

	var topics []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		topics = append(topics, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("corpus: topic file is empty: %s", path)
	}
	return topics, nil
}

// LoadAssignments reads the per-document topic assignments, one integer label
// per line, in the same order as the abstract files.
func LoadAssignments(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	defer f.Close()

	var labels []int
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		label, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("corpus: %s:%d: bad label %q: %w", path, lineNo, line, err)
		}
		labels = append(labels, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}
	return labels, nil
}

// LoadAbstracts reads every regular file in a directory of abstracts, sorted
// by filename so document order is deterministic across runs. When raw is
// false the files are assumed pre-tokenized (whitespace-separated tokens);
// when raw is true each file is normalized through Tokenize first.
func LoadAbstracts(dir string, raw bool) (names []string, docs [][]string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("corpus: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, nil, fmt.Errorf("corpus: read abstract %s: %w", name, err)
		}
		var tokens []string
		if raw {
			tokens = Tokenize(string(data))
		} else {
			tokens = strings.Fields(string(data))
		}
		docs = append(docs, tokens)
	}
	if len(docs) == 0 {
		return nil, nil, fmt.Errorf("corpus: no abstracts found in %s", dir)
	}
	return names, docs, nil
}

// Validate checks the implicit contract between the assignment file and the
// abstract directory: one label per document, every label a known topic.
func Validate(labels []int, numDocs, numClasses int) error {
	if len(labels) != numDocs {
		return fmt.Errorf("corpus: %d labels for %d documents", len(labels), numDocs)
	}
	for i, label := range labels {
		if label < 0 || label >= numClasses {
			return fmt.Errorf("corpus: label %d out of range [0,%d) at document %d", label, numClasses, i)
		}
	}
	return nil
}
