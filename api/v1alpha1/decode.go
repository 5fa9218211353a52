package v1alpha1

import (
	"bytes"
	"fmt"

	"sigs.k8s.io/yaml"
)

// DecodeCommands parses one or more YAML or JSON command documents separated
// by "---" lines. Unknown fields are rejected.
func DecodeCommands(data []byte) ([]Command, error) {
	var cmds []Command
	for i, doc := range splitDocuments(data) {
		var cmd Command
		if err := yaml.UnmarshalStrict(doc, &cmd); err != nil {
			return nil, fmt.Errorf("failed to decode command document %d: %w", i+1, err)
		}
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil, fmt.Errorf("no command documents found")
	}
	return cmds, nil
}

// DecodeCommand parses exactly one command document.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := yaml.UnmarshalStrict(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("failed to decode command: %w", err)
	}
	return cmd, nil
}

func splitDocuments(data []byte) [][]byte {
	var (
		docs    [][]byte
		current []byte
	)
	flush := func() {
		if len(bytes.TrimSpace(current)) > 0 {
			docs = append(docs, current)
		}
		current = nil
	}
	for _, line := range bytes.SplitAfter(data, []byte("\n")) {
		if bytes.Equal(bytes.TrimRight(line, " \t\r\n"), []byte("---")) {
			flush()
			continue
		}
		current = append(current, line...)
	}
	flush()
	return docs
}
