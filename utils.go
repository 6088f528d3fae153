package main

import (
	"os/exec"
	"runtime"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"
)

func (m *model) canvasWidth() int {
	w := m.width
	if m.mode == ModeEditing {
		w -= panelWidth
	}
	return max(w, 1)
}

func (m *model) canvasHeight() int {
	return max(m.height-statusReserved, 1)
}

func (m *model) canvas() *Canvas {
	return NewCanvas(m.registry.Elements())
}

func (m *model) selectedElement() (Element, bool) {
	id, ok := m.bridge.Selected()
	if !ok {
		return Element{}, false
	}
	return m.registry.FindByID(id)
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

func isHTML(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<") && strings.Contains(t, ">")
}

func extractTextFromHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}
	return strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
		"&nbsp;", " ",
		"&amp;", "&",
	).Replace(result.String())
}

// cleanClipboardText flattens pasted text into a single line suitable for
// a property field.
func cleanClipboardText(text string) string {
	if isHTML(text) {
		text = extractTextFromHTML(text)
	}
	var result strings.Builder
	result.Grow(len(text))
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		if space && result.Len() > 0 {
			result.WriteByte(' ')
		}
		space = false
		result.WriteRune(r)
	}
	return result.String()
}

// sanitizeFilename keeps a save name inside the save directory.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	for _, ext := range []string{".html", ".css", ".js", ".json", ".png"} {
		name = strings.TrimSuffix(name, ext)
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
}
