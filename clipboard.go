package main

import (
	"html"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
)

// pasteText reads the system clipboard and reduces rich text to plain text
// suitable for a node label.
func pasteText() (string, error) {
	raw, err := readClipboard()
	if err != nil {
		return "", err
	}
	return plainText(raw), nil
}

func readClipboard() (string, error) {
	if runtime.GOOS == "darwin" {
		if out, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(out), nil
		}
	}
	return clipboard.ReadAll()
}

func copyText(text string) error {
	return clipboard.WriteAll(text)
}

// plainText strips RTF or HTML markup, drops control characters other than
// tab and newline, and normalises line endings.
func plainText(text string) string {
	switch {
	case isRTF(text):
		text = rtfText(text)
	case isHTML(text):
		text = htmlText(text)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r >= 32 {
			return r
		}
		return -1
	}, text)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf")
}

func isHTML(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if !strings.HasPrefix(t, "<") {
		return false
	}
	for _, tag := range []string{"<html", "<body", "<div", "<p", "<span"} {
		if strings.Contains(t, tag) {
			return true
		}
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// rtfText keeps the visible text of an RTF document. Groups that start with
// a destination control word ({\fonttbl, {\colortbl, {\*...) are skipped.
func rtfText(rtf string) string {
	var out strings.Builder
	skipDepth := -1
	depth := 0

	for i := 0; i < len(rtf); i++ {
		b := rtf[i]
		switch b {
		case '{':
			depth++
			continue
		case '}':
			if depth == skipDepth {
				skipDepth = -1
			}
			depth--
			continue
		case '\r', '\n':
			continue
		}
		if b != '\\' {
			if skipDepth < 0 {
				out.WriteByte(b)
			}
			continue
		}
		if i+1 >= len(rtf) {
			break
		}

		next := rtf[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			if skipDepth < 0 {
				out.WriteByte(next)
			}
			i++
		case next == '\'' && i+3 < len(rtf):
			if v, err := strconv.ParseUint(rtf[i+2:i+4], 16, 8); err == nil && skipDepth < 0 {
				out.WriteRune(rune(v))
			}
			i += 3
		case next == '*':
			if skipDepth < 0 {
				skipDepth = depth
			}
			i++
		case isLetter(next):
			j := i + 1
			for j < len(rtf) && isLetter(rtf[j]) {
				j++
			}
			word := rtf[i+1 : j]
			for j < len(rtf) && (rtf[j] == '-' || (rtf[j] >= '0' && rtf[j] <= '9')) {
				j++
			}
			if j < len(rtf) && rtf[j] == ' ' {
				j++
			}
			i = j - 1

			switch word {
			case "fonttbl", "colortbl", "stylesheet", "info", "pict":
				if skipDepth < 0 {
					skipDepth = depth
				}
			case "par", "line":
				if skipDepth < 0 {
					out.WriteByte('\n')
				}
			case "tab":
				if skipDepth < 0 {
					out.WriteByte('\t')
				}
			}
		default:
			i++
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

func htmlText(s string) string {
	var out strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return strings.TrimSpace(html.UnescapeString(out.String()))
}
