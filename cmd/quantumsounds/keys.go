package main

import (
	"bufio"
	"io"
	"strings"
)

type key int

const (
	keyOther key = iota
	keyAction
	keyLeft
	keyRight
	keyAssist
	keyQuit
)

const (
	ctrlC     = 0x03
	ctrlD     = 0x04
	escape    = 0x1b
	backspace = 0x7f
)

// readKey decodes one keypress: space, the arrow escape sequences, h and q
// (or Ctrl-C / Ctrl-D).
func readKey(r *bufio.Reader) (key, error) {
	b, err := r.ReadByte()
	if err != nil {
		return keyOther, err
	}

	switch b {
	case ' ':
		return keyAction, nil
	case 'h', 'H':
		return keyAssist, nil
	case 'q', 'Q', ctrlC, ctrlD:
		return keyQuit, nil
	case escape:
		if next, err := r.ReadByte(); err != nil || next != '[' {
			return keyOther, err
		}
		arrow, err := r.ReadByte()
		if err != nil {
			return keyOther, err
		}
		switch arrow {
		case 'D':
			return keyLeft, nil
		case 'C':
			return keyRight, nil
		}
	}
	return keyOther, nil
}

// readLine reads a typed question up to Enter, echoing to w. In raw mode
// the terminal does no line editing, so backspace is handled here.
func readLine(r *bufio.Reader, w io.Writer) (string, error) {
	var sb strings.Builder
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			return sb.String(), err
		}
		switch ch {
		case '\r', '\n':
			_, _ = io.WriteString(w, "\r\n")
			return strings.TrimSpace(sb.String()), nil
		case ctrlC, escape:
			_, _ = io.WriteString(w, "\r\n")
			return "", nil
		case backspace, '\b':
			s := []rune(sb.String())
			if len(s) > 0 {
				sb.Reset()
				sb.WriteString(string(s[:len(s)-1]))
				_, _ = io.WriteString(w, "\b \b")
			}
		default:
			sb.WriteRune(ch)
			_, _ = io.WriteString(w, string(ch))
		}
	}
}

// crlf translates line feeds for a terminal in raw mode.
type crlf struct {
	w io.Writer
}

func (c crlf) Write(p []byte) (int, error) {
	if _, err := io.WriteString(c.w, strings.ReplaceAll(string(p), "\n", "\r\n")); err != nil {
		return 0, err
	}
	return len(p), nil
}
