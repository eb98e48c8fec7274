package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// input однострочное поле ввода
type input struct {
	value   string
	mask    bool
	numeric bool
}

// handle применяет нажатие; true, если значение изменилось
func (in *input) handle(k tea.KeyMsg) bool {
	switch k.Type {
	case tea.KeyBackspace:
		if in.value == "" {
			return false
		}
		r := []rune(in.value)
		in.value = string(r[:len(r)-1])
		return true
	case tea.KeySpace:
		if in.numeric {
			return false
		}
		in.value += " "
		return true
	case tea.KeyRunes:
		s := string(k.Runes)
		if in.numeric && strings.Trim(s, "0123456789.") != "" {
			return false
		}
		in.value += s
		return true
	}
	return false
}

func (in input) view(focused bool) string {
	v := in.value
	if in.mask {
		v = strings.Repeat("*", len([]rune(v)))
	}
	if focused {
		return "[" + v + "_]"
	}
	return "[" + v + "]"
}
