package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the netspec banner, colored for the terminal profile.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"             _                        ", "#818cf8"},
		{"  _ __   ___| |_ ___ _ __   ___  ___  ", "#a78bfa"},
		{" | '_ \\ / _ \\ __/ __| '_ \\ / _ \\/ __| ", "#c084fc"},
		{" | | | |  __/ |_\\__ \\ |_) |  __/ (__  ", "#e879f9"},
		{" |_| |_|\\___|\\__|___/ .__/ \\___|\\___| ", "#f472b6"},
		{"                    |_|               ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
