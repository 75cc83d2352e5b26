/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package control

import (
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/svxreflector/goreflector/console"
)

// PTY drives an interactive operator console over a real terminal using
// go-prompt's line editor (history, left/right, ctrl-c) instead of a bare
// bufio.Scanner loop, matching the "interactive line editing" entry in
// the domain stack.
type PTY struct {
	console *Console
}

func NewPTY(c *Console) *PTY { return &PTY{console: c} }

// Run blocks serving commands from the terminal until the operator exits
// (ctrl-d / ctrl-c, handled internally by go-prompt). Each line's verdict
// is printed colorized via console (OK green-ish/default, ERR red).
func (p *PTY) Run() {
	pr := prompt.New(
		p.execute,
		p.complete,
		prompt.OptionPrefix("goreflector> "),
		prompt.OptionTitle("goreflector operator console"),
	)
	pr.Run()
}

func (p *PTY) execute(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	result := p.console.Dispatch(line)
	p.print(result)
}

func (p *PTY) print(result string) {
	if strings.HasPrefix(result, "ERR:") {
		console.ColorErr.Println(result)
		return
	}
	console.ColorOK.Println(result)
}

func (p *PTY) complete(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	suggestions := make([]prompt.Suggest, 0, 8)
	p.console.Walk(func(name string, cmd Command) bool {
		suggestions = append(suggestions, prompt.Suggest{Text: name, Description: cmd.Describe()})
		return true
	})
	return prompt.FilterHasPrefix(suggestions, word, true)
}
