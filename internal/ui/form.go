package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrFormCancelled is returned when the user quits the article form.
var ErrFormCancelled = errors.New("article submission cancelled")

// ArticleInput holds the fields of an article submission.
type ArticleInput struct {
	Description string
	Text        string
	DoubleBlind bool
}

type formStep int

const (
	stepDescription formStep = iota
	stepText
	stepDoubleBlind
	stepConfirm
	stepDone
)

// ArticleForm is the bubbletea model that collects an ArticleInput one field
// at a time. Empty description or text is rejected in place.
type ArticleForm struct {
	step      formStep
	input     string
	errMsg    string
	result    ArticleInput
	cancelled bool
}

// NewArticleForm returns a form prefilled with in; prefilled text fields are
// offered for editing.
func NewArticleForm(in ArticleInput) ArticleForm {
	return ArticleForm{result: in, input: in.Description}
}

// Result returns the collected input.
func (m ArticleForm) Result() ArticleInput { return m.result }

// Done reports whether the form was submitted.
func (m ArticleForm) Done() bool { return m.step == stepDone }

// Cancelled reports whether the user quit the form.
func (m ArticleForm) Cancelled() bool { return m.cancelled }

func (m ArticleForm) Init() tea.Cmd { return nil }

func (m ArticleForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.enter()
	case tea.KeyBackspace:
		if m.editing() && len(m.input) > 0 {
			r := []rune(m.input)
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		if m.editing() {
			m.input += " "
		} else if m.step == stepDoubleBlind {
			m.result.DoubleBlind = !m.result.DoubleBlind
		}
	case tea.KeyRunes:
		switch {
		case m.editing():
			m.input += string(key.Runes)
		case m.step == stepDoubleBlind:
			m.answerDoubleBlind(string(key.Runes))
		case m.step == stepConfirm:
			m.answerConfirm(string(key.Runes))
		}
	}

	if m.step == stepDone || m.cancelled {
		return m, tea.Quit
	}
	return m, nil
}

func (m ArticleForm) editing() bool {
	return m.step == stepDescription || m.step == stepText
}

func (m *ArticleForm) enter() {
	m.errMsg = ""
	switch m.step {
	case stepDescription:
		v := strings.TrimSpace(m.input)
		if v == "" {
			m.errMsg = "a short description is required"
			return
		}
		m.result.Description = v
		m.input = m.result.Text
	case stepText:
		v := strings.TrimSpace(m.input)
		if v == "" {
			m.errMsg = "the article text is required"
			return
		}
		m.result.Text = v
		m.input = ""
	}
	m.step++
}

func (m *ArticleForm) answerDoubleBlind(s string) {
	switch strings.ToLower(s) {
	case "y":
		m.result.DoubleBlind = true
		m.step++
	case "n":
		m.result.DoubleBlind = false
		m.step++
	}
}

func (m *ArticleForm) answerConfirm(s string) {
	switch strings.ToLower(s) {
	case "y":
		m.step = stepDone
	case "n":
		m.cancelled = true
	}
}

func (m ArticleForm) View() string {
	var s string
	switch m.step {
	case stepDescription:
		s = StyleTitle.Render("Submit an article") + "\n"
		s += StyleMeta.Render("Short description:") + "\n"
		s += "> " + StyleValue.Render(m.input) + "█\n"
	case stepText:
		s = StyleTitle.Render("Submit an article") + "\n"
		s += StyleMeta.Render("Article text:") + "\n"
		s += "> " + StyleValue.Render(m.input) + "█\n"
	case stepDoubleBlind:
		mark := "no"
		if m.result.DoubleBlind {
			mark = "yes"
		}
		s = StyleTitle.Render("Double-blind review?") + "\n"
		s += StyleMeta.Render("y / n, space toggles, Enter keeps ") + StyleValue.Render(mark) + "\n"
	case stepConfirm:
		s = KeyValueBlock("Review submission", [][2]string{
			{"Description", m.result.Description},
			{"Text", TruncateText(m.result.Text, 48)},
			{"Double blind", fmt.Sprintf("%t", m.result.DoubleBlind)},
		}) + "\n"
		s += StyleWarning.Render("Submit? [y/n]") + "\n"
	case stepDone:
		return Success("Article ready") + "\n"
	}
	if m.errMsg != "" {
		s += Err(m.errMsg) + "\n"
	}
	s += "\n" + StyleMeta.Render("Enter next · Esc cancel")
	return StyleBorder.Render(s) + "\n"
}

// TruncateText shortens s to at most n runes, ending with an ellipsis.
func TruncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 1 {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RunArticleForm runs the form and returns the collected input.
func RunArticleForm(in ArticleInput) (ArticleInput, error) {
	final, err := tea.NewProgram(NewArticleForm(in)).Run()
	if err != nil {
		return ArticleInput{}, fmt.Errorf("article form: %w", err)
	}
	fm := final.(ArticleForm)
	if fm.Cancelled() || !fm.Done() {
		return ArticleInput{}, ErrFormCancelled
	}
	return fm.Result(), nil
}
