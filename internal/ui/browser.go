package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// BrowserEntry is one function or event shown by the method browser.
type BrowserEntry struct {
	Name     string
	Selector string // empty for events
	Sig      string
	IsWrite  bool
	IsEvent  bool
	Outputs  []string // read functions only
}

// BrowserModel is the bubbletea model that lists a contract's reads, writes
// and events and returns the function picked with Enter. Events are shown
// but cannot be selected.
type BrowserModel struct {
	ContractName string
	Address      string
	Network      string
	Entries      []BrowserEntry

	nav    []int // indexes into Entries, reads then writes
	cursor int

	Selected *BrowserEntry
	Quitting bool
}

// NewBrowser builds a browser over entries.
func NewBrowser(contractName, address, network string, entries []BrowserEntry) BrowserModel {
	m := BrowserModel{
		ContractName: contractName,
		Address:      address,
		Network:      network,
		Entries:      entries,
	}
	var writes []int
	for i, e := range entries {
		switch {
		case e.IsEvent:
		case e.IsWrite:
			writes = append(writes, i)
		default:
			m.nav = append(m.nav, i)
		}
	}
	m.nav = append(m.nav, writes...)
	return m
}

func (m BrowserModel) Init() tea.Cmd { return nil }

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.Quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.nav)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.nav) > 0 {
			e := m.Entries[m.nav[m.cursor]]
			m.Selected = &e
			return m, tea.Quit
		}
	}
	return m, nil
}

// Current returns the entry under the cursor.
func (m BrowserModel) Current() (BrowserEntry, bool) {
	if len(m.nav) == 0 {
		return BrowserEntry{}, false
	}
	return m.Entries[m.nav[m.cursor]], true
}

func (m BrowserModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(fmt.Sprintf("  %s  ·  network %s", m.ContractName, m.Network)) + "\n")
	if m.Address != "" {
		sb.WriteString("  " + StyleMeta.Render("address ") + StyleAddress.Render(m.Address) + "\n")
	}
	sb.WriteString("\n")

	cur, _ := m.Current()
	section := func(title string, match func(BrowserEntry) bool) {
		var lines []string
		for _, e := range m.Entries {
			if !match(e) {
				continue
			}
			lines = append(lines, m.line(e, !e.IsEvent && e.Sig == cur.Sig))
		}
		if len(lines) == 0 {
			return
		}
		sb.WriteString(StyleHeader.Render(fmt.Sprintf("  %s (%d)", title, len(lines))) + "\n")
		sb.WriteString(strings.Join(lines, "\n") + "\n\n")
	}
	section("Read", func(e BrowserEntry) bool { return !e.IsEvent && !e.IsWrite })
	section("Write", func(e BrowserEntry) bool { return e.IsWrite })
	section("Events", func(e BrowserEntry) bool { return e.IsEvent })

	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Enter ] select   [ q ] quit") + "\n")
	return sb.String()
}

func (m BrowserModel) line(e BrowserEntry, selected bool) string {
	prefix := "    "
	if selected {
		prefix = "  ▸ "
	}
	var name string
	switch {
	case e.IsEvent:
		name = StyleEvent.Render(e.Sig)
	case e.IsWrite:
		name = StyleWrite.Render(e.Sig)
	default:
		name = StyleRead.Render(e.Sig)
	}
	line := prefix
	if e.Selector != "" {
		line += StyleMeta.Render(e.Selector) + "  "
	}
	line += name
	if len(e.Outputs) > 0 {
		line += StyleMeta.Render("  →  " + strings.Join(e.Outputs, ", "))
	}
	if selected {
		return StyleSelected.Render(line)
	}
	return line
}

// RunBrowser launches the browser on the alternate screen and returns the
// selected entry, or nil when the user quit.
func RunBrowser(m BrowserModel) (*BrowserEntry, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	fm := final.(BrowserModel)
	if fm.Quitting || fm.Selected == nil {
		return nil, nil
	}
	return fm.Selected, nil
}
