package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. Reads, writes and events keep the same colors in every
// view so a selector looks the same in `contract info` and the browser.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // confirmed
	ColorWarning   = lipgloss.Color("#FFB800") // pending, write functions
	ColorError     = lipgloss.Color("#FF4444") // failed, timed out, reverted
	ColorInfo      = lipgloss.Color("#4CC9F0") // events
	ColorAddress   = lipgloss.Color("#00B4D8")
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorNetwork   = lipgloss.Color("#9B5DE5")
	ColorHighlight = lipgloss.Color("#F15BB5")
)

var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleNetwork = lipgloss.NewStyle().Foreground(ColorNetwork).Bold(true)

	// ABI member kinds.
	StyleRead  = lipgloss.NewStyle().Foreground(ColorValue)
	StyleWrite = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleEvent = lipgloss.NewStyle().Foreground(ColorInfo)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorNetwork).
			Bold(true).
			MarginBottom(1)
)

// Banner returns the one-line journal banner shown by the root command.
func Banner() string {
	return StyleNetwork.Render("journal") + StyleMeta.Render("  peer review on Ethereum")
}

func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }
func Warn(msg string) string    { return StyleWarning.Render("⚠ " + msg) }
func Err(msg string) string     { return StyleError.Render("✗ " + msg) }
func Info(msg string) string    { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a suggestion for the next command to run.
func Hint(msg string) string { return StyleMeta.Render("→ " + msg) }

func Addr(a string) string        { return StyleAddress.Render(a) }
func Val(v string) string         { return StyleValue.Render(v) }
func Meta(m string) string        { return StyleMeta.Render(m) }
func NetworkName(n string) string { return StyleNetwork.Render(n) }

// ReceiptStatus renders a receipt status code. A mined transaction with
// status 0 still confirms; it is shown as reverted.
func ReceiptStatus(status uint64) string {
	if status == 1 {
		return StyleSuccess.Render("success")
	}
	return StyleError.Render("reverted")
}

// TxState colors a confirmation tracker state by its name.
func TxState(state string) string {
	switch state {
	case "confirmed":
		return StyleSuccess.Render(state)
	case "pending", "submitting":
		return StyleWarning.Render(state)
	default:
		return StyleError.Render(state)
	}
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
