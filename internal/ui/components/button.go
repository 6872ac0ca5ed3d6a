package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/repeatio/examweb/internal/ui/theme"
)

// Button is a styled button component.
type Button struct {
	Label   string
	Active  bool
	OnPress func() tea.Cmd
}

// NewButton creates a new button.
func NewButton(label string, active bool, onPress func() tea.Cmd) Button {
	return Button{
		Label:   label,
		Active:  active,
		OnPress: onPress,
	}
}

// Update handles key events.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if !b.Active {
		return b, nil
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if kmsg.String() == "enter" && b.OnPress != nil {
			return b, b.OnPress()
		}
	}

	return b, nil
}

// View renders the button.
func (b Button) View() string {
	if b.Active {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}

// Confirm is a yes/no prompt built from two buttons. Its actions run when
// the matching button is pressed or its shortcut key (y/n) is typed.
type Confirm struct {
	Prompt string
	yes    Button
	no     Button
}

// NewConfirm creates a prompt with "No" focused.
func NewConfirm(prompt string, onYes, onNo func() tea.Cmd) Confirm {
	return Confirm{
		Prompt: prompt,
		yes:    NewButton("Yes", false, onYes),
		no:     NewButton("No", true, onNo),
	}
}

// Update handles focus switching and shortcuts.
func (c Confirm) Update(msg tea.Msg) (Confirm, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "left", "right", "tab", "h", "l":
		c.yes.Active, c.no.Active = !c.yes.Active, !c.no.Active
		return c, nil
	case "y":
		return c, press(c.yes)
	case "n", "esc":
		return c, press(c.no)
	}

	var cmd tea.Cmd
	if c.yes.Active {
		c.yes, cmd = c.yes.Update(msg)
	} else {
		c.no, cmd = c.no.Update(msg)
	}
	return c, cmd
}

// View renders the prompt and buttons.
func (c Confirm) View() string {
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, c.yes.View(), "  ", c.no.View())
	return lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Prompt) + "\n\n" + buttons
}

func press(b Button) tea.Cmd {
	if b.OnPress == nil {
		return nil
	}
	return b.OnPress()
}
