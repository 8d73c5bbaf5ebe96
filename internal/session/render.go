package session

import (
	"fmt"
	"strings"

	"github.com/passman-cli/passman/internal/domain"
)

// helpLines documents the keybindings shown on the help page
var helpLines = [][2]string{
	{"j / k", "Move down / up"},
	{"Enter", "Open the selected page or account"},
	{"Esc / q", "Go back"},
	{"e", "Edit the selected field"},
	{"u / m", "Edit the username / email"},
	{"G", "Generate random password"},
	{"y", "Copy the selected field to the clipboard"},
	{"D", "Delete the account"},
	{"ctrl+c", "Save and quit"},
}

const maskedPassword = "********"

// Screen renders the current state
func (c *Controller) Screen() Screen {
	switch c.state {
	case StateHome:
		return c.homeScreen()
	case StateSearch:
		return c.searchScreen()
	case StateView:
		return c.viewScreen()
	case StateEdit:
		return c.editScreen()
	case StateConfirmDelete:
		s := c.viewScreen()
		s.add(LineWarning, "", fmt.Sprintf("Delete %q? (y/N)", c.working.Label))
		s.Hint = ""
		return s
	case StateYanked:
		s := c.viewScreen()
		s.add(LineNotice, "", fmt.Sprintf("%s copied to the clipboard.", c.field))
		s.Hint = "y: clear the clipboard and continue"
		return s
	case StateChangePassword:
		return c.passwordScreen()
	case StateHelp:
		return helpScreen()
	case StateNotice:
		kind := LineWarning
		if c.noticeOK {
			kind = LineNotice
		}
		s := Screen{Title: "passman", Hint: "Press any key to continue"}
		s.add(kind, "", c.notice)
		return s
	}
	return Screen{}
}

func (c *Controller) homeScreen() Screen {
	s := Screen{Title: "passman", Hint: "j/k: move  enter: open  q: quit"}
	for i, p := range homePages {
		kind := LinePlain
		if i == c.home {
			kind = LineSelected
		}
		s.add(kind, "", p.String())
	}
	return s
}

func (c *Controller) searchScreen() Screen {
	s := Screen{Title: "Search", Hint: "enter: open  esc: back"}
	s.Lines = append(s.Lines, c.query.line("Search"))
	for i, a := range c.results {
		kind := LinePlain
		if i == 0 {
			kind = LineSelected
		}
		s.add(kind, "", a.Label)
	}
	if len(c.results) == 0 {
		if q := c.query.String(); q != "" {
			s.add(LineHint, "", fmt.Sprintf("No matches. Press enter to create %q.", q))
		} else {
			s.add(LineHint, "", "The vault is empty. Type a label to create an account.")
		}
	}
	return s
}

func (c *Controller) viewScreen() Screen {
	title := c.working.Label
	if c.draft {
		title = "New account: " + title
	}
	s := Screen{Title: title, Hint: "e: edit  y: copy  G: generate  D: delete  q: back"}
	for _, f := range c.working.PresentFields() {
		kind := LinePlain
		if f == c.field {
			kind = LineSelected
		}
		s.add(kind, f.String(), displayValue(c.working, f))
	}
	return s
}

func displayValue(a domain.Account, f domain.Field) string {
	if f == domain.FieldPassword {
		if a.Password == "" {
			return ""
		}
		return maskedPassword
	}
	return a.Get(f)
}

func (c *Controller) editScreen() Screen {
	s := Screen{
		Title: fmt.Sprintf("Edit %s", strings.ToLower(c.editField.String())),
		Hint:  "enter: save  esc: cancel",
	}
	s.Lines = append(s.Lines, c.editor.line(c.editField.String()))
	if c.editField.Optional() {
		s.add(LineHint, "", "Leave empty to remove the field.")
	}
	return s
}

func (c *Controller) passwordScreen() Screen {
	s := Screen{Title: "Change Password", Hint: "enter: next  esc: cancel"}
	for i := 0; i <= c.pwStep; i++ {
		line := c.pwInputs[i].line(passwordPrompts[i])
		if i < c.pwStep {
			line.Kind = LinePlain
		}
		s.Lines = append(s.Lines, line)
	}
	return s
}

func helpScreen() Screen {
	s := Screen{Title: "Help", Hint: "Press any key to return"}
	for _, h := range helpLines {
		s.add(LinePlain, h[0], h[1])
	}
	return s
}
