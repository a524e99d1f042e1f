package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/jask/stockflow/internal/auth"
	"github.com/jask/stockflow/internal/domain"
	"github.com/jask/stockflow/internal/prefs"
	"github.com/jask/stockflow/internal/session"
)

const roleField = -1

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 64
	ti.Cursor.SetMode(cursor.CursorStatic)
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

// showLogin resets the logged-out screen. An empty prefill falls back to the
// last remembered username.
func (a *App) showLogin(prefill string) {
	if prefill == "" {
		if p, err := prefs.Load(); err == nil {
			prefill = p.LastUsername
		}
	}
	a.screen = screenLogin
	a.inputs = []textinput.Model{newInput("username", false), newInput("password", true)}
	a.inputs[0].SetValue(prefill)
	a.focus = 0
	if prefill != "" {
		a.focus = 1
	}
	a.inputs[a.focus].Focus()
}

func (a *App) showSignup() {
	a.screen = screenSignup
	a.inputs = []textinput.Model{
		newInput("username", false),
		newInput("password", true),
		newInput("confirm password", true),
	}
	a.roleCursor = 0
	a.focus = 0
	a.inputs[0].Focus()
}

// fieldCount includes the role picker on the signup screen.
func (a *App) fieldCount() int {
	if a.screen == screenSignup {
		return len(a.inputs) + 1
	}
	return len(a.inputs)
}

func (a *App) onRolePicker() bool {
	return a.screen == screenSignup && a.focus == len(a.inputs)
}

func (a *App) focusField(i int) {
	n := a.fieldCount()
	i = (i%n + n) % n
	if a.focus < len(a.inputs) {
		a.inputs[a.focus].Blur()
	}
	a.focus = i
	if a.focus < len(a.inputs) {
		a.inputs[a.focus].Focus()
	}
}

func (a *App) handleAuthKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyCtrlN:
		if a.screen == screenLogin {
			a.showSignup()
		} else {
			a.showLogin("")
		}
		a.status = ""
		return a, nil
	case tea.KeyEsc:
		if a.screen == screenSignup {
			a.showLogin("")
			a.status = ""
			return a, nil
		}
		return a, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		a.focusField(a.focus + 1)
		return a, nil
	case tea.KeyShiftTab, tea.KeyUp:
		a.focusField(a.focus - 1)
		return a, nil
	case tea.KeyEnter:
		if a.focus < a.fieldCount()-1 {
			a.focusField(a.focus + 1)
			return a, nil
		}
		if a.screen == screenSignup {
			return a, a.submitSignup()
		}
		return a, a.submitLogin()
	}

	if a.onRolePicker() {
		switch m.String() {
		case "left", "h":
			a.roleCursor = (a.roleCursor + len(domain.Roles) - 1) % len(domain.Roles)
		case "right", "l", " ":
			a.roleCursor = (a.roleCursor + 1) % len(domain.Roles)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.inputs[a.focus], cmd = a.inputs[a.focus].Update(m)
	return a, cmd
}

func (a *App) submitLogin() tea.Cmd {
	username := strings.TrimSpace(a.inputs[0].Value())
	next, err := a.session.Login(a.ctx, a.services.Auth, username, a.inputs[1].Value())
	if err != nil {
		if !isUserError(err) {
			log.WithError(err).Error("login")
		}
		a.status = err.Error()
		a.inputs[1].SetValue("")
		a.focusField(1)
		return nil
	}
	a.session = next
	a.status = fmt.Sprintf("welcome, %s", next.Username)
	a.inputs = nil
	if err := prefs.RememberUser(next.Username); err != nil {
		log.WithError(err).Warn("remember last user")
	}
	return a.loadAll()
}

func (a *App) submitSignup() tea.Cmd {
	form := auth.SignupForm{
		Username: a.inputs[0].Value(),
		Password: a.inputs[1].Value(),
		Confirm:  a.inputs[2].Value(),
		Role:     domain.Roles[a.roleCursor].String(),
	}
	u, err := a.services.Auth.Signup(a.ctx, form)
	if err != nil {
		if !isUserError(err) {
			log.WithError(err).Error("signup")
		}
		a.status = err.Error()
		return nil
	}
	a.showLogin(u.Username)
	a.status = fmt.Sprintf("account created for %s (%s), please log in", u.Username, u.Role.Label())
	return nil
}

func (a *App) renderAuth() string {
	var b strings.Builder
	if a.screen == screenSignup {
		b.WriteString(titleStyle.Render("Sign up") + "\n")
	} else {
		b.WriteString(titleStyle.Render("Log in") + "\n")
	}
	labels := []string{"Username", "Password", "Confirm"}
	for i, in := range a.inputs {
		marker := " "
		if i == a.focus {
			marker = "▶"
		}
		fmt.Fprintf(&b, "%s %-9s %s\n", marker, labels[i]+":", in.View())
	}
	if a.screen == screenSignup {
		marker := " "
		if a.onRolePicker() {
			marker = "▶"
		}
		var roles []string
		for i, r := range domain.Roles {
			if i == a.roleCursor {
				roles = append(roles, selectedStyle.Render("["+r.Label()+"]"))
			} else {
				roles = append(roles, r.Label())
			}
		}
		fmt.Fprintf(&b, "%s %-9s %s\n", marker, "Role:", strings.Join(roles, "  "))
		b.WriteString("[tab] Next field  [←/→] Role  [enter] Create account  [esc] Back to log in")
	} else {
		b.WriteString("[tab] Next field  [enter] Log in  [ctrl+n] Sign up  [esc] Quit")
	}
	if a.status != "" {
		b.WriteString("\n" + statusStyle.Render(a.status))
	}
	return b.String()
}

var _ session.Authenticator = (*auth.Authenticator)(nil)
