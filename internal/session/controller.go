// Package session implements the interactive vault session as a finite state
// machine. It is driven one key at a time and renders to a terminal-independent
// Screen, so the same controller runs under the TUI and in tests.
package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/passman-cli/passman/internal/domain"
	"github.com/passman-cli/passman/internal/store"
	"github.com/passman-cli/passman/internal/vault"
)

// State is the current page of the session
type State int

const (
	StateHome State = iota
	StateSearch
	StateView
	StateEdit
	StateConfirmDelete
	StateYanked
	StateChangePassword
	StateHelp
	StateNotice
	StateExit
)

func (s State) String() string {
	switch s {
	case StateHome:
		return "home"
	case StateSearch:
		return "search"
	case StateView:
		return "view"
	case StateEdit:
		return "edit"
	case StateConfirmDelete:
		return "confirm_delete"
	case StateYanked:
		return "yanked"
	case StateChangePassword:
		return "change_password"
	case StateHelp:
		return "help"
	case StateNotice:
		return "notice"
	case StateExit:
		return "exit"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Page is an entry of the home menu
type Page int

const (
	PageSearch Page = iota
	PageChangePassword
	PageHelp
	PageExit
)

// homePages is the home menu in display order
var homePages = []Page{PageSearch, PageChangePassword, PageHelp, PageExit}

func (p Page) String() string {
	switch p {
	case PageSearch:
		return "Search"
	case PageChangePassword:
		return "Change Password"
	case PageHelp:
		return "Help"
	case PageExit:
		return "Exit"
	default:
		return fmt.Sprintf("Page(%d)", int(p))
	}
}

// Clipboard holds a copied secret until it is cleared
type Clipboard interface {
	SetText(text string) error
	Clear() error
}

// PasswordGenerator produces replacement passwords for the G key
type PasswordGenerator interface {
	Generate() (string, error)
}

// Options configures a Controller. Nil fields disable the related feature.
type Options struct {
	Clipboard Clipboard
	Generator PasswordGenerator
	Logger    *zap.Logger
}

// Result is what the session hands back on exit
type Result struct {
	Accounts          []domain.Account
	Passphrase        string
	PassphraseChanged bool
	Modified          bool
}

const (
	stepOld = iota
	stepNew
	stepConfirm
)

var passwordPrompts = [...]string{"Old password", "New password", "Confirm password"}

// Controller owns the session state. It is not safe for concurrent use.
type Controller struct {
	state      State
	accounts   *store.Accounts
	passphrase string
	changed    bool
	modified   bool

	clip Clipboard
	gen  PasswordGenerator
	log  *zap.Logger

	home    int
	query   textInput
	results []domain.Account

	// working copy shown in View; origin is its label in the store
	inView  bool
	working domain.Account
	origin  string
	draft   bool
	field   domain.Field

	editField domain.Field
	editor    textInput

	pwStep   int
	pwInputs [3]textInput

	notice   string
	noticeOK bool
	returnTo State
}

// New creates a controller in the Home state
func New(accounts *store.Accounts, passphrase string, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		state:      StateHome,
		accounts:   accounts,
		passphrase: passphrase,
		clip:       opts.Clipboard,
		gen:        opts.Generator,
		log:        log,
	}
}

// State returns the current state
func (c *Controller) State() State {
	return c.state
}

// Done reports whether the session reached Exit
func (c *Controller) Done() bool {
	return c.state == StateExit
}

// Result returns the accounts and passphrase to persist
func (c *Controller) Result() Result {
	return Result{
		Accounts:          c.accounts.All(),
		Passphrase:        c.passphrase,
		PassphraseChanged: c.changed,
		Modified:          c.modified,
	}
}

// Release clears the clipboard if a copied secret is still held
func (c *Controller) Release() error {
	if c.state != StateYanked || c.clip == nil {
		return nil
	}
	c.state = StateView
	return c.clip.Clear()
}

// Handle processes one key event
func (c *Controller) Handle(k Key) {
	if c.state == StateExit {
		return
	}
	if k.Code == KeyInterrupt && c.state != StateYanked {
		if c.inView {
			c.commitView()
		}
		c.transition(StateExit)
		return
	}

	switch c.state {
	case StateHome:
		c.handleHome(k)
	case StateSearch:
		c.handleSearch(k)
	case StateView:
		c.handleView(k)
	case StateEdit:
		c.handleEdit(k)
	case StateConfirmDelete:
		c.handleConfirmDelete(k)
	case StateYanked:
		c.handleYanked(k)
	case StateChangePassword:
		c.handleChangePassword(k)
	case StateHelp:
		c.transition(StateHome)
	case StateNotice:
		c.transition(c.returnTo)
	}
}

func (c *Controller) transition(to State) {
	if to != c.state {
		c.log.Debug("session transition", zap.Stringer("from", c.state), zap.Stringer("to", to))
	}
	c.state = to
}

func (c *Controller) fail(msg string, back State) {
	c.notice = msg
	c.noticeOK = false
	c.returnTo = back
	c.transition(StateNotice)
}

func (c *Controller) inform(msg string, back State) {
	c.fail(msg, back)
	c.noticeOK = true
}

func (c *Controller) handleHome(k Key) {
	switch {
	case k.Code == KeyDown || k.Code == KeyTab || k.is('j'):
		c.home = cycle(len(homePages), c.home, 1)
	case k.Code == KeyUp || k.Code == KeyShiftTab || k.is('k'):
		c.home = cycle(len(homePages), c.home, -1)
	case k.Code == KeyEsc || k.is('q'):
		c.transition(StateExit)
	case k.Code == KeyEnter:
		c.open(homePages[c.home])
	}
}

func (c *Controller) open(p Page) {
	switch p {
	case PageSearch:
		c.query = newTextInput("", false)
		c.refresh()
		c.transition(StateSearch)
	case PageChangePassword:
		c.resetPasswordInputs()
		c.transition(StateChangePassword)
	case PageHelp:
		c.transition(StateHelp)
	case PageExit:
		c.transition(StateExit)
	}
}

// refresh re-applies the query to the full store
func (c *Controller) refresh() {
	c.results = c.accounts.Filter(c.query.String())
}

func (c *Controller) handleSearch(k Key) {
	switch k.Code {
	case KeyEsc:
		c.transition(StateHome)
	case KeyEnter:
		if len(c.results) > 0 {
			c.enterView(c.results[0], false)
			return
		}
		label := c.query.String()
		if label == "" {
			c.fail("Type a label to create a new account", StateSearch)
			return
		}
		c.enterView(domain.NewAccount(label), true)
	default:
		if c.query.handle(k) {
			c.refresh()
		}
	}
}

func (c *Controller) enterView(a domain.Account, draft bool) {
	c.inView = true
	c.working = a
	c.draft = draft
	c.origin = a.Label
	c.field = domain.FieldLabel
	c.transition(StateView)
}

// commitView writes the working copy back into the store
func (c *Controller) commitView() {
	c.inView = false
	if c.draft {
		if err := c.accounts.Add(c.working); err != nil {
			c.log.Debug("draft discarded", zap.Error(err))
			return
		}
		c.modified = true
		return
	}

	current, ok := c.accounts.Find(c.origin)
	if ok && current == c.working {
		return
	}
	if err := c.accounts.Update(c.origin, c.working); err != nil {
		c.log.Warn("account update rejected", zap.Error(err))
		return
	}
	c.modified = true
}

func (c *Controller) leaveView() {
	c.commitView()
	c.refresh()
	c.transition(StateSearch)
}

func (c *Controller) moveField(delta int) {
	fields := c.working.PresentFields()
	idx := 0
	for i, f := range fields {
		if f == c.field {
			idx = i
		}
	}
	c.field = fields[cycle(len(fields), idx, delta)]
}

func (c *Controller) handleView(k Key) {
	switch {
	case k.Code == KeyEsc || k.is('q'):
		c.leaveView()
	case k.Code == KeyDown || k.is('j'):
		c.moveField(1)
	case k.Code == KeyUp || k.is('k'):
		c.moveField(-1)
	case k.Code == KeyEnter || k.is('e'):
		c.startEdit(c.field)
	case k.is('u'):
		c.startEdit(domain.FieldUsername)
	case k.is('m'):
		c.startEdit(domain.FieldEmail)
	case k.is('G'):
		c.generate()
	case k.is('y'):
		c.yank()
	case k.is('D'):
		c.transition(StateConfirmDelete)
	}
}

func (c *Controller) startEdit(f domain.Field) {
	c.editField = f
	c.editor = newTextInput(c.working.Get(f), false)
	c.transition(StateEdit)
}

func (c *Controller) generate() {
	if c.field != domain.FieldPassword || c.gen == nil {
		return
	}
	pw, err := c.gen.Generate()
	if err != nil {
		c.log.Warn("password generation failed", zap.Error(err))
		c.fail("Could not generate a password", StateView)
		return
	}
	c.working = c.working.Set(domain.FieldPassword, pw)
}

func (c *Controller) yank() {
	if c.clip == nil {
		c.fail("Clipboard is not available", StateView)
		return
	}
	if err := c.clip.SetText(c.working.Get(c.field)); err != nil {
		c.log.Warn("clipboard write failed", zap.Error(err))
		c.fail("Could not copy to the clipboard", StateView)
		return
	}
	c.transition(StateYanked)
}

func (c *Controller) handleYanked(k Key) {
	if !k.isAny('y', 'Y') {
		return
	}
	if err := c.clip.Clear(); err != nil {
		c.log.Warn("clipboard clear failed", zap.Error(err))
		c.fail("Could not clear the clipboard, clear it manually", StateView)
		return
	}
	c.transition(StateView)
}

func (c *Controller) handleConfirmDelete(k Key) {
	if !k.isAny('y', 'Y') {
		c.transition(StateView)
		return
	}
	c.inView = false
	if !c.draft && c.accounts.Remove(c.origin) {
		c.modified = true
	}
	c.refresh()
	c.transition(StateSearch)
}

func (c *Controller) handleEdit(k Key) {
	switch k.Code {
	case KeyEsc:
		c.editor.wipe()
		c.transition(StateView)
	case KeyEnter:
		c.commitEdit()
	default:
		c.editor.handle(k)
	}
}

func (c *Controller) commitEdit() {
	value := c.editor.String()
	c.editor.wipe()

	if c.editField == domain.FieldLabel {
		if err := c.checkLabel(value); err != nil {
			c.fail(labelMessage(err, value), StateView)
			return
		}
	}

	c.working = c.working.Set(c.editField, value)
	if c.working.Has(c.editField) {
		c.field = c.editField
	} else if !c.working.Has(c.field) {
		c.field = domain.FieldLabel
	}
	c.transition(StateView)
}

// checkLabel rejects empty labels and labels owned by a different account
func (c *Controller) checkLabel(label string) error {
	if label == "" {
		return store.ErrEmptyLabel
	}
	if !c.draft && label == c.origin {
		return nil
	}
	if c.accounts.Exists(label) {
		return store.ErrDuplicateLabel
	}
	return nil
}

func labelMessage(err error, label string) string {
	if errors.Is(err, store.ErrDuplicateLabel) {
		return fmt.Sprintf("An account labelled %q already exists", label)
	}
	return "The label cannot be empty"
}

func (c *Controller) resetPasswordInputs() {
	c.pwStep = stepOld
	for i := range c.pwInputs {
		c.pwInputs[i].wipe()
		c.pwInputs[i] = newTextInput("", true)
	}
}

func (c *Controller) handleChangePassword(k Key) {
	switch k.Code {
	case KeyEsc:
		c.resetPasswordInputs()
		c.fail("Password change cancelled, nothing was changed", StateHome)
	case KeyEnter:
		c.advancePassword()
	default:
		c.pwInputs[c.pwStep].handle(k)
	}
}

func (c *Controller) advancePassword() {
	switch c.pwStep {
	case stepOld:
		if !vault.SecureCompare(c.pwInputs[stepOld].String(), c.passphrase) {
			c.resetPasswordInputs()
			c.fail("Incorrect password, nothing was changed", StateHome)
			return
		}
		c.pwStep = stepNew
	case stepNew:
		if c.pwInputs[stepNew].String() == "" {
			c.resetPasswordInputs()
			c.fail("The new password cannot be empty, nothing was changed", StateHome)
			return
		}
		c.pwStep = stepConfirm
	case stepConfirm:
		next := c.pwInputs[stepNew].String()
		if !vault.SecureCompare(next, c.pwInputs[stepConfirm].String()) {
			c.resetPasswordInputs()
			c.fail("Passwords do not match, nothing was changed", StateHome)
			return
		}
		c.resetPasswordInputs()
		c.passphrase = next
		c.changed = true
		c.modified = true
		c.log.Info("session passphrase changed")
		c.inform("Password changed, the vault will be re-encrypted on exit", StateHome)
	}
}
