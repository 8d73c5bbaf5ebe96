package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passman-cli/passman/internal/domain"
	"github.com/passman-cli/passman/internal/store"
	"github.com/passman-cli/passman/internal/vault"
)

type fakeClipboard struct {
	text     string
	held     bool
	setErr   error
	clearErr error
	clears   int
}

func (f *fakeClipboard) SetText(text string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.text = text
	f.held = true
	return nil
}

func (f *fakeClipboard) Clear() error {
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.text = ""
	f.held = false
	return nil
}

type fakeGenerator struct {
	next string
	err  error
}

func (g fakeGenerator) Generate() (string, error) { return g.next, g.err }

func newTestController(t *testing.T, accounts ...domain.Account) (*Controller, *fakeClipboard) {
	t.Helper()
	s, err := store.NewAccounts(accounts)
	require.NoError(t, err)
	clip := &fakeClipboard{}
	c := New(s, "hunter2", Options{
		Clipboard: clip,
		Generator: fakeGenerator{next: "generated-pw"},
	})
	return c, clip
}

func fruits() []domain.Account {
	return []domain.Account{
		{Label: "Apple", Username: "alice", Password: "a1"},
		{Label: "Banana", Email: "bob@example.com", Password: "b2"},
		{Label: "Cherry", Password: "c3"},
	}
}

func typeText(c *Controller, s string) {
	for _, r := range s {
		c.Handle(Rune(r))
	}
}

func press(c *Controller, codes ...KeyCode) {
	for _, code := range codes {
		c.Handle(Press(code))
	}
}

func openSearch(c *Controller) {
	press(c, KeyEnter)
}

func labelsOf(accounts []domain.Account) []string {
	out := make([]string, len(accounts))
	for i, a := range accounts {
		out[i] = a.Label
	}
	return out
}

func TestCycle(t *testing.T) {
	assert.Equal(t, 1, cycle(4, 0, 1))
	assert.Equal(t, 0, cycle(4, 3, 1))
	assert.Equal(t, 3, cycle(4, 0, -1))
	assert.Equal(t, 0, cycle(0, 5, 1))
}

func TestHomeNavigationWraps(t *testing.T) {
	c, _ := newTestController(t)
	assert.Equal(t, StateHome, c.State())

	c.Handle(Rune('k'))
	press(c, KeyEnter)
	assert.Equal(t, StateExit, c.State(), "previous from the first option wraps to Exit")
}

func TestHomeNavigationKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []Key
		want State
	}{
		{"enter opens search", nil, StateSearch},
		{"j moves to change password", []Key{Rune('j')}, StateChangePassword},
		{"down twice opens help", []Key{Press(KeyDown), Press(KeyDown)}, StateHelp},
		{"tab then shift tab", []Key{Press(KeyTab), Press(KeyShiftTab)}, StateSearch},
		{"up from first wraps to exit", []Key{Press(KeyUp)}, StateExit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(t)
			for _, k := range tt.keys {
				c.Handle(k)
			}
			press(c, KeyEnter)
			assert.Equal(t, tt.want, c.State())
		})
	}
}

func TestHomeQuitKeys(t *testing.T) {
	for _, k := range []Key{Press(KeyEsc), Rune('q'), Press(KeyInterrupt)} {
		c, _ := newTestController(t)
		c.Handle(k)
		assert.True(t, c.Done())
	}
}

func TestSearchFilterReappliedToFullStore(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	assert.Equal(t, []string{"Apple", "Banana", "Cherry"}, labelsOf(c.results))

	typeText(c, "an")
	assert.Equal(t, []string{"Banana"}, labelsOf(c.results))

	press(c, KeyBackspace, KeyBackspace)
	assert.Equal(t, []string{"Apple", "Banana", "Cherry"}, labelsOf(c.results))

	typeText(c, "e")
	assert.Equal(t, []string{"Apple", "Cherry"}, labelsOf(c.results))
}

func TestSearchCursorEditing(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)

	typeText(c, "Chry")
	press(c, KeyLeft, KeyLeft)
	typeText(c, "er")
	assert.Equal(t, "Cherry", c.query.String())

	press(c, KeyHome, KeyDelete)
	assert.Equal(t, "herry", c.query.String())

	press(c, KeyEnd)
	typeText(c, "!")
	assert.Equal(t, "herry!", c.query.String())
}

func TestSearchEnterOpensTopmostMatch(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "e")
	press(c, KeyEnter)

	assert.Equal(t, StateView, c.State())
	assert.Equal(t, "Apple", c.working.Label)
	assert.False(t, c.draft)
}

func TestSearchEscReturnsHome(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	press(c, KeyEsc)
	assert.Equal(t, StateHome, c.State())
}

func TestSearchEmptyQueryNoMatchesShowsNotice(t *testing.T) {
	c, _ := newTestController(t)
	openSearch(c)
	press(c, KeyEnter)

	assert.Equal(t, StateNotice, c.State())
	press(c, KeyEnter)
	assert.Equal(t, StateSearch, c.State())
}

func TestCreateAccountFromSearch(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Durian")
	press(c, KeyEnter)

	require.Equal(t, StateView, c.State())
	assert.True(t, c.draft)
	assert.Equal(t, "Durian", c.working.Label)

	c.Handle(Rune('j'))
	c.Handle(Rune('e'))
	require.Equal(t, StateEdit, c.State())
	typeText(c, "s3cret")
	press(c, KeyEnter)

	c.Handle(Rune('q'))
	assert.Equal(t, StateSearch, c.State())
	assert.Equal(t, "Durian", c.query.String(), "query is kept after leaving the view")
	assert.Equal(t, []string{"Durian"}, labelsOf(c.results))

	got, ok := c.accounts.Find("Durian")
	require.True(t, ok)
	assert.Equal(t, "s3cret", got.Password)
	assert.True(t, c.Result().Modified)
}

func TestViewFieldCursorSkipsAbsentFields(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Cherry")
	press(c, KeyEnter)

	assert.Equal(t, domain.FieldLabel, c.field)
	c.Handle(Rune('j'))
	assert.Equal(t, domain.FieldPassword, c.field)
	c.Handle(Rune('j'))
	assert.Equal(t, domain.FieldLabel, c.field)
	press(c, KeyUp)
	assert.Equal(t, domain.FieldPassword, c.field)
}

func TestViewFieldCursorIncludesPresentFields(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Banana")
	press(c, KeyEnter)

	var seen []domain.Field
	for i := 0; i < 3; i++ {
		seen = append(seen, c.field)
		press(c, KeyDown)
	}
	assert.Equal(t, []domain.Field{domain.FieldLabel, domain.FieldEmail, domain.FieldPassword}, seen)
}

func TestEditOptionalFieldClearsIt(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Apple")
	press(c, KeyEnter)

	c.Handle(Rune('u'))
	require.Equal(t, StateEdit, c.State())
	assert.Equal(t, "alice", c.editor.String())
	for i := 0; i < len("alice"); i++ {
		press(c, KeyBackspace)
	}
	press(c, KeyEnter)

	assert.Equal(t, StateView, c.State())
	assert.False(t, c.working.HasUsername())
	assert.Equal(t, []domain.Field{domain.FieldLabel, domain.FieldPassword}, c.working.PresentFields())

	c.Handle(Rune('q'))
	got, _ := c.accounts.Find("Apple")
	assert.Equal(t, "", got.Username)
}

func TestEditAddsAbsentEmail(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Cherry")
	press(c, KeyEnter)

	c.Handle(Rune('m'))
	typeText(c, "c@example.com")
	press(c, KeyEnter)

	assert.Equal(t, domain.FieldEmail, c.field)
	assert.Equal(t, "c@example.com", c.working.Email)
}

func TestEditEscDiscards(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Apple")
	press(c, KeyEnter)

	c.Handle(Rune('e'))
	typeText(c, "-renamed")
	press(c, KeyEsc)

	assert.Equal(t, StateView, c.State())
	assert.Equal(t, "Apple", c.working.Label)
}

func TestEditPasswordInClear(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Apple")
	press(c, KeyEnter, KeyUp)

	view := c.Screen()
	last := view.Lines[len(view.Lines)-1]
	assert.Equal(t, "Password", last.Label)
	assert.Equal(t, "********", last.Text)

	press(c, KeyEnter)
	require.Equal(t, StateEdit, c.State())
	input := c.Screen().Lines[0]
	assert.Equal(t, LineInput, input.Kind)
	assert.Equal(t, "a1", input.Text)

	press(c, KeyEsc)
	require.Equal(t, StateView, c.State())
	view = c.Screen()
	assert.Equal(t, "********", view.Lines[len(view.Lines)-1].Text)
}

func TestEditLabelCollisionRejected(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Cherry")
	press(c, KeyEnter)

	c.Handle(Rune('e'))
	press(c, KeyHome)
	for i := 0; i < len("Cherry"); i++ {
		press(c, KeyDelete)
	}
	typeText(c, "Apple")
	press(c, KeyEnter)

	assert.Equal(t, StateNotice, c.State())
	press(c, KeyEnter)
	assert.Equal(t, StateView, c.State())
	assert.Equal(t, "Cherry", c.working.Label)
}

func TestEditLabelResaveSameLabel(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Apple")
	press(c, KeyEnter)

	c.Handle(Rune('e'))
	press(c, KeyEnter)

	assert.Equal(t, StateView, c.State())
	c.Handle(Rune('q'))
	assert.False(t, c.Result().Modified)
}

func TestEditEmptyLabelRejected(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Apple")
	press(c, KeyEnter)

	c.Handle(Rune('e'))
	for i := 0; i < len("Apple"); i++ {
		press(c, KeyBackspace)
	}
	press(c, KeyEnter)

	assert.Equal(t, StateNotice, c.State())
	assert.Equal(t, "Apple", c.working.Label)
}

func TestRenameKeepsPosition(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Banana")
	press(c, KeyEnter)

	c.Handle(Rune('e'))
	typeText(c, "s")
	press(c, KeyEnter)
	c.Handle(Rune('q'))

	assert.Equal(t, []string{"Apple", "Bananas", "Cherry"}, labelsOf(c.Result().Accounts))
}

func TestGeneratePassword(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Cherry")
	press(c, KeyEnter)

	c.Handle(Rune('G'))
	assert.Equal(t, "c3", c.working.Password, "G only applies to the password field")

	c.Handle(Rune('j'))
	c.Handle(Rune('G'))
	assert.Equal(t, "generated-pw", c.working.Password)
}

func TestGeneratePasswordFailure(t *testing.T) {
	s, err := store.NewAccounts(fruits())
	require.NoError(t, err)
	c := New(s, "pw", Options{Generator: fakeGenerator{err: errors.New("no entropy")}})

	press(c, KeyEnter)
	typeText(c, "Cherry")
	press(c, KeyEnter, KeyDown)
	c.Handle(Rune('G'))

	assert.Equal(t, StateNotice, c.State())
	assert.Equal(t, "c3", c.working.Password)
}

func TestYankBlocksUntilConfirmed(t *testing.T) {
	c, clip := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Apple")
	press(c, KeyEnter, KeyUp)

	c.Handle(Rune('y'))
	require.Equal(t, StateYanked, c.State())
	assert.Equal(t, "a1", clip.text)

	for _, k := range []Key{Press(KeyEsc), Rune('q'), Press(KeyEnter), Press(KeyInterrupt), Rune('D')} {
		c.Handle(k)
		assert.Equal(t, StateYanked, c.State())
	}
	assert.True(t, clip.held)

	c.Handle(Rune('Y'))
	assert.Equal(t, StateView, c.State())
	assert.False(t, clip.held)
	assert.Equal(t, "", clip.text)
}

func TestYankClipboardFailure(t *testing.T) {
	c, clip := newTestController(t, fruits()...)
	clip.setErr = errors.New("no display")
	openSearch(c)
	typeText(c, "Apple")
	press(c, KeyEnter)

	c.Handle(Rune('y'))
	assert.Equal(t, StateNotice, c.State())
	press(c, KeyEnter)
	assert.Equal(t, StateView, c.State())
}

func TestReleaseClearsHeldClipboard(t *testing.T) {
	c, clip := newTestController(t, fruits()...)
	require.NoError(t, c.Release(), "nothing held")
	assert.Equal(t, 0, clip.clears)

	openSearch(c)
	typeText(c, "Apple")
	press(c, KeyEnter)
	c.Handle(Rune('y'))

	require.NoError(t, c.Release())
	assert.False(t, clip.held)
	assert.Equal(t, 1, clip.clears)
}

func TestDeleteAccount(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Banana")
	press(c, KeyEnter)

	c.Handle(Rune('D'))
	require.Equal(t, StateConfirmDelete, c.State())
	c.Handle(Rune('y'))

	assert.Equal(t, StateSearch, c.State())
	assert.Empty(t, c.results)
	assert.False(t, c.accounts.Exists("Banana"))

	press(c, KeyBackspace, KeyBackspace, KeyBackspace, KeyBackspace, KeyBackspace, KeyBackspace)
	assert.Equal(t, []string{"Apple", "Cherry"}, labelsOf(c.results))

	res := c.Result()
	assert.True(t, res.Modified)
	assert.Equal(t, []string{"Apple", "Cherry"}, labelsOf(res.Accounts))
}

func TestDeleteDeclined(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Banana")
	press(c, KeyEnter)

	c.Handle(Rune('D'))
	c.Handle(Rune('n'))

	assert.Equal(t, StateView, c.State())
	assert.True(t, c.accounts.Exists("Banana"))
}

func TestDeleteDraftDiscardsIt(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Durian")
	press(c, KeyEnter)

	c.Handle(Rune('D'))
	c.Handle(Rune('y'))

	assert.Equal(t, StateSearch, c.State())
	assert.Equal(t, 3, c.accounts.Len())
	assert.False(t, c.Result().Modified)
}

func TestInterruptCommitsOpenView(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Cherry")
	press(c, KeyEnter)
	c.Handle(Rune('m'))
	typeText(c, "c@example.com")
	press(c, KeyEnter)

	press(c, KeyInterrupt)
	assert.True(t, c.Done())

	got, _ := c.accounts.Find("Cherry")
	assert.Equal(t, "c@example.com", got.Email)
}

func TestHandleAfterExitIsIgnored(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	press(c, KeyEsc)
	press(c, KeyEnter)
	assert.Equal(t, StateExit, c.State())
}

func changePassword(c *Controller, old, next, confirm string) {
	c.Handle(Rune('j'))
	press(c, KeyEnter)
	typeText(c, old)
	press(c, KeyEnter)
	typeText(c, next)
	press(c, KeyEnter)
	typeText(c, confirm)
	press(c, KeyEnter)
}

func TestChangePasswordSuccess(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	changePassword(c, "hunter2", "correct horse", "correct horse")

	assert.Equal(t, StateNotice, c.State())
	press(c, KeyEnter)
	assert.Equal(t, StateHome, c.State())

	res := c.Result()
	assert.True(t, res.PassphraseChanged)
	assert.True(t, res.Modified)
	assert.Equal(t, "correct horse", res.Passphrase)

	data, err := vault.Seal(res.Passphrase, res.Accounts)
	require.NoError(t, err)

	oldCipher, err := vault.NewPassphraseCipher("hunter2")
	require.NoError(t, err)
	_, err = vault.DecodeVault(oldCipher, "hunter2", data)
	assert.ErrorIs(t, err, vault.ErrPassphraseMismatch)

	newCipher, err := vault.NewPassphraseCipher("correct horse")
	require.NoError(t, err)
	decoded, err := vault.DecodeVault(newCipher, "correct horse", data)
	require.NoError(t, err)
	assert.Equal(t, fruits(), decoded)
}

func TestChangePasswordFailures(t *testing.T) {
	tests := []struct {
		name                string
		old, next, confirm string
	}{
		{"wrong old password", "hunter3", "x", "x"},
		{"empty new password", "hunter2", "", ""},
		{"confirmation mismatch", "hunter2", "abc", "abd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(t, fruits()...)
			changePassword(c, tt.old, tt.next, tt.confirm)

			res := c.Result()
			assert.False(t, res.PassphraseChanged)
			assert.False(t, res.Modified)
			assert.Equal(t, "hunter2", res.Passphrase)
		})
	}
}

func TestChangePasswordWrongOldStopsImmediately(t *testing.T) {
	c, _ := newTestController(t)
	c.Handle(Rune('j'))
	press(c, KeyEnter)
	typeText(c, "nope")
	press(c, KeyEnter)

	assert.Equal(t, StateNotice, c.State())
	assert.Contains(t, c.Screen().Lines[0].Text, "Incorrect password")
}

func TestChangePasswordEscAborts(t *testing.T) {
	c, _ := newTestController(t)
	c.Handle(Rune('j'))
	press(c, KeyEnter)
	typeText(c, "hunter2")
	press(c, KeyEnter)
	typeText(c, "new")
	press(c, KeyEsc)

	assert.Equal(t, StateNotice, c.State())
	press(c, KeyEnter)
	assert.Equal(t, StateHome, c.State())
	assert.Equal(t, "hunter2", c.Result().Passphrase)
}

func TestChangePasswordScreenIsMasked(t *testing.T) {
	c, _ := newTestController(t)
	c.Handle(Rune('j'))
	press(c, KeyEnter)
	typeText(c, "hunter2")

	for _, l := range c.Screen().Lines {
		assert.NotContains(t, l.Text, "hunter2")
	}
}

func TestHelpReturnsHome(t *testing.T) {
	c, _ := newTestController(t)
	press(c, KeyDown, KeyDown, KeyEnter)
	require.Equal(t, StateHelp, c.State())

	s := c.Screen()
	assert.Equal(t, "Help", s.Title)
	var found bool
	for _, l := range s.Lines {
		if l.Label == "G" {
			found = true
		}
	}
	assert.True(t, found)

	c.Handle(Rune('x'))
	assert.Equal(t, StateHome, c.State())
}

func TestViewScreenMasksPassword(t *testing.T) {
	c, _ := newTestController(t, fruits()...)
	openSearch(c)
	typeText(c, "Apple")
	press(c, KeyEnter)

	s := c.Screen()
	assert.Equal(t, "Apple", s.Title)
	for _, l := range s.Lines {
		assert.NotEqual(t, "a1", l.Text)
	}
	assert.Equal(t, LineSelected, s.Lines[0].Kind)
}
