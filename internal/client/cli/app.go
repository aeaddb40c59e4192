// Package cli implements the interactive admin console. It is a small
// state machine: logged out until a login succeeds (or a stored token is
// found), then a command loop over the card catalogue. Any authorization
// failure drops the session back to logged out and discards the token.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cardcms/internal/client"
	"cardcms/internal/models"
)

// defaultAuthor is stamped onto new cards; the API requires the field
// but the console does not ask for it.
const defaultAuthor = "SPAM"

// cardAPI is what the console needs from the HTTP client.
type cardAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	ListCards(ctx context.Context, page int) ([]models.Card, error)
	CreateCard(ctx context.Context, form client.CardForm) (models.Card, error)
	UpdateCard(ctx context.Context, id string, form client.CardForm) (models.Card, error)
	DeleteCard(ctx context.Context, id string) error
	SetToken(token string)
}

// tokenStore persists the session token between runs.
type tokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// App drives the console. Not safe for concurrent use.
type App struct {
	api      cardAPI
	tokens   tokenStore
	reader   *bufio.Reader
	out      io.Writer
	loggedIn bool
}

func NewApp(api cardAPI, tokens tokenStore, in io.Reader, out io.Writer) *App {
	return &App{
		api:    api,
		tokens: tokens,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run executes the command loop until exit or EOF. A stored token resumes
// the previous session; it is verified lazily, on the first API call.
func (a *App) Run(ctx context.Context) error {
	if token, err := a.tokens.Load(); err == nil && token != "" {
		a.api.SetToken(token)
		a.loggedIn = true
		fmt.Fprintln(a.out, "Resumed session from stored token.")
	}

	fmt.Fprintln(a.out, "Card admin console. Type 'help' for commands.")
	for {
		cmd, err := getLine(a.reader, a.out, a.prompt())
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch cmd {
		case "":
			continue
		case "help":
			a.printHelp()
		case "login":
			a.login(ctx)
		case "list":
			a.listCards(ctx)
		case "add":
			a.addCard(ctx)
		case "edit":
			a.editCard(ctx)
		case "delete":
			a.deleteCard(ctx)
		case "logout":
			a.logout()
		case "exit", "quit":
			return nil
		default:
			fmt.Fprintf(a.out, "unknown command %q, type 'help'\n", cmd)
		}
	}
}

func (a *App) prompt() string {
	if a.loggedIn {
		return "cards> "
	}
	return "cards (logged out)> "
}

func (a *App) printHelp() {
	fmt.Fprintln(a.out, `Commands:
  login   - authenticate and start a session
  list    - show all cards
  add     - create a new card
  edit    - update an existing card
  delete  - remove a card
  logout  - end the session and forget the token
  exit    - quit`)
}

func (a *App) login(ctx context.Context) {
	username, err := getLine(a.reader, a.out, "Username: ")
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	password, err := getPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	token, err := a.api.Login(ctx, username, password)
	if errors.Is(err, client.ErrInvalidCredentials) {
		fmt.Fprintln(a.out, "Invalid username or password.")
		return
	}
	if err != nil {
		fmt.Fprintln(a.out, "Login failed:", err.Error())
		return
	}

	if err := a.tokens.Save(token); err != nil {
		fmt.Fprintln(a.out, "Warning: could not store token:", err.Error())
	}
	a.loggedIn = true
	fmt.Fprintln(a.out, "Logged in.")
}

func (a *App) logout() {
	a.api.SetToken("")
	a.loggedIn = false
	if err := a.tokens.Clear(); err != nil {
		fmt.Fprintln(a.out, "Warning: could not remove token:", err.Error())
	}
	fmt.Fprintln(a.out, "Logged out.")
}

// fetchAllCards walks pages until an empty one, de-duplicating by id in
// case a concurrent insert shifts rows between pages.
func (a *App) fetchAllCards(ctx context.Context) ([]models.Card, error) {
	seen := make(map[string]bool)
	var all []models.Card
	for page := 1; ; page++ {
		cards, err := a.api.ListCards(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(cards) == 0 {
			return all, nil
		}
		for _, c := range cards {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			all = append(all, c)
		}
	}
}

func (a *App) listCards(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	cards, err := a.fetchAllCards(ctx)
	if err != nil {
		a.reportAPIError(err)
		return
	}
	if len(cards) == 0 {
		fmt.Fprintln(a.out, "No cards yet.")
		return
	}
	for _, c := range cards {
		fmt.Fprintf(a.out, "%s  [%s]  %s (%s, %s)\n", c.ID, c.Category, c.Title, c.Author, c.ReadTime)
	}
	fmt.Fprintf(a.out, "%d card(s)\n", len(cards))
}

func (a *App) addCard(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	form, err := a.promptCardForm(true)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	form.Author = defaultAuthor

	card, err := a.api.CreateCard(ctx, form)
	if err != nil {
		a.reportAPIError(err)
		return
	}
	fmt.Fprintf(a.out, "Created card %s (%s)\n", card.ID, card.Slug)
}

func (a *App) editCard(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	id, err := getLine(a.reader, a.out, "Card id: ")
	if err != nil || id == "" {
		fmt.Fprintln(a.out, "A card id is required.")
		return
	}
	fmt.Fprintln(a.out, "Leave a field empty to keep its current value.")
	form, err := a.promptCardForm(false)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return
	}

	card, err := a.api.UpdateCard(ctx, id, form)
	if err != nil {
		a.reportAPIError(err)
		return
	}
	fmt.Fprintf(a.out, "Updated card %s (%s)\n", card.ID, card.Slug)
}

func (a *App) deleteCard(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	id, err := getLine(a.reader, a.out, "Card id: ")
	if err != nil || id == "" {
		fmt.Fprintln(a.out, "A card id is required.")
		return
	}
	confirm, err := getLine(a.reader, a.out, "Delete this card? [y/N]: ")
	if err != nil || !strings.EqualFold(confirm, "y") {
		fmt.Fprintln(a.out, "Cancelled.")
		return
	}

	if err := a.api.DeleteCard(ctx, id); err != nil {
		a.reportAPIError(err)
		return
	}
	fmt.Fprintln(a.out, "Card deleted.")
}

func (a *App) promptCardForm(creating bool) (client.CardForm, error) {
	var form client.CardForm
	var err error

	if form.Title, err = getLine(a.reader, a.out, "Title: "); err != nil {
		return form, err
	}
	if form.Content, err = getLine(a.reader, a.out, "Content: "); err != nil {
		return form, err
	}
	if form.Category, err = getLine(a.reader, a.out, "Category: "); err != nil {
		return form, err
	}
	if form.ReadTime, err = getLine(a.reader, a.out, "Read time (e.g. 5 min): "); err != nil {
		return form, err
	}
	imagePrompt := "Image path: "
	if !creating {
		imagePrompt = "Image path (empty to keep): "
	}
	if form.ImagePath, err = getLine(a.reader, a.out, imagePrompt); err != nil {
		return form, err
	}
	return form, nil
}

func (a *App) requireLogin() bool {
	if !a.loggedIn {
		fmt.Fprintln(a.out, "Please log in first.")
		return false
	}
	return true
}

// reportAPIError prints the failure; an authorization failure also ends
// the session, since the stored token is no longer usable.
func (a *App) reportAPIError(err error) {
	if errors.Is(err, client.ErrUnauthorized) {
		fmt.Fprintln(a.out, "Session expired, please log in again.")
		a.api.SetToken("")
		a.loggedIn = false
		_ = a.tokens.Clear()
		return
	}
	fmt.Fprintln(a.out, "Request failed:", err.Error())
}
