package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/jask/stockflow/internal/auth"
	"github.com/jask/stockflow/internal/config"
	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
	"github.com/jask/stockflow/internal/service"
	"github.com/jask/stockflow/internal/session"
)

// App ties together views. It owns exactly one session.
type App struct {
	ctx      context.Context
	services Services
	cfg      config.Config
	tz       *time.Location
	session  session.Session

	// logged-out screens
	screen     authScreen
	inputs     []textinput.Model
	focus      int
	roleCursor int

	// page data
	summary   *service.Summary
	inventory []repository.Product
	supply    []repository.Product
	searching string
	placed    []repository.Order
	incoming  []repository.Order
	notes     []repository.Notification

	pane    inventoryPane
	cursor  int
	modal   modalState
	prompts []textinput.Model
	pending string // product id the open modal acts on
	status  string

	currency string
}

type Services struct {
	Auth          *auth.Authenticator
	Catalog       *service.CatalogService
	Workflow      *service.WorkflowService
	Notifications *service.NotificationService
	Dashboard     *service.DashboardService
}

type authScreen string

const (
	screenLogin  authScreen = "login"
	screenSignup authScreen = "signup"
)

type inventoryPane string

const (
	paneOwn    inventoryPane = "own"
	paneSupply inventoryPane = "supply"
)

type modalState string

const (
	modalNone        modalState = ""
	modalOrder       modalState = "order"
	modalManufacture modalState = "manufacture"
	modalAddProduct  modalState = "addProduct"
	modalSearch      modalState = "search"
)

func New(ctx context.Context, cfg config.Config, services Services, tz *time.Location) *App {
	if tz == nil {
		tz = time.Local
	}
	a := &App{
		ctx:      ctx,
		services: services,
		cfg:      cfg,
		tz:       tz,
		session:  session.New(),
		currency: cfg.UI.CurrencySymbol,
	}
	a.showLogin("")
	return a
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) actor() domain.Actor { return a.session.Actor() }

func (a *App) loadAll() tea.Cmd {
	return tea.Batch(a.loadSummary(), a.loadInventory(), a.loadOrders(), a.loadNotifications())
}

func (a *App) loadSummary() tea.Cmd {
	actor := a.actor()
	return func() tea.Msg {
		sum, err := a.services.Dashboard.Summary(a.ctx, actor)
		if err != nil {
			return errMsg{err}
		}
		return summaryMsg(sum)
	}
}

func (a *App) loadInventory() tea.Cmd {
	actor := a.actor()
	query := a.searching
	return func() tea.Msg {
		var msg inventoryMsg
		var err error
		if actor.Role.Sells() {
			if msg.own, err = a.services.Catalog.Inventory(a.ctx, actor.Username); err != nil {
				return errMsg{err}
			}
		}
		if msg.supply, err = a.services.Catalog.Search(a.ctx, query, actor.Role); err != nil {
			return errMsg{err}
		}
		return msg
	}
}

func (a *App) loadOrders() tea.Cmd {
	actor := a.actor()
	return func() tea.Msg {
		var msg ordersMsg
		var err error
		if msg.placed, err = a.services.Workflow.ListOrders(a.ctx, actor.Username); err != nil {
			return errMsg{err}
		}
		if actor.Role.Sells() {
			if msg.incoming, err = a.services.Workflow.IncomingOrders(a.ctx, actor.Username); err != nil {
				return errMsg{err}
			}
		}
		return msg
	}
}

func (a *App) loadNotifications() tea.Cmd {
	username := a.session.Username
	return func() tea.Msg {
		list, err := a.services.Notifications.List(a.ctx, username)
		if err != nil {
			return errMsg{err}
		}
		return notificationsMsg(list)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if m.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if !a.session.LoggedIn {
			return a.handleAuthKey(m)
		}
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		return a.handlePageKey(m)
	case summaryMsg:
		sum := service.Summary(m)
		a.summary = &sum
	case inventoryMsg:
		a.inventory = m.own
		a.supply = m.supply
		a.clampCursor()
	case ordersMsg:
		a.placed = m.placed
		a.incoming = m.incoming
	case notificationsMsg:
		a.notes = m
		a.clampCursor()
	case orderDoneMsg:
		o := m.order
		if o.Status == domain.StatusRejected {
			a.status = fmt.Sprintf("order %s rejected: %s", shortID(o.ID), o.Reason)
		} else {
			a.status = fmt.Sprintf("order %s %s: %d x %s", shortID(o.ID), strings.ToLower(o.Status.Label()), o.Quantity, o.ProductName)
		}
		return a, a.loadAll()
	case statusMsg:
		a.status = string(m)
		if a.session.LoggedIn {
			return a, a.loadAll()
		}
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) navigate(p session.Page) {
	next, err := a.session.Navigate(p)
	if err != nil {
		a.status = err.Error()
		return
	}
	a.session = next
	a.cursor = 0
	a.status = ""
}

func (a *App) handlePageKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if entry, ok := menuKeys[m.String()]; ok {
		if entry == "logout" {
			a.logout()
			return a, nil
		}
		p, err := session.ParsePage(entry)
		if err != nil {
			a.status = err.Error()
			return a, nil
		}
		a.navigate(p)
		return a, a.loadPage(p)
	}

	switch m.String() {
	case "q":
		return a, tea.Quit
	case "r":
		return a, a.loadAll()
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "down", "j":
		if a.cursor < a.listLen()-1 {
			a.cursor++
		}
		return a, nil
	}

	switch a.session.Page {
	case session.Inventory:
		return a.handleInventoryKey(m)
	case session.Notifications:
		return a.handleNotificationsKey(m)
	}
	return a, nil
}

// menuKeys maps shortcuts to menu entries.
var menuKeys = map[string]string{
	"d": "dashboard",
	"i": "inventory",
	"o": "orders",
	"n": "notifications",
	"L": "logout",
}

func (a *App) loadPage(p session.Page) tea.Cmd {
	switch p {
	case session.Inventory:
		return a.loadInventory()
	case session.Orders:
		return a.loadOrders()
	case session.Notifications:
		return a.loadNotifications()
	default:
		return a.loadSummary()
	}
}

func (a *App) handleInventoryKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	role := a.session.Role
	switch m.String() {
	case "tab":
		if role.Sells() && role != domain.Manufacturer {
			if a.activePane() == paneOwn {
				a.pane = paneSupply
			} else {
				a.pane = paneOwn
			}
			a.cursor = 0
		}
	case "b":
		p := a.selectedSupply()
		if p == nil {
			a.status = "nothing to buy"
			return a, nil
		}
		a.openModal(modalOrder, p.ID, newInput("quantity", false))
	case "m":
		if role != domain.Manufacturer {
			a.status = domain.ErrUnauthorized.Error()
			return a, nil
		}
		p := a.selectedOwn()
		if p == nil {
			a.status = "no product selected"
			return a, nil
		}
		a.openModal(modalManufacture, p.ID, newInput("quantity", false))
	case "a":
		if !role.Sells() {
			a.status = domain.ErrUnauthorized.Error()
			return a, nil
		}
		a.openModal(modalAddProduct, "",
			newInput("name", false), newInput("quantity", false), newInput("price", false))
	case "/":
		if _, ok := role.Supplier(); !ok {
			return a, nil
		}
		in := newInput("search supply", false)
		in.SetValue(a.searching)
		a.openModal(modalSearch, "", in)
	}
	return a, nil
}

func (a *App) handleNotificationsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "enter":
		if a.cursor >= len(a.notes) {
			return a, nil
		}
		return a, a.markReadCmd(a.notes[a.cursor].ID)
	case "A":
		return a, a.markAllReadCmd()
	}
	return a, nil
}

func (a *App) openModal(kind modalState, productID string, prompts ...textinput.Model) {
	a.modal = kind
	a.pending = productID
	a.prompts = prompts
	a.focus = 0
	a.prompts[0].Focus()
	a.status = ""
}

func (a *App) closeModal() {
	a.modal = modalNone
	a.pending = ""
	a.prompts = nil
	a.focus = 0
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.closeModal()
		return a, nil
	case tea.KeyTab, tea.KeyDown:
		a.focusPrompt(a.focus + 1)
		return a, nil
	case tea.KeyShiftTab, tea.KeyUp:
		a.focusPrompt(a.focus - 1)
		return a, nil
	case tea.KeyEnter:
		if a.focus < len(a.prompts)-1 {
			a.focusPrompt(a.focus + 1)
			return a, nil
		}
		return a, a.submitModal()
	}
	var cmd tea.Cmd
	a.prompts[a.focus], cmd = a.prompts[a.focus].Update(m)
	return a, cmd
}

func (a *App) focusPrompt(i int) {
	n := len(a.prompts)
	i = (i%n + n) % n
	a.prompts[a.focus].Blur()
	a.focus = i
	a.prompts[a.focus].Focus()
}

func (a *App) submitModal() tea.Cmd {
	kind, productID := a.modal, a.pending
	values := make([]string, len(a.prompts))
	for i, p := range a.prompts {
		values[i] = strings.TrimSpace(p.Value())
	}

	switch kind {
	case modalSearch:
		a.closeModal()
		a.searching = values[0]
		a.pane = paneSupply
		a.cursor = 0
		return a.loadInventory()
	case modalOrder, modalManufacture:
		qty, err := strconv.Atoi(values[0])
		if err != nil || qty <= 0 {
			a.status = domain.ErrInvalidQuantity.Error()
			return nil
		}
		a.closeModal()
		if kind == modalOrder {
			return a.orderCmd(productID, qty)
		}
		return a.manufactureCmd(productID, qty)
	case modalAddProduct:
		qty, err := strconv.Atoi(values[1])
		if err != nil {
			a.status = domain.ErrInvalidQuantity.Error()
			return nil
		}
		price, err := decimal.NewFromString(strings.TrimPrefix(values[2], a.currency))
		if err != nil {
			a.status = domain.ErrInvalidPrice.Error()
			return nil
		}
		a.closeModal()
		return a.addProductCmd(values[0], qty, price)
	}
	a.closeModal()
	return nil
}

func (a *App) orderCmd(productID string, qty int) tea.Cmd {
	actor := a.actor()
	return func() tea.Msg {
		o, err := a.services.Workflow.PlaceOrder(a.ctx, actor, productID, qty)
		if err != nil {
			return errMsg{err}
		}
		return orderDoneMsg{order: *o}
	}
}

func (a *App) manufactureCmd(productID string, qty int) tea.Cmd {
	actor := a.actor()
	return func() tea.Msg {
		p, err := a.services.Workflow.Manufacture(a.ctx, actor, productID, qty)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("manufactured %d x %s, stock %d", qty, p.Name, p.Quantity))
	}
}

func (a *App) addProductCmd(name string, qty int, price decimal.Decimal) tea.Cmd {
	actor := a.actor()
	return func() tea.Msg {
		p, err := a.services.Catalog.AddProduct(a.ctx, actor, name, qty, price)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg("added " + p.Name)
	}
}

func (a *App) markReadCmd(id string) tea.Cmd {
	username := a.session.Username
	return func() tea.Msg {
		if err := a.services.Notifications.MarkRead(a.ctx, username, id); err != nil {
			return errMsg{err}
		}
		return statusMsg("marked read")
	}
}

func (a *App) markAllReadCmd() tea.Cmd {
	username := a.session.Username
	return func() tea.Msg {
		n, err := a.services.Notifications.MarkAllRead(a.ctx, username)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("%d marked read", n))
	}
}

func (a *App) logout() {
	username := a.session.Username
	a.session = a.session.Logout()
	a.summary = nil
	a.inventory, a.supply, a.placed, a.incoming, a.notes = nil, nil, nil, nil, nil
	a.searching = ""
	a.pane = ""
	a.cursor = 0
	a.closeModal()
	a.showLogin(username)
	a.status = "logged out"
}

func (a *App) listLen() int {
	switch a.session.Page {
	case session.Inventory:
		if a.activePane() == paneOwn {
			return len(a.inventory)
		}
		return len(a.supply)
	case session.Orders:
		return len(a.placed)
	case session.Notifications:
		return len(a.notes)
	}
	return 0
}

func (a *App) clampCursor() {
	if n := a.listLen(); a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

// activePane is the pane shown for the role: customers only buy and
// manufacturers only make.
func (a *App) activePane() inventoryPane {
	switch a.session.Role {
	case domain.Customer:
		return paneSupply
	case domain.Manufacturer:
		return paneOwn
	}
	if a.pane == "" {
		return paneOwn
	}
	return a.pane
}

func (a *App) selectedOwn() *repository.Product {
	if a.activePane() != paneOwn || a.cursor >= len(a.inventory) {
		return nil
	}
	return &a.inventory[a.cursor]
}

func (a *App) selectedSupply() *repository.Product {
	if a.activePane() != paneSupply || a.cursor >= len(a.supply) {
		return nil
	}
	return &a.supply[a.cursor]
}

type summaryMsg service.Summary

type inventoryMsg struct {
	own    []repository.Product
	supply []repository.Product
}

type ordersMsg struct {
	placed   []repository.Order
	incoming []repository.Order
}

type notificationsMsg []repository.Notification

type orderDoneMsg struct {
	order repository.Order
}

type statusMsg string

type errMsg struct{ error }

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func isUserError(err error) bool {
	for _, target := range []error{
		domain.ErrMissingFields, domain.ErrInvalidCredentials, domain.ErrDuplicateUsername,
		domain.ErrPasswordMismatch, domain.ErrPasswordTooShort, domain.ErrUnknownRole,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
