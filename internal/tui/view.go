package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jask/stockflow/internal/database/repository"
	"github.com/jask/stockflow/internal/domain"
	"github.com/jask/stockflow/internal/session"
)

// styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	headerStyle   = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
	statusStyle   = lipgloss.NewStyle().Italic(true)
	unreadStyle   = lipgloss.NewStyle().Bold(true)
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

var titleCase = cases.Title(language.English)

func (a *App) View() string {
	if !a.session.LoggedIn {
		return a.renderAuth()
	}
	if a.modal != modalNone {
		return a.renderHeader() + "\n" + a.renderModal()
	}

	var body string
	switch a.session.Page {
	case session.Inventory:
		body = a.renderInventory()
	case session.Orders:
		body = a.renderOrders()
	case session.Notifications:
		body = a.renderNotifications()
	default:
		body = a.renderDashboard()
	}
	out := a.renderHeader() + "\n" + body
	out += "\n[d] Dashboard  [i] Inventory  [o] Orders  [n] Notifications  [r] Refresh  [L] Log out  [q] Quit"
	if a.status != "" {
		out += "\n" + statusStyle.Render(a.status)
	}
	return out
}

func (a *App) renderHeader() string {
	return headerStyle.Render(fmt.Sprintf("stockflow | %s (%s)", a.session.Username, a.session.Role.Label()))
}

func (a *App) money(d decimal.Decimal) string {
	return a.currency + d.StringFixed(2)
}

func (a *App) pageTitle(extra string) string {
	t := titleCase.String(a.session.Page.String())
	if extra != "" {
		t += " - " + extra
	}
	return titleStyle.Render(t)
}

func (a *App) renderDashboard() string {
	title := a.pageTitle(titleCase.String(a.session.Role.Label()))
	if a.summary == nil {
		return title + "\nLoading..."
	}
	s := a.summary
	var b strings.Builder
	b.WriteString(title + "\n")
	if a.session.Role.Sells() {
		fmt.Fprintf(&b, "Products: %d  Units in stock: %s  Stock value: %s\n",
			s.Products, humanize.Comma(int64(s.Units)), a.money(s.InventoryValue))
		fmt.Fprintf(&b, "Incoming orders: %d\n", s.Incoming)
	}
	if _, buys := a.session.Role.Supplier(); buys {
		fmt.Fprintf(&b, "Orders placed: %d", s.PlacedOrders())
		for _, st := range domain.Statuses {
			if n := s.OrdersByStatus[st]; n > 0 {
				fmt.Fprintf(&b, "  %s: %d", st.Label(), n)
			}
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Unread notifications: %d", s.Unread)
	return b.String()
}

func (a *App) renderInventory() string {
	role := a.session.Role
	pane := a.activePane()
	var b strings.Builder
	if pane == paneOwn {
		b.WriteString(a.pageTitle("My stock") + "\n")
		a.renderProducts(&b, a.inventory, false)
	} else {
		extra := "Buy"
		if a.searching != "" {
			extra = fmt.Sprintf("Buy (search: %q)", a.searching)
		}
		b.WriteString(a.pageTitle(extra) + "\n")
		a.renderProducts(&b, a.supply, true)
	}

	var hints []string
	if role.Sells() && role != domain.Manufacturer {
		hints = append(hints, "[tab] Stock/Buy")
	}
	if pane == paneSupply {
		hints = append(hints, "[b] Buy", "[/] Search")
	}
	if role == domain.Manufacturer {
		hints = append(hints, "[m] Manufacture")
	}
	if role.Sells() {
		hints = append(hints, "[a] Add product")
	}
	b.WriteString(strings.Join(hints, "  "))
	return b.String()
}

func (a *App) renderProducts(b *strings.Builder, products []repository.Product, showOwner bool) {
	if len(products) == 0 {
		b.WriteString("  (no products)\n")
		return
	}
	for i, p := range products {
		marker := " "
		if i == a.cursor {
			marker = "▶"
		}
		line := fmt.Sprintf("%s %-24s %6d  %10s", marker, p.Name, p.Quantity, a.money(p.Price))
		if showOwner {
			line += "  " + p.OwnerUsername
		}
		b.WriteString(line + "\n")
	}
}

func (a *App) renderOrders() string {
	var b strings.Builder
	b.WriteString(a.pageTitle("Placed") + "\n")
	if _, buys := a.session.Role.Supplier(); !buys {
		b.WriteString("  (manufacturers do not place orders)\n")
	} else {
		a.renderOrderList(&b, a.placed, true)
	}
	if a.session.Role.Sells() {
		b.WriteString(titleStyle.Render("Incoming") + "\n")
		a.renderOrderList(&b, a.incoming, false)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) renderOrderList(b *strings.Builder, orders []repository.Order, cursor bool) {
	if len(orders) == 0 {
		b.WriteString("  (no orders)\n")
		return
	}
	for i, o := range orders {
		marker := " "
		if cursor && i == a.cursor {
			marker = "▶"
		}
		who := "from " + o.SupplierUsername
		if !cursor {
			who = "by " + o.BuyerUsername
		}
		status := o.Status.Label()
		if o.Status == domain.StatusRejected {
			status = rejectedStyle.Render(status)
		}
		line := fmt.Sprintf("%s %s  %3d x %-20s %10s  %-9s %-14s %s",
			marker, shortID(o.ID), o.Quantity, o.ProductName, a.money(o.Total()), status, who,
			humanize.Time(o.CreatedAt.In(a.tz)))
		if o.Reason != "" {
			line += "  (" + o.Reason + ")"
		}
		b.WriteString(line + "\n")
	}
}

func (a *App) renderNotifications() string {
	unread := 0
	for _, n := range a.notes {
		if !n.Read {
			unread++
		}
	}
	var b strings.Builder
	b.WriteString(a.pageTitle(fmt.Sprintf("%d unread", unread)) + "\n")
	if len(a.notes) == 0 {
		b.WriteString("  (nothing yet)\n")
	}
	for i, n := range a.notes {
		marker := " "
		if i == a.cursor {
			marker = "▶"
		}
		msg := n.Message
		if !n.Read {
			msg = unreadStyle.Render("• " + msg)
		} else {
			msg = "  " + msg
		}
		fmt.Fprintf(&b, "%s %s  %s\n", marker, msg, headerStyle.Render(humanize.Time(n.CreatedAt.In(a.tz))))
	}
	b.WriteString("[enter] Mark read  [A] Mark all read")
	return b.String()
}

func (a *App) renderModal() string {
	var title, hint string
	var labels []string
	switch a.modal {
	case modalOrder:
		title, labels = "Place order", []string{"Quantity"}
		if p := a.productByID(a.supply, a.pending); p != nil {
			title = fmt.Sprintf("Order %s from %s (%d in stock, %s each)", p.Name, p.OwnerUsername, p.Quantity, a.money(p.Price))
		}
		hint = "[enter] Order  [esc] Cancel"
	case modalManufacture:
		title, labels = "Manufacture", []string{"Quantity"}
		if p := a.productByID(a.inventory, a.pending); p != nil {
			title = fmt.Sprintf("Manufacture %s (%d in stock)", p.Name, p.Quantity)
		}
		hint = "[enter] Manufacture  [esc] Cancel"
	case modalAddProduct:
		title, labels = "Add product", []string{"Name", "Quantity", "Price"}
		hint = "[tab] Next field  [enter] Save  [esc] Cancel"
	case modalSearch:
		title, labels = "Search supply", []string{"Query"}
		hint = "[enter] Search (empty shows all)  [esc] Cancel"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")
	for i, p := range a.prompts {
		marker := " "
		if i == a.focus {
			marker = "▶"
		}
		fmt.Fprintf(&b, "%s %-9s %s\n", marker, labels[i]+":", p.View())
	}
	b.WriteString(hint)
	if a.status != "" {
		b.WriteString("\n" + statusStyle.Render(a.status))
	}
	return b.String()
}

func (a *App) productByID(list []repository.Product, id string) *repository.Product {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}
