package tui

import (
	"fmt"
	"strings"

	"inventaris/internal/domain"
	"inventaris/internal/draft"
	"inventaris/internal/i18n"
)

func (m *Model) View() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "Inventaris")
	fmt.Fprintln(b, "")
	switch m.screen {
	case screenLogin:
		m.viewLogin(b)
	case screenList:
		m.viewList(b)
	case screenDialog:
		m.viewDialog(b)
	}
	fmt.Fprintln(b, "")
	if m.errMsg != "" {
		fmt.Fprintf(b, "! %s\n", m.errMsg)
	}
	if m.status != "" {
		fmt.Fprintf(b, "Status: %s\n", m.status)
	}
	return b.String()
}

func marker(on bool, mark string) string {
	if on {
		return mark
	}
	return " "
}

func (m *Model) viewLogin(b *strings.Builder) {
	fmt.Fprintf(b, " %s Username: %s\n", marker(m.loginFocus == 0, ">"), m.username.view(m.loginFocus == 0))
	fmt.Fprintf(b, " %s Password: %s\n", marker(m.loginFocus == 1, ">"), m.password.view(m.loginFocus == 1))
	fmt.Fprintf(b, "   [%s] Remember me\n", marker(m.remember, "x"))
	if m.busy {
		fmt.Fprintln(b, "\n...")
	}
	fmt.Fprintln(b, "\nControls: tab switch field, ctrl+r remember, enter login, ctrl+c quit")
}

func (m *Model) viewList(b *strings.Builder) {
	fmt.Fprintf(b, "%s (%d)  page %d\n\n", i18n.T(m.lang, "transactions_title"), m.page.Count, m.pageNo)
	if len(m.page.Results) == 0 && !m.busy {
		fmt.Fprintln(b, "  -")
	}
	for i, t := range m.page.Results {
		customer := t.CustomerName
		if customer == "" {
			customer = "-"
		}
		fmt.Fprintf(b, " %s %-18s %-10s %-16s %14s  %-11s %s\n",
			marker(i == m.cursor, ">"),
			t.Number, domain.Label(t.Type), customer, i18n.Rupiah(t.Total),
			domain.Label(t.PaymentStatus), t.Date.Local().Format("02/01/2006 15:04"))
	}
	if m.confirmDelete && m.cursor < len(m.page.Results) {
		fmt.Fprintf(b, "\nHapus %s? (y/n)\n", m.page.Results[m.cursor].Number)
	}
	if m.busy {
		fmt.Fprintln(b, "\n...")
	}
	fmt.Fprintln(b, "\nControls: n new, d delete, r reload, left/right page, o logout, q quit")
}

func (m *Model) viewDialog(b *strings.Builder) {
	d := m.dialog.Draft()
	if d == nil {
		return
	}
	fmt.Fprintf(b, "%s\n\n", i18n.T(m.lang, "new_transaction"))
	if m.catalog == nil {
		fmt.Fprintln(b, "  ...")
	}

	customer := "-"
	if !d.IsSale() {
		customer = "(n/a)"
	} else if id := d.CustomerID(); id != nil && m.catalog != nil {
		if c, ok := m.catalog.Customer(*id); ok {
			customer = c.Name
		}
	}
	row := func(f field, label, value string) {
		fmt.Fprintf(b, " %s %-18s %s\n", marker(m.focus == f, ">"), label, value)
	}
	row(fieldType, "Jenis", "< "+domain.Label(d.Type())+" >")
	row(fieldCustomer, "Customer", "< "+customer+" >")
	row(fieldPaymentStatus, "Status Pembayaran", "< "+domain.Label(d.PaymentStatus())+" >")
	row(fieldPaymentMethod, "Metode Pembayaran", "< "+domain.Label(d.PaymentMethod())+" >")
	row(fieldNote, "Keterangan", m.note.view(m.focus == fieldNote))

	fmt.Fprintln(b, "")
	line := m.dialog.Composer().Line()
	product := "-"
	if line.Product != nil {
		product = fmt.Sprintf("%s - %s (stok %d)", line.Product.Code, line.Product.Name, line.Product.Stock)
	}
	row(fieldProduct, "Produk", "< "+product+" >")
	row(fieldQuantity, "Jumlah", m.qty.view(m.focus == fieldQuantity))
	row(fieldPrice, "Harga Satuan", m.price.view(m.focus == fieldPrice))
	fmt.Fprintf(b, "   %-18s %s\n", "Subtotal", i18n.Rupiah(line.Subtotal()))

	fmt.Fprintln(b, "")
	row(fieldItems, "Items", fmt.Sprintf("(%d)", d.Len()))
	for i, it := range d.Items() {
		fmt.Fprintf(b, "     %s %-24s %4d x %12s = %14s\n",
			marker(m.focus == fieldItems && i == m.itemCursor, "*"),
			it.ProductName, it.Quantity, i18n.Rupiah(it.UnitPrice), i18n.Rupiah(it.Subtotal))
	}
	fmt.Fprintf(b, "\n   %s: %s\n", i18n.T(m.lang, "total"), i18n.Rupiah(d.Total()))
	if m.dialog.State() == draft.Submitting {
		fmt.Fprintf(b, "\n%s\n", i18n.T(m.lang, "busy"))
	}
	fmt.Fprintln(b, "\nControls: tab/shift+tab field, left/right choose, enter add item, del remove item, ctrl+s save, esc cancel")
}
