package tui

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"inventaris/internal/apiclient"
	"inventaris/internal/catalog"
	"inventaris/internal/domain"
	"inventaris/internal/draft"
	"inventaris/internal/i18n"
	"inventaris/internal/logging"
)

type screen int

const (
	screenLogin screen = iota
	screenList
	screenDialog
)

type field int

const (
	fieldType field = iota
	fieldCustomer
	fieldPaymentStatus
	fieldPaymentMethod
	fieldNote
	fieldProduct
	fieldQuantity
	fieldPrice
	fieldItems
	fieldCount
)

// LogoutMsg отправляется хуком клиента, когда сессию не удалось продлить
type LogoutMsg struct{}

type loginMsg struct{ err error }

type pageMsg struct {
	n    int
	page domain.Page[domain.Transaction]
	err  error
}

type catalogMsg struct {
	gen uint64
	cat catalog.Catalog
	err error
}

type submitMsg struct {
	gen uint64
	tx  domain.Transaction
	err error
}

type deleteMsg struct {
	number string
	err    error
}

// Options параметры модели
type Options struct {
	Lang    string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Model экран входа, список транзакций и диалог новой транзакции
type Model struct {
	backend Backend
	gate    *draft.Gate
	lang    string
	timeout time.Duration
	log     *slog.Logger

	screen screen
	status string
	errMsg string
	busy   bool

	// login
	username   input
	password   input
	remember   bool
	loginFocus int

	// list
	page          domain.Page[domain.Transaction]
	pageNo        int
	cursor        int
	confirmDelete bool

	// dialog
	dialog      *draft.Dialog
	catalog     *catalog.Catalog
	focus       field
	customerIdx int
	productIdx  int
	note        input
	qty         input
	price       input
	itemCursor  int
}

func New(b Backend, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = logging.New("tui")
	}
	m := &Model{
		backend:  b,
		gate:     draft.NewGate(b),
		lang:     i18n.Normalize(opts.Lang),
		timeout:  opts.Timeout,
		log:      opts.Logger,
		dialog:   draft.NewDialog(),
		username: input{value: b.Username()},
		password: input{mask: true},
		remember: b.Username() != "",
		pageNo:   1,
		qty:      input{numeric: true},
		price:    input{numeric: true},
	}
	if b.Authenticated() {
		m.screen = screenList
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.screen == screenList {
		return m.loadPage(1)
	}
	return nil
}

func (m *Model) ctx() (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(context.Background(), m.timeout)
	}
	return context.WithCancel(context.Background())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m, m.updateLogin(msg)
		case screenList:
			return m, m.updateList(msg)
		case screenDialog:
			return m, m.updateDialog(msg)
		}

	case LogoutMsg:
		m.toLogin(i18n.T(m.lang, "session_expired"))

	case loginMsg:
		m.busy = false
		if msg.err != nil {
			if apiclient.IsStatus(msg.err, http.StatusUnauthorized) {
				m.errMsg = i18n.T(m.lang, "login_failed")
			} else {
				m.errMsg = i18n.Error(m.lang, msg.err)
			}
			return m, nil
		}
		m.password.value = ""
		m.errMsg = ""
		m.status = i18n.T(m.lang, "login_ok")
		m.screen = screenList
		return m, m.loadPage(1)

	case pageMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.page = msg.page
		m.pageNo = msg.n
		m.cursor = min(m.cursor, max(len(m.page.Results)-1, 0))

	case catalogMsg:
		if msg.gen != m.dialog.Generation() || m.dialog.State() == draft.Closed {
			return m, nil
		}
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.catalog = &msg.cat

	case submitMsg:
		if !m.dialog.Complete(msg.gen, msg.err) {
			m.log.Debug("stale submission result ignored", "gen", msg.gen)
			return m, nil
		}
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.log.Info("transaction saved", "number", msg.tx.Number)
		m.screen = screenList
		m.errMsg = ""
		m.status = i18n.T(m.lang, "saved") + " " + msg.tx.Number
		return m, m.loadPage(1)

	case deleteMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.status = i18n.T(m.lang, "deleted") + " " + msg.number
		return m, m.loadPage(m.pageNo)
	}
	return m, nil
}

// fail показывает ошибку; истёкшая сессия возвращает на экран входа
func (m *Model) fail(err error) {
	m.log.Warn("operation failed", "err", err)
	if errors.Is(err, apiclient.ErrSessionExpired) {
		m.toLogin(i18n.T(m.lang, "session_expired"))
		return
	}
	m.errMsg = i18n.Error(m.lang, err)
}

func (m *Model) toLogin(reason string) {
	m.closeDialog()
	m.screen = screenLogin
	m.busy = false
	m.password.value = ""
	m.username.value = m.backend.Username()
	m.loginFocus = 0
	if m.username.value != "" {
		m.loginFocus = 1
	}
	m.page = domain.Page[domain.Transaction]{}
	m.errMsg = reason
	m.status = ""
}

// login

func (m *Model) updateLogin(k tea.KeyMsg) tea.Cmd {
	switch k.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.loginFocus = 1 - m.loginFocus
		return nil
	case tea.KeyCtrlR:
		m.remember = !m.remember
		return nil
	case tea.KeyEnter:
		if m.busy {
			return nil
		}
		if m.loginFocus == 0 {
			m.loginFocus = 1
			return nil
		}
		m.busy = true
		m.errMsg = ""
		user, pass, remember := m.username.value, m.password.value, m.remember
		return func() tea.Msg {
			ctx, cancel := m.ctx()
			defer cancel()
			return loginMsg{err: m.backend.Login(ctx, user, pass, remember)}
		}
	}
	if m.loginFocus == 0 {
		m.username.handle(k)
	} else {
		m.password.handle(k)
	}
	return nil
}

// list

func (m *Model) loadPage(n int) tea.Cmd {
	m.busy = true
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		page, err := m.backend.Transactions(ctx, n)
		return pageMsg{n: n, page: page, err: err}
	}
}

func (m *Model) updateList(k tea.KeyMsg) tea.Cmd {
	if m.confirmDelete {
		m.confirmDelete = false
		if k.String() == "y" && m.cursor < len(m.page.Results) {
			t := m.page.Results[m.cursor]
			m.busy = true
			return func() tea.Msg {
				ctx, cancel := m.ctx()
				defer cancel()
				return deleteMsg{number: t.Number, err: m.backend.DeleteTransaction(ctx, t.ID)}
			}
		}
		return nil
	}

	switch k.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.page.Results)-1 {
			m.cursor++
		}
	case "right", "pgdown":
		if m.page.Next != nil {
			m.cursor = 0
			return m.loadPage(m.pageNo + 1)
		}
	case "left", "pgup":
		if m.pageNo > 1 {
			m.cursor = 0
			return m.loadPage(m.pageNo - 1)
		}
	case "r":
		return m.loadPage(m.pageNo)
	case "d":
		if len(m.page.Results) > 0 {
			m.confirmDelete = true
		}
	case "n":
		return m.openDialog()
	case "o":
		if err := m.backend.Logout(); err != nil {
			m.fail(err)
			return nil
		}
		m.toLogin("")
	}
	return nil
}

// dialog

func (m *Model) openDialog() tea.Cmd {
	gen, err := m.dialog.Open()
	if err != nil {
		m.fail(err)
		return nil
	}
	m.screen = screenDialog
	m.catalog = nil
	m.focus = fieldType
	m.customerIdx = -1
	m.productIdx = -1
	m.itemCursor = 0
	m.note = input{}
	m.errMsg = ""
	m.syncLine()
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		cat, err := m.backend.Catalog(ctx)
		return catalogMsg{gen: gen, cat: cat, err: err}
	}
}

func (m *Model) closeDialog() {
	m.dialog.Close()
	m.catalog = nil
	if m.screen == screenDialog {
		m.screen = screenList
	}
}

// syncLine переносит количество и цену рабочей строки в поля ввода
func (m *Model) syncLine() {
	line := m.dialog.Composer().Line()
	m.qty.value = strconv.FormatInt(line.Quantity, 10)
	m.price.value = line.UnitPrice.String()
}

func (m *Model) updateDialog(k tea.KeyMsg) tea.Cmd {
	if k.Type == tea.KeyEsc {
		m.closeDialog()
		m.errMsg = ""
		return nil
	}
	if m.dialog.State() != draft.Open {
		return nil
	}

	switch k.Type {
	case tea.KeyTab:
		m.focus = (m.focus + 1) % fieldCount
		return nil
	case tea.KeyShiftTab:
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return nil
	case tea.KeyCtrlS:
		return m.submit()
	case tea.KeyLeft:
		m.cycle(-1)
		return nil
	case tea.KeyRight:
		m.cycle(1)
		return nil
	case tea.KeyEnter:
		switch m.focus {
		case fieldProduct, fieldQuantity, fieldPrice:
			m.addItem()
		default:
			m.focus = (m.focus + 1) % fieldCount
		}
		return nil
	}

	switch m.focus {
	case fieldNote:
		if m.note.handle(k) {
			m.change(draft.SetNote{Note: m.note.value})
		}
	case fieldQuantity:
		if m.qty.handle(k) {
			n, _ := strconv.ParseInt(m.qty.value, 10, 64)
			_ = m.dialog.SetLine(draft.SetQuantity{Quantity: n})
		}
	case fieldPrice:
		if m.price.handle(k) {
			if p, err := decimal.NewFromString(m.price.value); err == nil {
				_ = m.dialog.SetLine(draft.SetUnitPrice{Price: p})
			} else if m.price.value == "" {
				_ = m.dialog.SetLine(draft.SetUnitPrice{Price: decimal.Zero})
			}
		}
	case fieldItems:
		switch k.Type {
		case tea.KeyUp:
			if m.itemCursor > 0 {
				m.itemCursor--
			}
		case tea.KeyDown:
			if m.itemCursor < m.dialog.Draft().Len()-1 {
				m.itemCursor++
			}
		case tea.KeyDelete, tea.KeyBackspace, tea.KeyCtrlX:
			if m.dialog.RemoveItem(m.itemCursor) {
				m.itemCursor = max(0, min(m.itemCursor, m.dialog.Draft().Len()-1))
			}
		}
	}
	return nil
}

func (m *Model) change(ch draft.Change) {
	if err := m.dialog.Change(ch); err != nil {
		m.errMsg = i18n.Error(m.lang, err)
		return
	}
	m.errMsg = ""
}

func step(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

// cycle перебирает значения поля выбора
func (m *Model) cycle(delta int) {
	d := m.dialog.Draft()
	switch m.focus {
	case fieldType:
		next := domain.TransactionSale
		if d.IsSale() {
			next = domain.TransactionPurchase
		}
		m.change(draft.SetType{Type: next})
		if m.dialog.Draft().CustomerID() == nil {
			m.customerIdx = -1
		}
		m.syncLine()
	case fieldCustomer:
		if m.catalog == nil || len(m.catalog.Customers) == 0 || !d.IsSale() {
			return
		}
		// index -1 means no customer
		m.customerIdx = step(m.customerIdx+1, delta, len(m.catalog.Customers)+1) - 1
		if m.customerIdx < 0 {
			m.change(draft.ClearCustomer{})
			return
		}
		m.change(draft.SetCustomer{ID: m.catalog.Customers[m.customerIdx].ID})
	case fieldPaymentStatus:
		i := indexOf(domain.PaymentStatuses, d.PaymentStatus())
		m.change(draft.SetPaymentStatus{Status: domain.PaymentStatuses[step(i, delta, len(domain.PaymentStatuses))]})
	case fieldPaymentMethod:
		i := indexOf(domain.PaymentMethods, d.PaymentMethod())
		m.change(draft.SetPaymentMethod{Method: domain.PaymentMethods[step(i, delta, len(domain.PaymentMethods))]})
	case fieldProduct:
		if m.catalog == nil || len(m.catalog.Products) == 0 {
			return
		}
		m.productIdx = step(m.productIdx+1, delta, len(m.catalog.Products)+1) - 1
		if m.productIdx < 0 {
			_ = m.dialog.SetLine(draft.ClearProduct{})
		} else {
			_ = m.dialog.SetLine(draft.SelectProduct{Product: m.catalog.Products[m.productIdx]})
		}
		m.syncLine()
	}
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

func (m *Model) addItem() {
	if m.price.value != "" {
		if _, err := decimal.NewFromString(m.price.value); err != nil {
			m.errMsg = i18n.T(m.lang, "invalid_value")
			return
		}
	}
	it, err := m.dialog.AddItem()
	if err != nil {
		m.errMsg = i18n.Error(m.lang, err)
		return
	}
	m.errMsg = ""
	m.status = it.ProductName + " x" + strconv.FormatInt(it.Quantity, 10)
	m.productIdx = -1
	m.syncLine()
}

func (m *Model) submit() tea.Cmd {
	req, gen, err := m.dialog.BeginSubmit()
	if err != nil {
		m.errMsg = i18n.Error(m.lang, err)
		return nil
	}
	m.errMsg = ""
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		tx, err := m.gate.Dispatch(ctx, req)
		return submitMsg{gen: gen, tx: tx, err: err}
	}
}
