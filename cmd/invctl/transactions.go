package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"inventaris/internal/apiclient"
	"inventaris/internal/catalog"
	"inventaris/internal/domain"
	"inventaris/internal/draft"
	"inventaris/internal/i18n"
)

var transactions = table[domain.Transaction]{
	name:     "transaksi",
	usage:    "sales and purchase transactions",
	resource: (*apiclient.Client).Transactions,
	header:   []string{"ID", "NOMOR", "JENIS", "CUSTOMER", "TOTAL", "STATUS", "METODE", "TANGGAL"},
	row: func(t domain.Transaction) []string {
		customer := t.CustomerName
		if customer == "" {
			customer = "-"
		}
		return []string{
			id(t.ID), t.Number, domain.Label(t.Type), customer, i18n.Rupiah(t.Total),
			domain.Label(t.PaymentStatus), domain.Label(t.PaymentMethod),
			t.Date.Local().Format("02/01/2006 15:04"),
		}
	},
}

// itemSpec разобранный --item produk:jumlah[:harga]
type itemSpec struct {
	productID int64
	quantity  int64
	price     *decimal.Decimal
}

func parseItem(s string) (itemSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return itemSpec{}, fmt.Errorf("item %q: expected product:quantity[:price]", s)
	}
	pid, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return itemSpec{}, fmt.Errorf("item %q: product id: %w", s, draft.ErrInvalidValue)
	}
	qty, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return itemSpec{}, fmt.Errorf("item %q: quantity: %w", s, draft.ErrInvalidValue)
	}
	spec := itemSpec{productID: pid, quantity: qty}
	if len(parts) == 3 {
		p, err := decimal.NewFromString(parts[2])
		if err != nil {
			return itemSpec{}, fmt.Errorf("item %q: price: %w", s, draft.ErrInvalidValue)
		}
		spec.price = &p
	}
	return spec, nil
}

// compose заполняет диалог так же, как это делает пользователь в форме
func compose(d *draft.Dialog, cat catalog.Catalog, c *cli.Context) error {
	if v := c.String("type"); v != "" {
		t, err := domain.ParseTransactionType(v)
		if err != nil {
			return err
		}
		if err := d.Change(draft.SetType{Type: t}); err != nil {
			return err
		}
	}
	if c.IsSet("customer") {
		if _, ok := cat.Customer(c.Int64("customer")); !ok {
			return fmt.Errorf("customer %d not found", c.Int64("customer"))
		}
		if err := d.Change(draft.SetCustomer{ID: c.Int64("customer")}); err != nil {
			return err
		}
	}
	if v := c.String("status"); v != "" {
		s, err := domain.ParsePaymentStatus(v)
		if err != nil {
			return err
		}
		if err := d.Change(draft.SetPaymentStatus{Status: s}); err != nil {
			return err
		}
	}
	if v := c.String("method"); v != "" {
		m, err := domain.ParsePaymentMethod(v)
		if err != nil {
			return err
		}
		if err := d.Change(draft.SetPaymentMethod{Method: m}); err != nil {
			return err
		}
	}
	if err := d.Change(draft.SetNote{Note: c.String("note")}); err != nil {
		return err
	}

	for _, raw := range c.StringSlice("item") {
		spec, err := parseItem(raw)
		if err != nil {
			return err
		}
		p, ok := cat.Product(spec.productID)
		if !ok {
			return fmt.Errorf("product %d not found or inactive", spec.productID)
		}
		_ = d.SetLine(draft.SelectProduct{Product: p})
		_ = d.SetLine(draft.SetQuantity{Quantity: spec.quantity})
		if spec.price != nil {
			_ = d.SetLine(draft.SetUnitPrice{Price: *spec.price})
		}
		if _, err := d.AddItem(); err != nil {
			return err
		}
	}
	return nil
}

func (e *env) transactionsCommand() *cli.Command {
	show := &cli.Command{
		Name:      "show",
		Usage:     "show a transaction with its items",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			n, err := argID(c)
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(c)
			defer cancel()
			t, err := e.client.Transactions().Get(ctx, n)
			if err != nil {
				return err
			}
			w := c.App.Writer
			if err := transactions.print(w, []domain.Transaction{t}); err != nil {
				return err
			}
			if t.Note != "" {
				fmt.Fprintf(w, "\n%s\n", t.Note)
			}
			fmt.Fprintln(w)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KODE\tPRODUK\tJUMLAH\tHARGA\tSUBTOTAL")
			for _, it := range t.Items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					it.ProductCode, it.ProductName, it.Quantity, i18n.Rupiah(it.UnitPrice), i18n.Rupiah(it.Subtotal))
			}
			return tw.Flush()
		},
	}
	create := &cli.Command{
		Name:  "create",
		Usage: "record a sale or a purchase",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "PENJUALAN (sale) or PEMBELIAN (purchase)", Value: string(domain.TransactionSale)},
			&cli.Int64Flag{Name: "customer", Usage: "customer id, required for sales"},
			&cli.StringFlag{Name: "status", Usage: "LUNAS, BELUM_LUNAS or CICILAN"},
			&cli.StringFlag{Name: "method", Usage: "TUNAI, TRANSFER, E_WALLET or KARTU_DEBIT"},
			&cli.StringFlag{Name: "note"},
			&cli.StringSliceFlag{Name: "item", Aliases: []string{"i"}, Usage: "product:quantity[:price], repeatable"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := e.ctx(c)
			defer cancel()
			cat, err := catalog.FromClient(e.client).Load(ctx)
			if err != nil {
				return err
			}

			d := draft.NewDialog()
			if _, err := d.Open(); err != nil {
				return err
			}
			if err := compose(d, cat, c); err != nil {
				return err
			}
			t, err := d.Submit(ctx, draft.NewGate(e.client.Transactions()))
			if err != nil {
				return err
			}
			e.log.Info("transaction created", "number", t.Number, "total", t.Total.String())
			fmt.Fprintf(c.App.Writer, "%s %s (%s)\n", i18n.T(e.cfg.UI.Lang, "saved"), t.Number, i18n.Rupiah(t.Total))
			return nil
		},
	}
	return resourceCommand(e, transactions, show, create)
}
