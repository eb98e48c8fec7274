package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"inventaris/internal/apiclient"
	"inventaris/internal/dashboard"
	"inventaris/internal/domain"
	"inventaris/internal/i18n"
)

// table описывает вывод ресурса в виде таблицы
type table[T any] struct {
	name     string
	usage    string
	resource func(*apiclient.Client) apiclient.Resource[T]
	header   []string
	row      func(T) []string
}

func (t table[T]) print(w io.Writer, items []T) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.header, "\t"))
	for _, it := range items {
		fmt.Fprintln(tw, strings.Join(t.row(it), "\t"))
	}
	return tw.Flush()
}

func argID(c *cli.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("expected a positive numeric id, got %q", c.Args().First())
	}
	return id, nil
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func pageFooter(w io.Writer, count, page, shown int, next *string) {
	more := ""
	if next != nil {
		more = fmt.Sprintf(", next: --page %d", page+1)
	}
	fmt.Fprintf(w, "\n%d of %d (page %d%s)\n", shown, count, page, more)
}

// resourceCommand list/get/delete для справочного ресурса
func resourceCommand[T any](e *env, t table[T], extra ...*cli.Command) *cli.Command {
	list := &cli.Command{
		Name:  "list",
		Usage: "list " + t.name,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}},
			&cli.BoolFlag{Name: "all", Usage: "follow pagination to the last page"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := e.ctx(c)
			defer cancel()
			r := t.resource(e.client)
			if c.Bool("all") {
				items, err := r.All(ctx)
				if err != nil {
					return err
				}
				return t.print(c.App.Writer, items)
			}
			p, err := r.Search(ctx, c.String("search"), c.Int("page"))
			if err != nil {
				return err
			}
			if err := t.print(c.App.Writer, p.Results); err != nil {
				return err
			}
			pageFooter(c.App.Writer, p.Count, c.Int("page"), len(p.Results), p.Next)
			return nil
		},
	}
	get := &cli.Command{
		Name:      "get",
		Usage:     "show one record",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			n, err := argID(c)
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(c)
			defer cancel()
			v, err := t.resource(e.client).Get(ctx, n)
			if err != nil {
				return err
			}
			return t.print(c.App.Writer, []T{v})
		},
	}
	del := &cli.Command{
		Name:      "delete",
		Usage:     "delete one record",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			n, err := argID(c)
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(c)
			defer cancel()
			if err := t.resource(e.client).Delete(ctx, n); err != nil {
				return err
			}
			e.say(c, "deleted")
			return nil
		},
	}
	return &cli.Command{
		Name:        t.name,
		Usage:       t.usage,
		Subcommands: append([]*cli.Command{list, get, del}, extra...),
	}
}

var suppliers = table[domain.Supplier]{
	name:     "supplier",
	usage:    "suppliers",
	resource: (*apiclient.Client).Suppliers,
	header:   []string{"ID", "NAMA", "KONTAK", "EMAIL", "STATUS"},
	row: func(s domain.Supplier) []string {
		return []string{id(s.ID), s.Name, s.Contact, s.Email, domain.Label(s.Status)}
	},
}

var categories = table[domain.Category]{
	name:     "kategori",
	usage:    "product categories",
	resource: (*apiclient.Client).Categories,
	header:   []string{"ID", "NAMA", "DESKRIPSI"},
	row: func(k domain.Category) []string {
		return []string{id(k.ID), k.Name, k.Description}
	},
}

var customers = table[domain.Customer]{
	name:     "customer",
	usage:    "customers",
	resource: (*apiclient.Client).Customers,
	header:   []string{"ID", "NAMA", "TELEPON", "TIPE", "STATUS"},
	row: func(k domain.Customer) []string {
		return []string{id(k.ID), k.Name, k.Phone, domain.Label(k.Type), domain.Label(k.Status)}
	},
}

var products = table[domain.Product]{
	name:     "produk",
	usage:    "products",
	resource: (*apiclient.Client).Products,
	header:   []string{"ID", "KODE", "NAMA", "KATEGORI", "HARGA BELI", "HARGA JUAL", "STOK", "MIN", "STATUS"},
	row: func(p domain.Product) []string {
		stock := strconv.FormatInt(p.Stock, 10)
		if p.IsLowStock() {
			stock += " !"
		}
		return []string{
			id(p.ID), p.Code, p.Name, p.CategoryName,
			i18n.Rupiah(p.PurchasePrice), i18n.Rupiah(p.SalePrice),
			stock, strconv.FormatInt(p.MinStock, 10), domain.Label(p.Status),
		}
	},
}

// dataFlag тело запроса в виде JSON с полями API, например {"nama_kategori":"Sembako"}
func dataFlag(c *cli.Context) (json.RawMessage, error) {
	raw := json.RawMessage(c.String("data"))
	if !json.Valid(raw) {
		return nil, fmt.Errorf("--data must be a JSON object")
	}
	return raw, nil
}

// writeCommands create/update для справочных ресурсов
func writeCommands[T any](e *env, t table[T]) []*cli.Command {
	data := &cli.StringFlag{Name: "data", Aliases: []string{"d"}, Required: true, Usage: "JSON body with API field names"}
	create := &cli.Command{
		Name:  "create",
		Usage: "create a record",
		Flags: []cli.Flag{data},
		Action: func(c *cli.Context) error {
			raw, err := dataFlag(c)
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(c)
			defer cancel()
			v, err := t.resource(e.client).Create(ctx, raw)
			if err != nil {
				return err
			}
			return t.print(c.App.Writer, []T{v})
		},
	}
	update := &cli.Command{
		Name:      "update",
		Usage:     "replace a record",
		ArgsUsage: "<id>",
		Flags:     []cli.Flag{data},
		Action: func(c *cli.Context) error {
			n, err := argID(c)
			if err != nil {
				return err
			}
			raw, err := dataFlag(c)
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(c)
			defer cancel()
			v, err := t.resource(e.client).Update(ctx, n, raw)
			if err != nil {
				return err
			}
			return t.print(c.App.Writer, []T{v})
		},
	}
	return []*cli.Command{create, update}
}

func (e *env) suppliersCommand() *cli.Command {
	return resourceCommand(e, suppliers, writeCommands(e, suppliers)...)
}

func (e *env) categoriesCommand() *cli.Command {
	return resourceCommand(e, categories, writeCommands(e, categories)...)
}

func (e *env) customersCommand() *cli.Command {
	return resourceCommand(e, customers, writeCommands(e, customers)...)
}

func (e *env) productsCommand() *cli.Command {
	lowStock := &cli.Command{
		Name:  "low-stock",
		Usage: "products at or below their minimum stock",
		Action: func(c *cli.Context) error {
			ctx, cancel := e.ctx(c)
			defer cancel()
			all, err := e.client.Products().All(ctx)
			if err != nil {
				return err
			}
			return products.print(c.App.Writer, domain.LowStock(all))
		},
	}
	return resourceCommand(e, products, append(writeCommands(e, products), lowStock)...)
}

func (e *env) registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create a new user account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}},
		},
		Action: func(c *cli.Context) error {
			pass, err := prompt(c, "Password", c.String("password"))
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(c)
			defer cancel()
			return e.client.Register(ctx, domain.Registration{
				Username: c.String("username"),
				Email:    c.String("email"),
				Password: pass,
			})
		},
	}
}

func (e *env) dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "counts, low stock and recent transactions",
		Action: func(c *cli.Context) error {
			ctx, cancel := e.ctx(c)
			defer cancel()
			s, err := dashboard.Load(ctx, dashboard.FromClient(e.client))
			if err != nil {
				return err
			}
			w := c.App.Writer
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Produk\t%d\n", s.TotalProducts)
			fmt.Fprintf(tw, "Supplier\t%d\n", s.TotalSuppliers)
			fmt.Fprintf(tw, "Customer\t%d\n", s.TotalCustomers)
			fmt.Fprintf(tw, "Kategori\t%d\n", s.TotalCategories)
			fmt.Fprintf(tw, "Transaksi\t%d\n", s.TotalTransactions)
			if err := tw.Flush(); err != nil {
				return err
			}
			if n := s.LowStockCount(); n > 0 {
				fmt.Fprintln(w)
				e.say(c, "low_stock_warning", n)
				if err := products.print(w, domain.LowStock(s.Products)); err != nil {
					return err
				}
			}
			fmt.Fprintln(w)
			return transactions.print(w, s.Recent(dashboard.RecentLimit))
		},
	}
}
