/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/merchke/storefront/internal/catalog"
	"github.com/merchke/storefront/internal/services"
	"github.com/merchke/storefront/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
}

func kes(amount float64) string {
	return "KES " + decimal.NewFromFloat(amount).StringFixed(2)
}

func stockLabel(stock *int) string {
	if stock == nil {
		return "-"
	}
	return fmt.Sprint(*stock)
}

func printProducts(cmd *cobra.Command, products []types.Product) error {
	w := newTable(cmd)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK\tFLAGS")
	for _, p := range products {
		flags := ""
		if p.IsFeatured {
			flags += "featured "
		}
		if !p.IsActive {
			flags += "inactive"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, kes(p.BasePrice), stockLabel(p.StockQuantity), flags)
	}
	return w.Flush()
}

func printCategoryTree(w *tabwriter.Writer, nodes []catalog.CategoryNode, depth int) {
	for _, n := range nodes {
		indent := ""
		for i := 0; i < depth; i++ {
			indent += "  "
		}
		fmt.Fprintf(w, "%d\t%s%s\t%s\n", n.ID, indent, n.Name, n.Slug)
		printCategoryTree(w, n.Children, depth+1)
	}
}

func printCart(cmd *cobra.Command, cart services.CartView) error {
	if len(cart.Items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Your cart is empty.")
		return nil
	}
	w := newTable(cmd)
	fmt.Fprintln(w, "PRODUCT\tNAME\tQTY\tPRICE")
	for _, item := range cart.Items {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", item.ProductID, item.ProductName, item.Quantity, kes(item.Price))
	}
	fmt.Fprintf(w, "\t%d item(s)\t\t%s\n", cart.ItemCount, kes(cart.Subtotal))
	return w.Flush()
}

func printOrders(cmd *cobra.Command, orders []services.OrderView) error {
	w := newTable(cmd)
	fmt.Fprintln(w, "ID\tNUMBER\tDATE\tSTATUS\tPROGRESS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d%%\t%s\n", o.ID, o.OrderNumber, o.CreatedAt.Format(dateLayout), o.Status, o.Progress, kes(o.TotalAmount))
	}
	return w.Flush()
}

func printOrder(cmd *cobra.Command, o services.OrderView) error {
	w := newTable(cmd)
	fmt.Fprintf(w, "Order\t%s\n", o.OrderNumber)
	fmt.Fprintf(w, "Placed\t%s\n", o.CreatedAt.Format(dateLayout))
	fmt.Fprintf(w, "Status\t%s (%d%%)\n", o.Status, o.Progress)
	fmt.Fprintf(w, "Payment\t%s %s\n", o.PaymentMethod, o.PaymentStatus)
	fmt.Fprintln(w)
	for _, item := range o.Items {
		fmt.Fprintf(w, "%s\tx%d\t%s\n", item.ProductName, item.Quantity, kes(item.Subtotal))
	}
	fmt.Fprintf(w, "Total\t\t%s\n", kes(o.TotalAmount))
	return w.Flush()
}

func printWallet(cmd *cobra.Command, wallet services.WalletView) error {
	fmt.Fprintf(cmd.OutOrStdout(), "Balance: %s tokens\n", decimal.NewFromFloat(wallet.Balance).StringFixed(2))
	w := newTable(cmd)
	for _, tx := range wallet.Transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tx.CreatedAt.Format(dateLayout), decimal.NewFromFloat(tx.Amount).StringFixed(2), tx.Type, tx.Description)
	}
	return w.Flush()
}
