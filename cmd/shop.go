/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strconv"

	"github.com/merchke/storefront/internal/catalog"
	"github.com/merchke/storefront/internal/services"
	"github.com/merchke/storefront/types"
	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the shop, filtered and sorted",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var q services.CatalogQuery
		q.Query, _ = flags.GetString("q")
		q.CategoryID, _ = flags.GetInt("category")
		q.Min, _ = flags.GetFloat64("min")
		q.Max, _ = flags.GetFloat64("max")
		sortKey, _ := flags.GetString("sort")
		q.Sort = catalog.ParseSortKey(sortKey)

		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		view, err := set.Storefront.CatalogPage(cmd.Context(), q)
		if err != nil {
			return present(err)
		}
		if view.Total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No products match.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d product(s)\n", view.Total)
		return printProducts(cmd, view.Products)
	},
}

var productCmd = &cobra.Command{
	Use:   "product ID",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseArgID(args[0])
		if err != nil {
			return err
		}

		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		view, err := set.Storefront.ProductPage(cmd.Context(), id)
		if err != nil {
			return present(err)
		}
		p := view.Product
		w := newTable(cmd)
		fmt.Fprintf(w, "Name\t%s\n", p.Name)
		fmt.Fprintf(w, "Price\t%s\n", kes(p.BasePrice))
		fmt.Fprintf(w, "Stock\t%s\n", stockLabel(p.StockQuantity))
		if view.Category != nil {
			fmt.Fprintf(w, "Category\t%s\n", view.Category.Name)
		}
		fmt.Fprintf(w, "Images\t%d\n", len(view.Images))
		if p.Description != "" {
			fmt.Fprintf(w, "\n%s\n", p.Description)
		}
		return w.Flush()
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the category tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		view, err := set.Storefront.CategoriesPage(cmd.Context())
		if err != nil {
			return present(err)
		}
		w := newTable(cmd)
		printCategoryTree(w, view.CategoryTree, 0)
		return w.Flush()
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(s *services.StorefrontService) (services.CartView, error) {
			return s.CartPage(cmd.Context())
		})
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add PRODUCT_ID [QUANTITY]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseArgID(args[0])
		if err != nil {
			return err
		}
		quantity := 1
		if len(args) == 2 {
			if quantity, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
		}
		return withCart(cmd, func(s *services.StorefrontService) (services.CartView, error) {
			return s.AddToCart(cmd.Context(), productID, quantity)
		})
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update PRODUCT_ID QUANTITY",
	Short: "Change the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseArgID(args[0])
		if err != nil {
			return err
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		return withCart(cmd, func(s *services.StorefrontService) (services.CartView, error) {
			return s.UpdateCartItem(cmd.Context(), productID, quantity)
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove PRODUCT_ID",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseArgID(args[0])
		if err != nil {
			return err
		}
		return withCart(cmd, func(s *services.StorefrontService) (services.CartView, error) {
			return s.RemoveFromCart(cmd.Context(), productID)
		})
	},
}

func withCart(cmd *cobra.Command, fn func(*services.StorefrontService) (services.CartView, error)) error {
	set, closeFn, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	cart, err := fn(set.Storefront)
	if err != nil {
		return present(err)
	}
	return printCart(cmd, cart)
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the items in the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var req types.CreateOrderRequest
		req.PaymentMethod, _ = flags.GetString("payment")
		req.MpesaPhone, _ = flags.GetString("mpesa-phone")
		req.GuestEmail, _ = flags.GetString("email")
		req.Notes, _ = flags.GetString("notes")
		if addressID, _ := flags.GetInt("address-id"); addressID > 0 {
			req.ShippingAddressID = &addressID
		} else {
			var addr types.ShippingAddress
			addr.FirstName, _ = flags.GetString("first-name")
			addr.LastName, _ = flags.GetString("last-name")
			addr.Phone, _ = flags.GetString("phone")
			addr.AddressLine1, _ = flags.GetString("address")
			addr.AddressLine2, _ = flags.GetString("address2")
			addr.City, _ = flags.GetString("city")
			addr.County, _ = flags.GetString("county")
			addr.PostalCode, _ = flags.GetString("postal-code")
			if addr != (types.ShippingAddress{}) {
				req.ShippingAddress = &addr
			}
		}

		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		order, err := set.Storefront.PlaceOrder(cmd.Context(), req)
		if err != nil {
			return present(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s placed. Total %s.\n", order.OrderNumber, kes(order.TotalAmount))
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders [ID]",
	Short: "List your orders, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if len(args) == 1 {
			id, err := parseArgID(args[0])
			if err != nil {
				return err
			}
			order, err := set.Storefront.OrderPage(cmd.Context(), id)
			if err != nil {
				return present(err)
			}
			return printOrder(cmd, order)
		}

		orders, err := set.Storefront.OrdersPage(cmd.Context())
		if err != nil {
			return present(err)
		}
		if len(orders) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No orders yet.")
			return nil
		}
		return printOrders(cmd, orders)
	},
}

func parseArgID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func init() {
	productsCmd.Flags().String("q", "", "search product names")
	productsCmd.Flags().Int("category", 0, "category id")
	productsCmd.Flags().Float64("min", 0, "minimum price")
	productsCmd.Flags().Float64("max", 0, "maximum price (0 for no limit)")
	productsCmd.Flags().String("sort", string(catalog.SortFeatured), "featured, price-asc, price-desc or name")

	checkoutCmd.Flags().String("payment", "mpesa", "mpesa, card or cod")
	checkoutCmd.Flags().String("mpesa-phone", "", "M-Pesa phone number")
	checkoutCmd.Flags().String("email", "", "email for guest orders")
	checkoutCmd.Flags().String("notes", "", "order notes")
	checkoutCmd.Flags().Int("address-id", 0, "saved shipping address id")
	checkoutCmd.Flags().String("first-name", "", "recipient first name")
	checkoutCmd.Flags().String("last-name", "", "recipient last name")
	checkoutCmd.Flags().String("phone", "", "recipient phone")
	checkoutCmd.Flags().String("address", "", "address line 1")
	checkoutCmd.Flags().String("address2", "", "address line 2")
	checkoutCmd.Flags().String("city", "", "city")
	checkoutCmd.Flags().String("county", "", "county")
	checkoutCmd.Flags().String("postal-code", "", "postal code")

	cartCmd.AddCommand(cartAddCmd, cartUpdateCmd, cartRemoveCmd)
	rootCmd.AddCommand(productsCmd, productCmd, categoriesCmd, cartCmd, checkoutCmd, ordersCmd)
}
