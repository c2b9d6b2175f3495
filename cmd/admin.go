/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/merchke/storefront/internal/catalog"
	"github.com/merchke/storefront/internal/services"
	"github.com/merchke/storefront/types"
	"github.com/spf13/cobra"
)

// adminCmd groups the admin pages. Every subcommand needs an admin login.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Store administration",
}

var adminDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Totals, low stock and recent orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd, func(admin *services.AdminService) error {
			stats, err := admin.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			w := newTable(cmd)
			fmt.Fprintf(w, "Products\t%d\n", stats.TotalProducts)
			fmt.Fprintf(w, "Orders\t%d\n", stats.TotalOrders)
			fmt.Fprintf(w, "Customers\t%d\n", stats.TotalCustomers)
			fmt.Fprintf(w, "Revenue\t%s\n", kes(stats.TotalRevenue))
			if err := w.Flush(); err != nil {
				return err
			}

			if len(stats.LowStock) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nLow stock (under %d)\n", catalog.LowStockThreshold)
				if err := printProducts(cmd, stats.LowStock); err != nil {
					return err
				}
			}
			if len(stats.RecentOrders) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\nRecent orders")
				w := newTable(cmd)
				for _, o := range stats.RecentOrders {
					fmt.Fprintf(w, "%s\t%s\t%s\n", o.OrderNumber, o.Status, kes(o.TotalAmount))
				}
				return w.Flush()
			}
			return nil
		})
	},
}

var adminProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "List every product, including inactive ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd, func(admin *services.AdminService) error {
			products, err := admin.Products(cmd.Context())
			if err != nil {
				return err
			}
			return printProducts(cmd, products.Products)
		})
	},
}

var adminProductSaveCmd = &cobra.Command{
	Use:   "save [ID]",
	Short: "Create a product, or update it when ID is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := 0
		if len(args) == 1 {
			var err error
			if id, err = parseArgID(args[0]); err != nil {
				return err
			}
		}

		flags := cmd.Flags()
		var in types.ProductInput
		in.Name, _ = flags.GetString("name")
		in.Slug, _ = flags.GetString("slug")
		in.Description, _ = flags.GetString("description")
		in.CategoryID, _ = flags.GetInt("category")
		in.BasePrice, _ = flags.GetFloat64("price")
		in.IsActive, _ = flags.GetBool("active")
		in.IsFeatured, _ = flags.GetBool("featured")
		if flags.Changed("stock") {
			stock, _ := flags.GetInt("stock")
			in.StockQuantity = &stock
		}

		return withAdmin(cmd, func(admin *services.AdminService) error {
			product, err := admin.SaveProduct(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved product %d (%s).\n", product.ID, product.Slug)
			return nil
		})
	},
}

var adminProductDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseArgID(args[0])
		if err != nil {
			return err
		}
		return withAdmin(cmd, func(admin *services.AdminService) error {
			if err := admin.DeleteProduct(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %d.\n", id)
			return nil
		})
	},
}

var adminCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show every category as a tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd, func(admin *services.AdminService) error {
			categories, err := admin.Categories(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable(cmd)
			printCategoryTree(w, catalog.CategoryTree(categories.Categories), 0)
			return w.Flush()
		})
	},
}

var adminCategorySaveCmd = &cobra.Command{
	Use:   "save [ID]",
	Short: "Create a category, or update it when ID is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := 0
		if len(args) == 1 {
			var err error
			if id, err = parseArgID(args[0]); err != nil {
				return err
			}
		}

		flags := cmd.Flags()
		var in types.CategoryInput
		in.Name, _ = flags.GetString("name")
		in.Slug, _ = flags.GetString("slug")
		in.Description, _ = flags.GetString("description")
		in.IsActive, _ = flags.GetBool("active")
		in.SortOrder, _ = flags.GetInt("sort-order")
		if parent, _ := flags.GetInt("parent"); parent > 0 {
			in.ParentID = &parent
		}

		return withAdmin(cmd, func(admin *services.AdminService) error {
			category, err := admin.SaveCategory(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved category %d (%s).\n", category.ID, category.Slug)
			return nil
		})
	},
}

var adminCategoryDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseArgID(args[0])
		if err != nil {
			return err
		}
		return withAdmin(cmd, func(admin *services.AdminService) error {
			if err := admin.DeleteCategory(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %d.\n", id)
			return nil
		})
	},
}

var adminOrdersCmd = &cobra.Command{
	Use:   "orders [ID]",
	Short: "List every order, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd, func(admin *services.AdminService) error {
			if len(args) == 1 {
				id, err := parseArgID(args[0])
				if err != nil {
					return err
				}
				order, err := admin.Order(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printOrder(cmd, order)
			}
			orders, err := admin.Orders(cmd.Context())
			if err != nil {
				return err
			}
			return printOrders(cmd, orders)
		})
	},
}

var adminOrderStatusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Move an order to pending, processing, shipped, delivered or cancelled",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseArgID(args[0])
		if err != nil {
			return err
		}
		return withAdmin(cmd, func(admin *services.AdminService) error {
			order, err := admin.UpdateOrderStatus(cmd.Context(), id, types.OrderStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s.\n", order.OrderNumber, order.Status)
			return nil
		})
	},
}

var adminCustomersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List customers, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("q")
		return withAdmin(cmd, func(admin *services.AdminService) error {
			customers, err := admin.Customers(cmd.Context(), query)
			if err != nil {
				return err
			}
			w := newTable(cmd)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tORDERS\tSPENT")
			for _, c := range customers {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", c.ID, c.Name(), c.Email, c.OrderCount, kes(c.TotalSpent))
			}
			return w.Flush()
		})
	},
}

// withAdmin checks the stored token belongs to an admin before running fn.
func withAdmin(cmd *cobra.Command, fn func(*services.AdminService) error) error {
	set, closeFn, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	set.Auth.Init(cmd.Context())
	if !set.Auth.IsAuthenticated() {
		return present(services.ErrNotSignedIn)
	}
	if !set.Auth.IsAdmin() {
		return fmt.Errorf("admin access required")
	}
	return present(fn(set.Admin))
}

func init() {
	adminProductSaveCmd.Flags().String("name", "", "product name")
	adminProductSaveCmd.Flags().String("slug", "", "url slug (derived from the name when empty)")
	adminProductSaveCmd.Flags().String("description", "", "description")
	adminProductSaveCmd.Flags().Int("category", 0, "category id")
	adminProductSaveCmd.Flags().Float64("price", 0, "base price in KES")
	adminProductSaveCmd.Flags().Int("stock", 0, "stock quantity")
	adminProductSaveCmd.Flags().Bool("active", true, "visible in the shop")
	adminProductSaveCmd.Flags().Bool("featured", false, "featured on the home page")

	adminCategorySaveCmd.Flags().String("name", "", "category name")
	adminCategorySaveCmd.Flags().String("slug", "", "url slug (derived from the name when empty)")
	adminCategorySaveCmd.Flags().String("description", "", "description")
	adminCategorySaveCmd.Flags().Int("parent", 0, "parent category id")
	adminCategorySaveCmd.Flags().Int("sort-order", 0, "position among siblings")
	adminCategorySaveCmd.Flags().Bool("active", true, "visible in the shop")

	adminCustomersCmd.Flags().String("q", "", "match username, email or name")

	adminProductsCmd.AddCommand(adminProductSaveCmd, adminProductDeleteCmd)
	adminCategoriesCmd.AddCommand(adminCategorySaveCmd, adminCategoryDeleteCmd)
	adminOrdersCmd.AddCommand(adminOrderStatusCmd)
	adminCmd.AddCommand(adminDashboardCmd, adminProductsCmd, adminCategoriesCmd, adminOrdersCmd, adminCustomersCmd)
	rootCmd.AddCommand(adminCmd)
}
