/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strconv"

	"github.com/merchke/storefront/internal/services"
	"github.com/merchke/storefront/types"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in; a guest cart is carried over to the account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := set.Users.Login(cmd.Context(), types.LoginRequest{Email: email, Password: password})
		if err != nil {
			return present(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s! Cart: %d item(s)\n", user.Name(), set.Users.CartCount())
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var req types.RegisterRequest
		req.Username, _ = flags.GetString("username")
		req.Email, _ = flags.GetString("email")
		req.Password, _ = flags.GetString("password")
		req.FirstName, _ = flags.GetString("first-name")
		req.LastName, _ = flags.GetString("last-name")
		req.Phone, _ = flags.GetString("phone")

		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := set.Users.Register(cmd.Context(), req)
		if err != nil {
			return present(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account created. Welcome, %s!\n", user.Name())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := set.Users.Logout(cmd.Context()); err != nil {
			return present(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := set.Users.Me(cmd.Context())
		if err != nil {
			return present(err)
		}
		w := newTable(cmd)
		fmt.Fprintf(w, "Name\t%s\n", user.Name())
		fmt.Fprintf(w, "Username\t%s\n", user.Username)
		fmt.Fprintf(w, "Email\t%s\n", user.Email)
		fmt.Fprintf(w, "Role\t%s\n", user.Role)
		return w.Flush()
	},
}

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show the loyalty points balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		points, err := set.Users.Points(cmd.Context())
		if err != nil {
			return present(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Balance: %d points\n", points.Balance)
		w := newTable(cmd)
		for _, tx := range points.Transactions {
			fmt.Fprintf(w, "%s\t%+d\t%s\t%s\n", tx.CreatedAt.Format(dateLayout), tx.Points, tx.TransactionType, tx.Description)
		}
		return w.Flush()
	},
}

var walletCmd = &cobra.Command{
	Use:   "wallet [top-up AMOUNT]",
	Short: "Show the token wallet, or top it up",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, closeFn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		var view services.WalletView
		switch {
		case len(args) == 0:
			view, err = set.Users.Wallet(cmd.Context())
		case len(args) == 2 && args[0] == "top-up":
			amount, perr := strconv.ParseFloat(args[1], 64)
			if perr != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			view, err = set.Users.TopUpWallet(cmd.Context(), amount)
		default:
			return fmt.Errorf("usage: %s", cmd.Use)
		}
		if err != nil {
			return present(err)
		}
		return printWallet(cmd, view)
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")

	registerCmd.Flags().String("username", "", "username")
	registerCmd.Flags().String("email", "", "email")
	registerCmd.Flags().String("password", "", "password (at least 6 characters)")
	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
	registerCmd.Flags().String("phone", "", "phone number")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, pointsCmd, walletCmd)
}
