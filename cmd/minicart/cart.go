package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/minicart/minicart/internal/cart"
	"github.com/minicart/minicart/internal/money"
)

var removeCount int

// cartCmd creates the "cart" subcommand group.
func cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the persistent cart",
	}

	cmd.AddCommand(cartListCmd())
	cmd.AddCommand(cartRemoveCmd())
	cmd.AddCommand(cartSetCmd())
	cmd.AddCommand(cartTotalCmd())
	cmd.AddCommand(cartClearCmd())

	return cmd
}

// cartListCmd creates "cart list".
func cartListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cart items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCart()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := opCtx(cmd)
			defer cancel()

			state := c.Load(ctx)
			if len(state.Items) == 0 {
				fmt.Println("Cart is empty.")
				return nil
			}

			for i, item := range state.Items {
				fmt.Printf("%d. %s\n", i+1, item.Name)
				fmt.Printf("   %s %s × %d\n", money.Format(item.Price), item.Currency, item.Quantity)
				fmt.Printf("   id: %s\n", item.ID)
				if item.ProductURL != "" {
					fmt.Printf("   %s\n", item.ProductURL)
				}
			}
			fmt.Printf("\nTotal: %s  (%d line(s), updated %s)\n",
				money.Format(cart.TotalOf(&state)),
				len(state.Items),
				state.UpdatedAt.Format(time.RFC3339),
			)
			return nil
		},
	}
}

// cartRemoveCmd creates "cart remove".
func cartRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [id]",
		Short: "Remove an item, or part of its quantity, from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCart()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := opCtx(cmd)
			defer cancel()

			var ok bool
			if removeCount > 0 {
				ok = c.RemoveSome(ctx, args[0], removeCount)
			} else {
				ok = c.RemoveItem(ctx, args[0])
			}
			if !ok {
				return fmt.Errorf("no cart item with id %q", args[0])
			}
			fmt.Println("Removed.")
			return nil
		},
	}

	cmd.Flags().IntVarP(&removeCount, "count", "n", 0, "remove only this many units (0 = whole line)")

	return cmd
}

// cartSetCmd creates "cart set".
func cartSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [id] [quantity]",
		Short: "Set an item's quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be an integer: %w", err)
			}

			c, cleanup, err := openCart()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := opCtx(cmd)
			defer cancel()

			if !c.SetQuantity(ctx, args[0], qty) {
				fmt.Println("No change.")
				return nil
			}
			fmt.Println("Updated.")
			return nil
		},
	}
}

// cartTotalCmd creates "cart total".
func cartTotalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Print the cart total",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCart()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := opCtx(cmd)
			defer cancel()

			fmt.Println(money.Format(c.Total(ctx)))
			return nil
		},
	}
}

// cartClearCmd creates "cart clear".
func cartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every item from the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCart()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := opCtx(cmd)
			defer cancel()

			state := c.Load(ctx)
			n := len(state.Items)
			state.Items = nil
			if !c.Save(ctx, &state) {
				return fmt.Errorf("failed to persist empty cart")
			}
			fmt.Printf("Removed %d item(s).\n", n)
			return nil
		},
	}
}

// openCart builds a Cart on the configured storage backend. The returned
// cleanup closes the backend.
func openCart() (*cart.Cart, func(), error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create storage: %w", err)
	}

	return cart.New(store, nil, logger), func() { store.Close() }, nil
}

// opCtx returns a bounded context for a single cart operation.
func opCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}
