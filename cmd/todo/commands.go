package todo

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dTodo/api/client"
	"github.com/ValentinKolb/dTodo/lib/todo"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"strings"
)

var (
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List all todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			todos, err := apiClient.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(renderList(todos))
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [id]",
		Short: "Show a single todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := apiClient.Get(cmd.Context(), args[0])
			if client.IsNotFound(err) {
				return fmt.Errorf("todo %s not found", args[0])
			} else if err != nil {
				return err
			}
			fmt.Println(renderTodo(t))
			return nil
		},
	}
	createCmd = &cobra.Command{
		Use:   "create [title...]",
		Short: "Create a todo, a random id is generated unless --id is given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				id = uuid.NewString()
			}
			completed, _ := cmd.Flags().GetBool("completed")

			t, err := apiClient.Create(cmd.Context(), todo.Draft{
				ID:        id,
				Title:     strings.Join(args, " "),
				Completed: completed,
			})
			if err != nil {
				return err
			}
			fmt.Println(renderTodo(t))
			return nil
		},
	}
	updateCmd = &cobra.Command{
		Use:   "update [id]",
		Short: "Change the title or completion of a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p todo.Patch
			if cmd.Flags().Changed("title") {
				title, _ := cmd.Flags().GetString("title")
				p.Title = &title
			}
			if cmd.Flags().Changed("completed") {
				completed, _ := cmd.Flags().GetBool("completed")
				p.Completed = &completed
			}
			if p.Title == nil && p.Completed == nil {
				return errors.New("nothing to update, use --title or --completed")
			}

			t, err := apiClient.Update(cmd.Context(), args[0], p)
			if client.IsNotFound(err) {
				return fmt.Errorf("todo %s not found", args[0])
			} else if err != nil {
				return err
			}
			fmt.Println(renderTodo(t))
			return nil
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := apiClient.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ok(msg)
			return nil
		},
	}
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Reset the todos 1 to 5 to the demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := apiClient.Seed(cmd.Context())
			if err != nil {
				return err
			}
			ok(msg)
			return nil
		},
	}
	randomCmd = &cobra.Command{
		Use:   "random",
		Short: "Show a random todo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := apiClient.Random(cmd.Context())
			if errors.Is(err, client.ErrNoTodo) {
				fmt.Println(mutedStyle.Render(err.Error()))
				return nil
			} else if err != nil {
				return err
			}
			fmt.Println(renderTodo(t))
			return nil
		},
	}
)

func init() {
	createCmd.Flags().String("id", "", "ID of the new todo")
	createCmd.Flags().Bool("completed", false, "Create the todo as completed")

	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().Bool("completed", false, "Mark the todo as completed (--completed=false reopens it)")
}
