package commands

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd runs commands in one session so the query cache and OAuth token are reused
func InteractiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (connect once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands against one connection.
Collections fetched by earlier commands are served from the cache; stale ones are shown
immediately and refreshed in the background for the next command.

Type 'help' to see available commands, 'exit' or 'quit' to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Cache.ServeStale(true)
			return runInteractive(cmd.Root(), cmd.InOrStdin(), app.Out)
		},
	}
}

func runInteractive(root *cobra.Command, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Type 'help' for available commands, 'exit' or 'quit' to leave")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "help":
			printInteractiveHelp(out, root)
			continue
		case "interactive":
			fmt.Fprintln(out, "Already in an interactive session")
			continue
		}

		if err := runLine(root, parts); err != nil {
			fmt.Fprintf(out, "✗ Error: %v\n\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// runLine executes the matched command's RunE directly so PersistentPreRunE does not reconnect
func runLine(root *cobra.Command, parts []string) error {
	target, rest, err := root.Find(parts)
	if err != nil || target == root {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", parts[0])
	}
	if target.RunE == nil {
		return fmt.Errorf("%s needs a subcommand: %s", target.Name(), strings.Join(subcommandNames(target), ", "))
	}

	target.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		if sv, ok := flag.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
			return
		}
		_ = flag.Value.Set(flag.DefValue)
	})

	if err := target.ParseFlags(rest); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}

	args := target.Flags().Args()
	if target.Args != nil {
		if err := target.Args(target, args); err != nil {
			return err
		}
	}
	return target.RunE(target, args)
}

func subcommandNames(cmd *cobra.Command) []string {
	var names []string
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			names = append(names, sub.Name())
		}
	}
	sort.Strings(names)
	return names
}

func printInteractiveHelp(out io.Writer, root *cobra.Command) {
	fmt.Fprintln(out, "\nAvailable commands:")
	for _, group := range root.Commands() {
		if !group.IsAvailableCommand() || group.Name() == "interactive" {
			continue
		}
		if !group.HasSubCommands() {
			fmt.Fprintf(out, "  %-36s %s\n", group.Use, group.Short)
			continue
		}
		for _, sub := range group.Commands() {
			if sub.IsAvailableCommand() {
				fmt.Fprintf(out, "  %-36s %s\n", group.Name()+" "+sub.Use, sub.Short)
			}
		}
	}

	fmt.Fprintln(out, "\n  help                                 Show this help message")
	fmt.Fprintln(out, "  exit, quit                           Exit the interactive session")
}
