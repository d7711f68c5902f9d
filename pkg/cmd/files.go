package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gofileio/pkg/errors"
	"gofileio/pkg/fileio"
)

func printLines(out io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <dir>",
		Short: "List every entry of a directory in filesystem order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.fio.ListEntries(args[0])
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), names)
			return nil
		},
	}
}

func newDirsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dirs <dir>",
		Short: "List the child directories of a directory in filesystem order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.fio.ListSubdirectories(args[0])
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), names)
			return nil
		},
	}
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <file>",
		Short: "Stream a file to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.fio.OpenReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			if _, err := io.Copy(cmd.OutOrStdout(), r); err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to read file").WithPath(args[0])
			}
			return nil
		},
	}
}

func newWriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "write <file> [content]",
		Short: "Write content (or stdin) to a file, honouring the exists/override policy",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src string
			if len(args) == 2 {
				src = args[1]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, errors.ErrorTypeFile, "failed to read stdin")
				}
				src = string(data)
			}
			return a.fio.WriteFile(args[0], src)
		},
	}
}

func newTouchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "touch <file>",
		Short: "Create an empty file unless it already exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.fio.CreateFileIfNotExists(args[0])
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintln(cmd.OutOrStdout(), "created")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "exists")
			}
			return nil
		},
	}
}

func newMkdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <dir>",
		Short: "Create a directory whose parent exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fio.CreateDir(args[0])
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <file>",
		Short: "Delete a file; missing files are ignored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ensure, _ := cmd.Flags().GetBool("ensure"); ensure {
				return a.fio.EnsureDeleted(args[0])
			}
			return a.fio.DeleteFile(args[0])
		},
	}
	cmd.Flags().Bool("ensure", false, "Always report a failure to delete an existing file")
	return cmd
}

func newRmdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir <dir>",
		Short: "Delete an empty directory; missing directories are ignored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fio.DeleteDir(args[0])
		},
	}
}

func newScriptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "script <dir> <name>",
		Short: "Create a placeholder <name>.js script in dir",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fio.CreateScript(args[0], args[1])
		},
	}
}

func newJSONCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "json",
		Short: "Read and write JSON documents",
	}

	get := &cobra.Command{
		Use:   "get <file> [key]",
		Short: "Print a JSON document, or one top-level key of it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc interface{}
			if err := a.fio.ReadJSON(args[0], &doc); err != nil {
				return err
			}
			if len(args) == 2 {
				obj, ok := doc.(map[string]interface{})
				if !ok {
					return errors.ValidationErrorf("%s is not a JSON object", args[0])
				}
				val, ok := obj[args[1]]
				if !ok {
					return errors.ValidationErrorf("key %q not found", args[1]).WithPath(args[0])
				}
				doc = val
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeValidation, "failed to encode JSON")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <file> <json>",
		Short: "Replace a file with a JSON object or array",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc interface{}
			if err := json.Unmarshal([]byte(args[1]), &doc); err != nil {
				return errors.Wrap(err, errors.ErrorTypeValidation, "invalid JSON argument")
			}
			return a.fio.WriteJSON(args[0], doc)
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

func newGlobCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "glob <pattern>",
		Short: "List paths under the base directory matching a ** pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := a.fio.Glob(args[0])
			if err != nil {
				return err
			}
			log.Debug().Str("pattern", args[0]).Int("matches", len(matches)).Msg("glob")
			printLines(cmd.OutOrStdout(), matches)
			return nil
		},
	}
}

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show how a relative path resolves against the base directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := a.fio.Resolver()
			rel := args[0]
			var b strings.Builder
			fmt.Fprintf(&b, "path:\t%s\n", r.Resolve(rel))
			fmt.Fprintf(&b, "dir:\t%s\n", r.DirName(rel))
			fmt.Fprintf(&b, "reldir:\t%s\n", r.RelativeDirName(rel))
			fmt.Fprintf(&b, "base:\t%s\n", fileio.BaseName(rel))
			fmt.Fprintf(&b, "isdir:\t%t\n", a.fio.IsDirectory(rel))
			_, err := io.WriteString(cmd.OutOrStdout(), b.String())
			return err
		},
	}
}
