package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kbukum/swiftkit/observability"
	"github.com/kbukum/swiftkit/swift"
	"github.com/kbukum/swiftkit/version"
)

func listingQuery(prefix string, limit int) map[string]string {
	q := map[string]string{}
	if prefix != "" {
		q["prefix"] = prefix
	}
	if limit > 0 {
		q["limit"] = strconv.Itoa(limit)
	}
	return q
}

func newContainersCmd(a *app) *cobra.Command {
	var prefix string
	var limit int

	cmd := &cobra.Command{
		Use:   "containers",
		Short: "List the containers of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return c.EachContainerPage(cmd.Context(), listingQuery(prefix, limit), func(p *swift.Page) error {
				containers, err := p.Containers()
				if err != nil {
					return err
				}
				for _, ct := range containers {
					fmt.Fprintf(out, "%s\t%d\t%d\n", ct.Name, ct.Count, ct.Bytes)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list containers starting with prefix")
	cmd.Flags().IntVar(&limit, "page-size", 0, "entries per listing request")
	return cmd
}

func newObjectsCmd(a *app) *cobra.Command {
	var prefix string
	var limit int

	cmd := &cobra.Command{
		Use:   "objects <container>",
		Short: "List the objects of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for page, err := range c.PaginateObjects(cmd.Context(), args[0], listingQuery(prefix, limit)) {
				if err != nil {
					return err
				}
				objects, err := page.Objects()
				if err != nil {
					return err
				}
				for _, o := range objects {
					if o.Name == "" {
						fmt.Fprintln(out, o.Subdir)
						continue
					}
					fmt.Fprintf(out, "%s\t%d\t%s\n", o.Name, o.Bytes, o.ContentType)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list objects starting with prefix")
	cmd.Flags().IntVar(&limit, "page-size", 0, "entries per listing request")
	return cmd
}

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <container>",
		Short: "Create a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			_, err = c.PutContainer(cmd.Context(), args[0], nil)
			return err
		},
	}
}

func newUploadCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload <container> <file>",
		Short: "Upload a file as an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			object := name
			if object == "" {
				object = filepath.Base(args[1])
			}
			resp, err := c.PutObject(cmd.Context(), args[0], object, f, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\t%s\n", args[0], object, resp.Headers.Get("ETag"))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "object name (default is the file's base name)")
	return cmd
}

func newDownloadCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <container> <object>",
		Short: "Download an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := c.GetObjectStream(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			defer resp.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			_, err = io.Copy(w, resp.Body)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <container[/object]>...",
		Short: "Delete objects and empty containers in bulk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			res, err := c.BulkDelete(cmd.Context(), args)
			if res != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "deleted %d, not found %d\n", res.Deleted, res.NotFound)
				for _, e := range res.Errors {
					fmt.Fprintf(out, "error: %v\n", e)
				}
			}
			if err != nil {
				return err
			}
			if len(res.Errors) > 0 {
				return fmt.Errorf("%d items could not be deleted", len(res.Errors))
			}
			return nil
		},
	}
}

func newTempURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tempurl <container> <object>",
		Short: "Print a signed, expiring GET URL for an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			u, err := c.TempURL(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the storage account and the token cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checkers, err := a.checkers(cmd.Context())
			if err != nil {
				return err
			}
			sh := observability.Check(cmd.Context(), serviceName, version.GetShortVersion(), checkers...)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(sh); err != nil {
				return err
			}
			if sh.Status == observability.HealthStatusDown {
				return fmt.Errorf("service is %s", sh.Status)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
		},
	}
}
