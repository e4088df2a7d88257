// Content type commands for the admin CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Manage content types",
}

var typesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all content types",
	RunE:  runTypesList,
}

var typesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one content type",
	Args:  cobra.ExactArgs(1),
	RunE:  runTypesGet,
}

var (
	typesCreateFile string
)

var typesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a content type",
	Long: `Create a content type with the fields described in a JSON file.

The file holds the field list, for example:

  [
    {"name": "title", "type": "text"},
    {"name": "price", "type": "price", "optional": true},
    {"name": "status", "type": "enum", "options": ["draft", "live"]}
  ]

Example:
  admin types create products --fields fields.json`,
	Args: cobra.ExactArgs(1),
	RunE: runTypesCreate,
}

var typesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a content type",
	Args:  cobra.ExactArgs(1),
	RunE:  runTypesDelete,
}

func init() {
	typesCreateCmd.Flags().StringVar(&typesCreateFile, "fields", "", "JSON file holding the field list (required)")
	_ = typesCreateCmd.MarkFlagRequired("fields")

	typesCmd.AddCommand(typesListCmd)
	typesCmd.AddCommand(typesGetCmd)
	typesCmd.AddCommand(typesCreateCmd)
	typesCmd.AddCommand(typesDeleteCmd)
}

func runTypesList(cmd *cobra.Command, args []string) error {
	types, err := remote.ListContentTypes(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(types)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFIELDS\tUPDATED")
	for _, t := range types {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			t.ID, t.Name, len(t.Fields), t.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runTypesGet(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid content type id %q", args[0])
	}

	t, err := remote.GetContentType(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printJSON(t)
}

func runTypesCreate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(typesCreateFile)
	if err != nil {
		return fmt.Errorf("read fields file: %w", err)
	}
	var fields []dynamiccontent.FieldSpec
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("parse fields file: %w", err)
	}

	created, err := remote.CreateContentType(cmd.Context(), dynamiccontent.CreateContentTypeRequest{
		Name:   args[0],
		Fields: fields,
	})
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(created)
	}
	fmt.Printf("created content type %s (%s)\n", created.Name, created.ID)
	return nil
}

func runTypesDelete(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid content type id %q", args[0])
	}

	if err := remote.DeleteContentType(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("deleted content type %s\n", id)
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
